package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRequest() GenerationRequest {
	return GenerationRequest{
		BusinessName: "Blooms & Co",
		Industry:     "Garden center",
		Location:     "Portland, OR",
		Description:  "Family-run nursery selling native plants and offering landscape design.",
		Contact: ContactChannels{
			Email: "hello@blooms.example",
			Phone: "555-0100",
		},
	}
}

func TestGenerationRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *GenerationRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(*GenerationRequest) {}},
		{name: "missing name", mutate: func(r *GenerationRequest) { r.BusinessName = "" }, wantErr: true},
		{name: "missing industry", mutate: func(r *GenerationRequest) { r.Industry = "" }, wantErr: true},
		{name: "missing description", mutate: func(r *GenerationRequest) { r.Description = "" }, wantErr: true},
		{name: "bad email", mutate: func(r *GenerationRequest) { r.Contact.Email = "not-an-email" }, wantErr: true},
		{name: "bad prior site url", mutate: func(r *GenerationRequest) { r.PriorSiteURL = "nope" }, wantErr: true},
		{
			name:   "skip optional sections",
			mutate: func(r *GenerationRequest) { r.SkipSections = []UnitType{UnitTeam, UnitValues} },
		},
		{
			name:    "skip required section",
			mutate:  func(r *GenerationRequest) { r.SkipSections = []UnitType{UnitContact} },
			wantErr: true,
		},
		{
			name:    "skip duplicated",
			mutate:  func(r *GenerationRequest) { r.SkipSections = []UnitType{UnitTeam, UnitTeam} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenerationRequest_Skips(t *testing.T) {
	req := validRequest()
	req.SkipSections = []UnitType{UnitServices}

	assert.True(t, req.Skips(UnitServices))
	assert.False(t, req.Skips(UnitTeam))
}
