package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

func TestLoadRequest(t *testing.T) {
	path := writeTemp(t, "request.json", `{
		"business_name": "Bloom & Root",
		"industry": "Plant shop",
		"description": "Neighborhood houseplant shop.",
		"contact": {"email": "hello@bloomandroot.com"},
		"skip_sections": ["team"]
	}`)

	req, err := loadRequest(path)
	require.NoError(t, err)
	assert.Equal(t, "Bloom & Root", req.BusinessName)
	assert.Equal(t, "hello@bloomandroot.com", req.Contact.Email)
	assert.Equal(t, []types.UnitType{types.UnitTeam}, req.SkipSections)
	assert.NoError(t, req.Validate())
}

func TestLoadRequest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "empty path", path: "", wantErr: "input path is empty"},
		{name: "missing file", path: filepath.Join(t.TempDir(), "nope.json"), wantErr: "input file not found"},
		{name: "invalid json", path: writeTemp(t, "bad.json", "{ nope"), wantErr: "failed to parse request JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := loadRequest(tt.path)
			require.Error(t, err)
			assert.Nil(t, req)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, "", map[string]int{"calls": 8}))
	assert.Equal(t, "{\n  \"calls\": 8\n}\n", buf.String())

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, writeJSON(&buf, path, []string{"about"}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `["about"]`, string(data))
}

func TestInspectFile(t *testing.T) {
	path := writeTemp(t, "raw.txt", "Here you go:\n```json\n{\"title\": \"Contact\", \"email\": \"a@b.co\"\n")

	outcome, err := inspectFile("Contact", path)
	require.NoError(t, err)
	assert.Equal(t, types.UnitContact, outcome.Unit)
	assert.True(t, outcome.Succeeded())
	assert.Equal(t, types.StatusRecovered, outcome.Status)
	assert.Equal(t, &types.ContactSection{Title: "Contact", Email: "a@b.co"}, outcome.Content)

	_, err = inspectFile("pricing", path)
	assert.Error(t, err)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "$0.07", formatCents(7))
	assert.Equal(t, "$12.30", formatCents(1230))
}
