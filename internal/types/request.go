package types

import (
	"github.com/go-playground/validator/v10"
)

// ContactChannels lists the ways customers can reach the business.
type ContactChannels struct {
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Address string `json:"address,omitempty" validate:"omitempty,max=300"`
	Website string `json:"website,omitempty" validate:"omitempty,url"`
	Hours   string `json:"hours,omitempty" validate:"omitempty,max=200"`
}

// GenerationRequest is the immutable input to one generation job.
type GenerationRequest struct {
	BusinessName string          `json:"business_name" validate:"required,max=120"`
	Industry     string          `json:"industry" validate:"required,max=80"`
	Location     string          `json:"location,omitempty" validate:"omitempty,max=120"`
	Description  string          `json:"description" validate:"required,max=4000"`
	Contact      ContactChannels `json:"contact"`

	// PriorSiteURL is where PriorSiteExcerpt was collected from, if anywhere.
	PriorSiteURL     string `json:"prior_site_url,omitempty" validate:"omitempty,url"`
	PriorSiteExcerpt string `json:"prior_site_excerpt,omitempty"`

	// Theme is a previously generated theme the new site should keep.
	Theme *Theme `json:"theme,omitempty"`

	// SkipSections lists optional units that do not apply to this business.
	SkipSections []UnitType `json:"skip_sections,omitempty" validate:"omitempty,unique,dive,oneof=values features services team"`
}

// Validate validates the GenerationRequest using the validator.
func (r *GenerationRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Skips reports whether the request opts out of unit u.
func (r *GenerationRequest) Skips(u UnitType) bool {
	for _, s := range r.SkipSections {
		if s == u {
			return true
		}
	}
	return false
}
