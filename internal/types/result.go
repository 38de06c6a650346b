package types

import (
	"time"

	"github.com/google/uuid"
)

// UsageRecord holds token counts returned alongside a transport call.
type UsageRecord struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
}

// Add returns the sum of u and other. Negative counts are ignored so totals never decrease.
func (u UsageRecord) Add(other UsageRecord) UsageRecord {
	if other.PromptTokens > 0 {
		u.PromptTokens += other.PromptTokens
	}
	if other.CompletionTokens > 0 {
		u.CompletionTokens += other.CompletionTokens
	}
	return u
}

// Total returns prompt plus completion tokens.
func (u UsageRecord) Total() int64 {
	return u.PromptTokens + u.CompletionTokens
}

// GenerationResult is the assembled output of one successful job.
type GenerationResult struct {
	JobID uuid.UUID `json:"job_id"`

	Foundation *Foundation `json:"foundation"`
	Theme      Theme       `json:"theme"`

	About        *AboutSection        `json:"about"`
	Testimonials *TestimonialsSection `json:"testimonials"`
	Contact      *ContactSection      `json:"contact"`

	Values   *ValuesSection   `json:"values,omitempty"`
	Features *FeaturesSection `json:"features,omitempty"`
	Services *ServicesSection `json:"services,omitempty"`
	Team     *TeamSection     `json:"team,omitempty"`

	// Statuses maps every produced unit to Success or Recovered.
	Statuses map[UnitType]OutcomeStatus `json:"statuses"`

	FailedSections  []UnitType `json:"failed_sections"`
	SkippedSections []UnitType `json:"skipped_sections,omitempty"`

	Usage     UsageRecord `json:"usage"`
	CostCents int64       `json:"cost_cents"`
	Calls     int         `json:"calls"`

	GeneratedAt time.Time `json:"generated_at"`
}

// Section returns the content stored for unit u, or nil when absent.
func (r *GenerationResult) Section(u UnitType) Content {
	var c Content
	switch u {
	case UnitFoundation:
		if r.Foundation != nil {
			c = r.Foundation
		}
	case UnitAbout:
		if r.About != nil {
			c = r.About
		}
	case UnitValues:
		if r.Values != nil {
			c = r.Values
		}
	case UnitFeatures:
		if r.Features != nil {
			c = r.Features
		}
	case UnitServices:
		if r.Services != nil {
			c = r.Services
		}
	case UnitTeam:
		if r.Team != nil {
			c = r.Team
		}
	case UnitTestimonials:
		if r.Testimonials != nil {
			c = r.Testimonials
		}
	case UnitContact:
		if r.Contact != nil {
			c = r.Contact
		}
	}
	return c
}

// SetSection stores content in the matching field. Content of an unexpected type is ignored.
func (r *GenerationResult) SetSection(content Content) {
	switch c := content.(type) {
	case *Foundation:
		r.Foundation = c
		r.Theme = c.Theme
	case *AboutSection:
		r.About = c
	case *ValuesSection:
		r.Values = c
	case *FeaturesSection:
		r.Features = c
	case *ServicesSection:
		r.Services = c
	case *TeamSection:
		r.Team = c
	case *TestimonialsSection:
		r.Testimonials = c
	case *ContactSection:
		r.Contact = c
	}
}
