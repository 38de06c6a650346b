// Package types provides type definitions for structured data used throughout the site generation pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
)

// UnitType identifies one independently generated content block.
type UnitType string

// Unit type constants. The declaration order is the canonical site order.
const (
	UnitFoundation   UnitType = "foundation"
	UnitAbout        UnitType = "about"
	UnitValues       UnitType = "values"
	UnitFeatures     UnitType = "features"
	UnitServices     UnitType = "services"
	UnitTeam         UnitType = "team"
	UnitTestimonials UnitType = "testimonials"
	UnitContact      UnitType = "contact"
)

// AllUnits returns every unit type in canonical order.
func AllUnits() []UnitType {
	return []UnitType{
		UnitFoundation,
		UnitAbout,
		UnitValues,
		UnitFeatures,
		UnitServices,
		UnitTeam,
		UnitTestimonials,
		UnitContact,
	}
}

// SectionUnits returns every unit type generated after Foundation, in canonical order.
func SectionUnits() []UnitType {
	return AllUnits()[1:]
}

// IsValid reports whether u is one of the known unit types.
func (u UnitType) IsValid() bool {
	for _, known := range AllUnits() {
		if u == known {
			return true
		}
	}
	return false
}

// IsRequired reports whether a failure of this unit is fatal to the whole job.
func (u UnitType) IsRequired() bool {
	switch u {
	case UnitFoundation, UnitAbout, UnitContact, UnitTestimonials:
		return true
	default:
		return false
	}
}

// IsSection reports whether u is generated in the section fan-out.
func (u UnitType) IsSection() bool {
	return u.IsValid() && u != UnitFoundation
}

// Index returns the canonical position of u, or -1 if unknown.
func (u UnitType) Index() int {
	for i, known := range AllUnits() {
		if u == known {
			return i
		}
	}
	return -1
}

func (u UnitType) String() string {
	return string(u)
}

// ParseUnitType converts a case-insensitive name into a UnitType.
func ParseUnitType(name string) (UnitType, error) {
	u := UnitType(strings.ToLower(strings.TrimSpace(name)))
	if !u.IsValid() {
		return "", fmt.Errorf("unknown unit type %q", name)
	}
	return u, nil
}
