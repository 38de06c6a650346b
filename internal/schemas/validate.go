// Package schemas holds the fixed per-unit record schemas, validates decoded
// model output against them, and applies the bounded recovery pass.
package schemas

import (
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

var (
	compiledMu sync.Mutex
	compiled   = map[types.UnitType]*gojsonschema.Schema{}
)

// compile returns the gojsonschema form of a unit schema, building it once.
func compile(s *Schema) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if cs, ok := compiled[s.Unit]; ok {
		return cs, nil
	}
	cs, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(s.JSONSchema()))
	if err != nil {
		return nil, &SchemaLoadError{
			Path:    "(unit " + s.Unit.String() + ")",
			Message: "failed to compile unit schema",
			Cause:   err,
		}
	}
	compiled[s.Unit] = cs
	return cs, nil
}

// Validate checks doc against the schema of unit. It returns nil when the
// document conforms and a *ValidationError listing every violation otherwise.
func Validate(doc map[string]any, unit types.UnitType) error {
	s, err := For(unit)
	if err != nil {
		return err
	}
	return s.Validate(doc)
}

// Validate checks doc against s.
func (s *Schema) Validate(doc map[string]any) error {
	cs, err := compile(s)
	if err != nil {
		return err
	}

	result, err := cs.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &SchemaLoadError{
			Path:    "(unit " + s.Unit.String() + ")",
			Message: "document could not be loaded",
			Cause:   err,
		}
	}
	return toValidationError(result)
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	return toValidationError(result)
}

func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	// Build structured error
	validationErr := &ValidationError{
		Errors: make([]types.FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		validationErr.Errors = append(validationErr.Errors, types.FieldError{
			Field:   fieldPath(desc),
			Message: desc.Description(),
		})
	}

	return validationErr
}

// fieldPath names the offending field. Missing properties are reported by
// gojsonschema against their parent, so the property name is appended.
func fieldPath(desc gojsonschema.ResultError) string {
	field := desc.Field()
	if desc.Type() == "required" {
		if prop, ok := desc.Details()["property"].(string); ok {
			if field == "" || field == "(root)" {
				return prop
			}
			return field + "." + prop
		}
	}
	if field == "" {
		field = "(root)"
	}
	return field
}
