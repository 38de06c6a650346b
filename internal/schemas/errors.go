package schemas

import (
	"fmt"
	"strings"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []types.FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// UnknownUnitError is returned for a unit type with no schema.
type UnknownUnitError struct {
	Unit types.UnitType
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("no schema for unit type %q", string(e.Unit))
}
