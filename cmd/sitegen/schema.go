package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/schemas"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print a unit's JSON Schema or validate a document against it",
	Long:  "Prints the JSON Schema the model is asked to follow for one unit. With --validate, checks a JSON document against that schema without applying any recovery.",
	RunE:  runSchema,
}

var (
	schemaUnit     string
	schemaValidate string
)

func init() {
	schemaCmd.Flags().StringVarP(&schemaUnit, "unit", "u", "", "Unit type (foundation, about, values, features, services, team, testimonials, contact)")
	schemaCmd.Flags().StringVar(&schemaValidate, "validate", "", "Path to a JSON document to validate")

	if err := schemaCmd.MarkFlagRequired("unit"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(schemaCmd)
}

func runSchema(_ *cobra.Command, _ []string) error {
	unit, err := types.ParseUnitType(schemaUnit)
	if err != nil {
		return err
	}
	schema, err := schemas.For(unit)
	if err != nil {
		return err
	}

	if schemaValidate == "" {
		_, _ = fmt.Fprintln(os.Stdout, schema.JSONSchemaText())
		return nil
	}

	data, err := readInput(schemaValidate)
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse %s as a JSON object: %w", schemaValidate, err)
	}

	if err := schema.Validate(doc); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			_, _ = fmt.Fprintf(os.Stdout, "Validation failed: %d error(s)\n", len(validationErr.Errors))
			for _, fe := range validationErr.Errors {
				_, _ = fmt.Fprintf(os.Stdout, "  %s: %s\n", fe.Field, fe.Message)
			}
			return fmt.Errorf("document does not match the %s schema", unit)
		}
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Validation passed: document matches the %s schema\n", unit)
	return nil
}
