package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/generation"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/observability"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Run extraction, repair and validation over saved model output",
	Long:  "Processes a raw model response offline, exactly as a generation job would, and reports the repairs, recovery fixes and final status. No model is called.",
	RunE:  runInspect,
}

var (
	inspectUnit   string
	inspectInput  string
	inspectOutput string
)

func init() {
	inspectCmd.Flags().StringVarP(&inspectUnit, "unit", "u", "", "Unit type the response was generated for (required)")
	inspectCmd.Flags().StringVarP(&inspectInput, "input", "i", "", "Path to the raw response text, or - for stdin (required)")
	inspectCmd.Flags().StringVarP(&inspectOutput, "out", "o", "", "Write the decoded content JSON to this file")

	for _, name := range []string{"unit", "input"} {
		if err := inspectCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, _ []string) error {
	outcome, err := inspectFile(inspectUnit, inspectInput)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintOutcome(outcome)
	if !outcome.Succeeded() {
		return fmt.Errorf("%s output could not be used: %s", outcome.Unit, outcome.Failure.Reason)
	}
	if inspectOutput != "" {
		return writeJSON(os.Stdout, inspectOutput, outcome.Content)
	}
	return nil
}

func inspectFile(unitName, path string) (*types.UnitOutcome, error) {
	unit, err := types.ParseUnitType(unitName)
	if err != nil {
		return nil, err
	}
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	return generation.InterpretText(unit, string(data)), nil
}
