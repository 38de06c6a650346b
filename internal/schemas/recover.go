package schemas

import (
	"errors"
	"fmt"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

// ellipsis marks a string shortened by recovery.
const ellipsis = "..."

// Status is the outcome of validation with recovery.
type Status string

// Validation statuses.
const (
	StatusValid     Status = "valid"
	StatusRecovered Status = "recovered"
	StatusInvalid   Status = "invalid"
)

// Result is the outcome of ValidateAndRecover. Document is the validated
// document for Valid and Recovered results and nil for Invalid ones.
type Result struct {
	Status   Status
	Document map[string]any
	Fixes    []types.Fix
	Errors   []types.FieldError
}

// ValidateAndRecover validates doc strictly. When that fails it applies one
// recovery pass to a copy of doc and validates again. Recovery shortens
// over-length strings and trims over-long arrays from the tail; it never
// supplies missing fields or pads short arrays.
func ValidateAndRecover(doc map[string]any, unit types.UnitType) (*Result, error) {
	s, err := For(unit)
	if err != nil {
		return nil, err
	}

	errs, err := fieldErrors(s.Validate(doc))
	if err != nil {
		return nil, err
	}
	if len(errs) == 0 {
		return &Result{Status: StatusValid, Document: doc}, nil
	}

	fixed, ok := deepCopy(doc).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("copy of unit %s document is not an object", unit)
	}
	fixes := recoverNode(s.Root, fixed, "")
	if len(fixes) == 0 {
		return &Result{Status: StatusInvalid, Errors: errs}, nil
	}

	errs, err = fieldErrors(s.Validate(fixed))
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return &Result{Status: StatusInvalid, Fixes: fixes, Errors: errs}, nil
	}
	return &Result{Status: StatusRecovered, Document: fixed, Fixes: fixes}, nil
}

// fieldErrors separates document violations from schema loading failures.
func fieldErrors(err error) ([]types.FieldError, error) {
	if err == nil {
		return nil, nil
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Errors, nil
	}
	return nil, err
}

// recoverNode applies bounded fixes to value in place and returns them.
// Values of the wrong JSON type are left for the validator to report.
func recoverNode(n *Node, value any, path string) []types.Fix {
	var fixes []types.Fix

	switch n.Type {
	case TypeObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return nil
		}
		for _, p := range n.Properties {
			child, present := obj[p.Name]
			if !present {
				continue
			}
			childPath := joinPath(path, p.Name)
			if s, ok := child.(string); ok && p.Node.Type == TypeString {
				if shortened, fix, changed := truncate(s, p.Node.MaxLength, childPath); changed {
					obj[p.Name] = shortened
					fixes = append(fixes, fix)
				}
				continue
			}
			if arr, ok := child.([]any); ok && p.Node.Type == TypeArray {
				trimmed, arrFixes := recoverArray(p.Node, arr, childPath)
				obj[p.Name] = trimmed
				fixes = append(fixes, arrFixes...)
				continue
			}
			fixes = append(fixes, recoverNode(p.Node, child, childPath)...)
		}
	case TypeArray:
		if arr, ok := value.([]any); ok {
			_, arrFixes := recoverArray(n, arr, path)
			fixes = append(fixes, arrFixes...)
		}
	}
	return fixes
}

func recoverArray(n *Node, arr []any, path string) ([]any, []types.Fix) {
	var fixes []types.Fix
	if n.MaxItems > 0 && len(arr) > n.MaxItems {
		fixes = append(fixes, types.Fix{
			Field: path,
			Kind:  types.FixTrimmedArray,
			From:  len(arr),
			To:    n.MaxItems,
		})
		arr = arr[:n.MaxItems]
	}
	if n.Items == nil {
		return arr, fixes
	}

	for i, item := range arr {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		if s, ok := item.(string); ok && n.Items.Type == TypeString {
			if shortened, fix, changed := truncate(s, n.Items.MaxLength, itemPath); changed {
				arr[i] = shortened
				fixes = append(fixes, fix)
			}
			continue
		}
		fixes = append(fixes, recoverNode(n.Items, item, itemPath)...)
	}
	return arr, fixes
}

// truncate shortens s to maxLen runes, ending it with an ellipsis.
func truncate(s string, maxLen int, path string) (string, types.Fix, bool) {
	runes := []rune(s)
	if maxLen <= 0 || len(runes) <= maxLen {
		return s, types.Fix{}, false
	}

	var shortened string
	if maxLen > len(ellipsis) {
		shortened = string(runes[:maxLen-len(ellipsis)]) + ellipsis
	} else {
		shortened = string(runes[:maxLen])
	}
	return shortened, types.Fix{
		Field: path,
		Kind:  types.FixTruncatedString,
		From:  len(runes),
		To:    maxLen,
	}, true
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
