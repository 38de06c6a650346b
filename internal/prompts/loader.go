// Package prompts builds the system and user prompts for each generation unit
// from the templates embedded in sitegen.json.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

const templateFile = "sitegen.json"

//go:embed sitegen.json
var templateJSON []byte

// Template keys in sitegen.json. Each unit also has an "unit-<type>" instruction.
const (
	KeySystemFoundation = "system-foundation"
	KeySystemSection    = "system-section"
	KeyKeepTheme        = "keep-theme"
	unitKeyPrefix       = "unit-"
)

// systemPlaceholders are the only placeholders a system template may use.
var systemPlaceholders = map[string]bool{"Unit": true, "Schema": true}

var placeholderPattern = regexp.MustCompile(`\{\{\.([A-Za-z]+)\}\}`)

var (
	loadOnce  sync.Once
	templates map[string]string
	loadErr   error
)

func load() (map[string]string, error) {
	loadOnce.Do(func() {
		templates, loadErr = parseTemplates(templateJSON)
	})
	return templates, loadErr
}

// parseTemplates decodes a template file and checks that every unit can be prompted.
func parseTemplates(data []byte) (map[string]string, error) {
	var t map[string]string
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", templateFile, err)
	}

	required := []string{KeySystemFoundation, KeySystemSection, KeyKeepTheme}
	for _, unit := range types.AllUnits() {
		required = append(required, InstructionKey(unit))
	}
	for _, key := range required {
		if strings.TrimSpace(t[key]) == "" {
			return nil, fmt.Errorf("prompt template %q is missing from %s", key, templateFile)
		}
	}

	for _, key := range []string{KeySystemFoundation, KeySystemSection} {
		if !strings.Contains(t[key], "{{.Schema}}") {
			return nil, fmt.Errorf("prompt template %q does not embed the schema", key)
		}
		for _, name := range Placeholders(t[key]) {
			if !systemPlaceholders[name] {
				return nil, fmt.Errorf("prompt template %q uses unknown placeholder %q", key, name)
			}
		}
	}
	return t, nil
}

// Template returns the template stored under key.
func Template(key string) (string, error) {
	t, err := load()
	if err != nil {
		return "", err
	}
	text, ok := t[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, templateFile)
	}
	return text, nil
}

// mustTemplate returns a template checked by parseTemplates. The file is
// embedded, so a failure here means the binary was built from a broken file.
func mustTemplate(key string) string {
	text, err := Template(key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return text
}

// InstructionKey returns the template key of a unit's task instruction.
func InstructionKey(unit types.UnitType) string {
	return unitKeyPrefix + unit.String()
}

// SystemTemplate returns the unformatted system template for unit.
func SystemTemplate(unit types.UnitType) string {
	if unit == types.UnitFoundation {
		return mustTemplate(KeySystemFoundation)
	}
	return mustTemplate(KeySystemSection)
}

// Instruction returns the task instruction that ends a unit's user prompt.
func Instruction(unit types.UnitType) string {
	if text, err := Template(InstructionKey(unit)); err == nil {
		return text
	}
	return "Write the " + unit.String() + " section."
}

// Format replaces {{.Key}} placeholders with values from data in one pass;
// placeholder text inside a value is never expanded. Placeholders without a
// value are left in place.
func Format(template string, data map[string]string) string {
	pairs := make([]string, 0, 2*len(data))
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Placeholders returns the distinct placeholder names in template, sorted.
func Placeholders(template string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	sort.Strings(names)
	return names
}
