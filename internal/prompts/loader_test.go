package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

func TestEmbeddedTemplatesCoverEveryUnit(t *testing.T) {
	_, err := parseTemplates(templateJSON)
	require.NoError(t, err)

	for _, unit := range types.AllUnits() {
		t.Run(unit.String(), func(t *testing.T) {
			assert.NotEmpty(t, Instruction(unit))
			assert.Contains(t, SystemTemplate(unit), "{{.Schema}}")
		})
	}
}

func TestSystemTemplate(t *testing.T) {
	foundation, err := Template(KeySystemFoundation)
	require.NoError(t, err)
	section, err := Template(KeySystemSection)
	require.NoError(t, err)

	assert.Equal(t, foundation, SystemTemplate(types.UnitFoundation))
	for _, unit := range types.SectionUnits() {
		assert.Equal(t, section, SystemTemplate(unit), "unit %s", unit)
	}
	assert.Equal(t, []string{"Schema", "Unit"}, Placeholders(section))
}

func TestTemplate_UnknownKey(t *testing.T) {
	_, err := Template("unit-pricing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in sitegen.json")
}

func TestInstruction_FallsBackForUnknownUnit(t *testing.T) {
	assert.Equal(t, "Write the pricing section.", Instruction(types.UnitType("pricing")))
}

func TestParseTemplates(t *testing.T) {
	complete := `{
		"system-foundation": "Foundation. {{.Schema}}",
		"system-section": "Write {{.Unit}}. {{.Schema}}",
		"keep-theme": "Keep this theme.",
		"unit-foundation": "f", "unit-about": "a", "unit-values": "v", "unit-features": "f",
		"unit-services": "s", "unit-team": "t", "unit-testimonials": "t", "unit-contact": "c"
	}`

	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "complete file", data: complete},
		{name: "not JSON", data: `{"system-foundation":`, wantErr: "failed to parse sitegen.json"},
		{
			name:    "missing unit instruction",
			data:    `{"system-foundation": "{{.Schema}}", "system-section": "{{.Schema}}", "keep-theme": "k"}`,
			wantErr: `"unit-foundation" is missing`,
		},
		{
			name:    "system template without schema",
			data:    strings.Replace(complete, "Foundation. {{.Schema}}", "Foundation.", 1),
			wantErr: "does not embed the schema",
		},
		{
			name:    "unknown placeholder",
			data:    strings.Replace(complete, "Write {{.Unit}}.", "Write {{.Section}}.", 1),
			wantErr: `unknown placeholder "Section"`,
		},
		{
			name:    "blank keep-theme",
			data:    strings.Replace(complete, "Keep this theme.", "  ", 1),
			wantErr: `"keep-theme" is missing`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTemplates([]byte(tt.data))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		want     string
	}{
		{
			name:     "fills unit and schema",
			template: "Write the {{.Unit}} section. Schema: {{.Schema}}",
			data:     map[string]string{"Unit": "about", "Schema": `{"type":"object"}`},
			want:     `Write the about section. Schema: {"type":"object"}`,
		},
		{
			name:     "missing value keeps placeholder",
			template: "Write the {{.Unit}} section.",
			data:     map[string]string{},
			want:     "Write the {{.Unit}} section.",
		},
		{
			name:     "placeholder inside a value is not expanded",
			template: "{{.Unit}}: {{.Schema}}",
			data:     map[string]string{"Unit": "{{.Schema}}", "Schema": "{}"},
			want:     "{{.Schema}}: {}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.template, tt.data))
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"Schema", "Unit"}, Placeholders("{{.Unit}} {{.Schema}} {{.Unit}}"))
	assert.Empty(t, Placeholders("no placeholders, {not one}"))
}
