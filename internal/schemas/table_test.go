package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

func TestFor_EveryUnitHasSchema(t *testing.T) {
	for _, unit := range types.AllUnits() {
		s, err := For(unit)
		require.NoError(t, err, unit)
		assert.Equal(t, unit, s.Unit)
		assert.Equal(t, TypeObject, s.Root.Type)
		assert.NotEmpty(t, s.Root.Properties)
	}
}

func TestSchema_Lookup(t *testing.T) {
	foundation, err := For(types.UnitFoundation)
	require.NoError(t, err)

	seo := foundation.Lookup("seo.description")
	require.NotNil(t, seo)
	assert.Equal(t, 160, seo.MaxLength)

	keyword := foundation.Lookup("seo.keywords[]")
	require.NotNil(t, keyword)
	assert.Equal(t, 40, keyword.MaxLength)

	assert.Equal(t, hexColorPattern, foundation.Lookup("theme.colors.primary").Pattern)
	assert.Nil(t, foundation.Lookup("seo.missing"))

	features, err := For(types.UnitFeatures)
	require.NoError(t, err)
	items := features.Lookup("items")
	require.NotNil(t, items)
	assert.Equal(t, 3, items.MinItems)
	assert.Equal(t, 8, items.MaxItems)
	assert.Equal(t, 60, features.Lookup("items[].title").MaxLength)
}

func TestSchema_JSONSchema(t *testing.T) {
	s, err := For(types.UnitContact)
	require.NoError(t, err)

	doc := s.JSONSchema()
	assert.Equal(t, "http://json-schema.org/draft-07/schema#", doc["$schema"])
	assert.Equal(t, "object", doc["type"])
	assert.Equal(t, []string{"title", "email"}, doc["required"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	hours, ok := props["hours"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "array", hours["type"])
	assert.Equal(t, 7, hours["maxItems"])
	_, hasMin := hours["minItems"]
	assert.False(t, hasMin)
}

func TestSchema_JSONSchemaTextIsStable(t *testing.T) {
	s, err := For(types.UnitFoundation)
	require.NoError(t, err)

	first := s.JSONSchemaText()
	assert.Equal(t, first, s.JSONSchemaText())

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(first), &decoded))
	assert.Equal(t, "foundation", decoded["title"])
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path, head, rest string
	}{
		{"seo.description", "seo", "description"},
		{"items[].title", "items", "[].title"},
		{"[].title", "[]", "title"},
		{"[]", "[]", ""},
		{"title", "title", ""},
	}
	for _, tt := range tests {
		head, rest := splitPath(tt.path)
		assert.Equal(t, tt.head, head, tt.path)
		assert.Equal(t, tt.rest, rest, tt.path)
	}
}
