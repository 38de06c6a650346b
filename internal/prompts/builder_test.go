package prompts

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

func testRequest() *types.GenerationRequest {
	return &types.GenerationRequest{
		BusinessName: "Bloom & Root",
		Industry:     "Plant shop",
		Location:     "Portland, OR",
		Description:  "Neighborhood houseplant shop with repotting services.",
		Contact: types.ContactChannels{
			Email: "hello@bloomandroot.com",
			Phone: "555-0100",
		},
	}
}

func testTheme() *types.Theme {
	return &types.Theme{
		Colors: types.ThemeColors{Primary: "#2F6B3A", Secondary: "#F4EDE1", Accent: "#E07A5F"},
		Fonts:  types.ThemeFonts{Heading: "Playfair Display", Body: "Inter"},
	}
}

func TestBuild_EveryUnitNonEmpty(t *testing.T) {
	req := testRequest()
	for _, unit := range types.AllUnits() {
		p := Build(unit, req, testTheme())
		assert.NotEmpty(t, p.System, unit)
		assert.NotEmpty(t, p.User, unit)
		assert.NotContains(t, p.System, "{{.", unit)
		assert.Contains(t, p.System, `"$schema"`, unit)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	req := testRequest()
	first := Build(types.UnitAbout, req, testTheme())
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Build(types.UnitAbout, req, testTheme()))
	}
}

func TestBuild_SectionEmbedsTheme(t *testing.T) {
	p := Build(types.UnitFeatures, testRequest(), testTheme())

	assert.Contains(t, p.User, "Site theme")
	assert.Contains(t, p.User, "- Primary color: #2F6B3A")
	assert.Contains(t, p.User, "- Heading font: Playfair Display")
	assert.Contains(t, p.System, "features section")
}

func TestBuild_FoundationIgnoresThemeArgument(t *testing.T) {
	p := Build(types.UnitFoundation, testRequest(), testTheme())
	assert.NotContains(t, p.User, "#2F6B3A")
	assert.NotContains(t, p.User, "Keep the existing brand theme")
}

func TestBuild_FoundationKeepsRequestTheme(t *testing.T) {
	req := testRequest()
	req.Theme = testTheme()

	p := Build(types.UnitFoundation, req, nil)
	assert.Contains(t, p.User, "Keep the existing brand theme")
	assert.Contains(t, p.User, "- Accent color: #E07A5F")
}

func TestBuild_SectionFallsBackToRequestTheme(t *testing.T) {
	req := testRequest()
	req.Theme = testTheme()

	p := Build(types.UnitContact, req, nil)
	assert.Contains(t, p.User, "- Body font: Inter")
}

func TestBuild_ContactDetails(t *testing.T) {
	p := Build(types.UnitContact, testRequest(), testTheme())
	assert.Contains(t, p.User, "- Email: hello@bloomandroot.com")
	assert.Contains(t, p.User, "- Phone: 555-0100")
	assert.NotContains(t, p.User, "- Address:")
}

func TestBuild_PlaceholdersInRequestNotExpanded(t *testing.T) {
	req := testRequest()
	req.Description = "We love {{.Schema}} and {{.Unit}}"

	p := Build(types.UnitAbout, req, testTheme())
	assert.Contains(t, p.User, "We love {{.Schema}} and {{.Unit}}")
}

func TestBuild_ExcerptBudgets(t *testing.T) {
	req := testRequest()
	req.PriorSiteURL = "https://old.example.com"
	req.PriorSiteExcerpt = strings.Repeat("ü", 5000)

	foundation := Build(types.UnitFoundation, req, nil)
	section := Build(types.UnitAbout, req, testTheme())

	assert.Contains(t, foundation.User, strings.Repeat("ü", FoundationExcerptBudget)+TruncationMarker)
	assert.NotContains(t, foundation.User, strings.Repeat("ü", FoundationExcerptBudget+1))
	assert.Contains(t, section.User, strings.Repeat("ü", SectionExcerptBudget)+TruncationMarker)
	assert.NotContains(t, section.User, strings.Repeat("ü", SectionExcerptBudget+1))
	assert.Contains(t, section.User, "(https://old.example.com)")
}

func TestTruncateExcerpt(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		budget int
		want   string
	}{
		{"short text unchanged", "hello", 10, "hello"},
		{"exact budget unchanged", "hello", 5, "hello"},
		{"cut with marker", "hello world", 5, "hello" + TruncationMarker},
		{"multibyte runes counted once", "日本語テキスト", 3, "日本語" + TruncationMarker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateExcerpt(tt.input, tt.budget)
			assert.Equal(t, tt.want, got)
			require.True(t, utf8.ValidString(got))
		})
	}
}

func TestExcerptBudget(t *testing.T) {
	assert.Equal(t, FoundationExcerptBudget, ExcerptBudget(types.UnitFoundation))
	for _, unit := range types.SectionUnits() {
		assert.Equal(t, SectionExcerptBudget, ExcerptBudget(unit))
	}
	assert.Less(t, SectionExcerptBudget, FoundationExcerptBudget)
}
