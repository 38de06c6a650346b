package types

// Theme holds the branding values produced by Foundation and reused by every section prompt.
type Theme struct {
	Colors ThemeColors `json:"colors"`
	Fonts  ThemeFonts  `json:"fonts"`
}

// ThemeColors is the site color palette as hex strings.
type ThemeColors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

// ThemeFonts is the heading/body font pairing.
type ThemeFonts struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// Content is a validated, typed record for one unit type.
type Content interface {
	UnitType() UnitType
}

// SEO holds search metadata for the site.
type SEO struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Hero is the landing banner content.
type Hero struct {
	Headline    string `json:"headline"`
	Subheadline string `json:"subheadline,omitempty"`
	CTAText     string `json:"ctaText"`
}

// Foundation is the site metadata, theme, and hero produced by the first call.
type Foundation struct {
	SiteName    string `json:"siteName"`
	Tagline     string `json:"tagline"`
	Description string `json:"description"`
	Theme       Theme  `json:"theme"`
	SEO         SEO    `json:"seo"`
	Hero        Hero   `json:"hero"`
}

// UnitType implements Content.
func (*Foundation) UnitType() UnitType { return UnitFoundation }

// AboutSection is the "about us" block.
type AboutSection struct {
	Title   string   `json:"title"`
	Content []string `json:"content"`
	Mission string   `json:"mission,omitempty"`
	Vision  string   `json:"vision,omitempty"`
}

// UnitType implements Content.
func (*AboutSection) UnitType() UnitType { return UnitAbout }

// ValueItem is a single company value.
type ValueItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ValuesSection lists the company values.
type ValuesSection struct {
	Title string      `json:"title"`
	Items []ValueItem `json:"items"`
}

// UnitType implements Content.
func (*ValuesSection) UnitType() UnitType { return UnitValues }

// FeatureItem is a single product or business feature.
type FeatureItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
}

// FeaturesSection highlights what sets the business apart.
type FeaturesSection struct {
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle,omitempty"`
	Items    []FeatureItem `json:"items"`
}

// UnitType implements Content.
func (*FeaturesSection) UnitType() UnitType { return UnitFeatures }

// ServiceItem is a single offered service.
type ServiceItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price,omitempty"`
}

// ServicesSection lists the services offered.
type ServicesSection struct {
	Title string        `json:"title"`
	Items []ServiceItem `json:"items"`
}

// UnitType implements Content.
func (*ServicesSection) UnitType() UnitType { return UnitServices }

// TeamMember is one person on the team page.
type TeamMember struct {
	Name string `json:"name"`
	Role string `json:"role"`
	Bio  string `json:"bio,omitempty"`
}

// TeamSection introduces the people behind the business.
type TeamSection struct {
	Title   string       `json:"title"`
	Members []TeamMember `json:"members"`
}

// UnitType implements Content.
func (*TeamSection) UnitType() UnitType { return UnitTeam }

// Testimonial is one customer quote.
type Testimonial struct {
	Quote    string `json:"quote"`
	Author   string `json:"author"`
	Location string `json:"location,omitempty"`
}

// TestimonialsSection holds customer quotes.
type TestimonialsSection struct {
	Title string        `json:"title"`
	Items []Testimonial `json:"items"`
}

// UnitType implements Content.
func (*TestimonialsSection) UnitType() UnitType { return UnitTestimonials }

// ContactSection holds the public contact block.
type ContactSection struct {
	Title       string   `json:"title"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone,omitempty"`
	Address     string   `json:"address,omitempty"`
	Hours       []string `json:"hours,omitempty"`
	Description string   `json:"description,omitempty"`
}

// UnitType implements Content.
func (*ContactSection) UnitType() UnitType { return UnitContact }

// NewContent returns an empty record for the unit type, ready to be decoded into.
func NewContent(u UnitType) Content {
	switch u {
	case UnitFoundation:
		return &Foundation{}
	case UnitAbout:
		return &AboutSection{}
	case UnitValues:
		return &ValuesSection{}
	case UnitFeatures:
		return &FeaturesSection{}
	case UnitServices:
		return &ServicesSection{}
	case UnitTeam:
		return &TeamSection{}
	case UnitTestimonials:
		return &TestimonialsSection{}
	case UnitContact:
		return &ContactSection{}
	default:
		return nil
	}
}
