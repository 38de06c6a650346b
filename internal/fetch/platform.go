// Package fetch - platform.go detects the site builder behind a prior site and
// supplies platform-specific selectors.
package fetch

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Platform represents a known website builder.
type Platform string

const (
	// PlatformWix is the Wix site builder
	PlatformWix Platform = "wix"
	// PlatformSquarespace is the Squarespace site builder
	PlatformSquarespace Platform = "squarespace"
	// PlatformShopify is the Shopify storefront
	PlatformShopify Platform = "shopify"
	// PlatformWordPress is WordPress, hosted or self-hosted
	PlatformWordPress Platform = "wordpress"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the site builder from the URL host, falling back
// to the page's generator meta tag when html is non-empty.
func DetectPlatform(urlStr, html string) Platform {
	if parsed, err := url.Parse(urlStr); err == nil {
		host := strings.ToLower(parsed.Host)
		switch {
		case strings.HasSuffix(host, "wixsite.com") || strings.HasSuffix(host, "wix.com"):
			return PlatformWix
		case strings.HasSuffix(host, "squarespace.com"):
			return PlatformSquarespace
		case strings.HasSuffix(host, "myshopify.com"):
			return PlatformShopify
		case strings.HasSuffix(host, "wordpress.com"):
			return PlatformWordPress
		}
	}

	if html == "" {
		return PlatformUnknown
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return PlatformUnknown
	}
	generator, _ := doc.Find(`meta[name="generator"]`).First().Attr("content")
	generator = strings.ToLower(generator)
	switch {
	case strings.Contains(generator, "wix"):
		return PlatformWix
	case strings.Contains(generator, "squarespace"):
		return PlatformSquarespace
	case strings.Contains(generator, "wordpress"):
		return PlatformWordPress
	case doc.Find(`link[href*="cdn.shopify.com"], script[src*="cdn.shopify.com"]`).Length() > 0:
		return PlatformShopify
	}
	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors optimized for a specific platform.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformWix:
		return []string{
			"#PAGES_CONTAINER",
			"[data-testid='richTextElement']",
			"main",
		}
	case PlatformSquarespace:
		return []string{
			"#page",
			".sqs-layout",
			"main",
		}
	case PlatformShopify:
		return []string{
			"#MainContent",
			".shopify-section",
			"main",
		}
	case PlatformWordPress:
		return []string{
			".entry-content",
			".site-main",
			"main",
			"article",
		}
	default:
		return DefaultTextSelectors()
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific platform.
func PlatformNoiseSelectors(platform Platform) []string {
	// Common noise selectors for all platforms
	common := []string{
		// Forms and newsletter signups
		"form",
		".newsletter",
		".newsletter-signup",

		// Social and share buttons
		".social-share",
		".share-buttons",
		".social-links",

		// Cookie and GDPR
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",
	}

	switch platform {
	case PlatformWix:
		return append(common,
			"#WIX_ADS",
			"[data-testid='linkBar']",
		)
	case PlatformSquarespace:
		return append(common,
			".sqs-announcement-bar",
			".sqs-cart-dropzone",
		)
	case PlatformShopify:
		return append(common,
			".cart-drawer",
			".product-recommendations",
			".announcement-bar",
		)
	case PlatformWordPress:
		return append(common,
			".comments-area",
			".widget-area",
			"#wpadminbar",
		)
	default:
		return common
	}
}
