package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ExcerptOptions configures PriorSiteExcerpt.
type ExcerptOptions struct {
	Fetch *Options
	// UseBrowser enables rendering when the fetched page has too little text.
	UseBrowser bool
	// Render defaults to a headless browser with BrowserTimeout.
	Render         Renderer
	BrowserTimeout time.Duration
	Log            *zap.Logger
}

// PriorSiteExcerpt fetches a business's existing site and returns its title,
// meta description and main text, one block per line group. The text is not
// truncated here; the prompt builder applies its own budget.
func PriorSiteExcerpt(ctx context.Context, siteURL string, opts *ExcerptOptions) (string, error) {
	if opts == nil {
		opts = &ExcerptOptions{}
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	result, err := URL(ctx, siteURL, opts.Fetch)
	if err != nil {
		return "", err
	}

	excerpt, err := excerptFromHTML(siteURL, result.HTML)
	if err != nil {
		return "", &Error{URL: siteURL, Message: "failed to extract text", Cause: err}
	}

	if opts.UseBrowser && ShouldUseBrowser(excerpt) {
		log.Info("prior site text too short, rendering in browser",
			zap.String("url", siteURL), zap.Int("runes", len([]rune(excerpt))))

		render := opts.Render
		if render == nil {
			timeout := opts.BrowserTimeout
			if timeout <= 0 {
				timeout = DefaultTimeout
			}
			render = BrowserRenderer(timeout, log)
		}

		html, renderErr := render(ctx, siteURL)
		if renderErr != nil {
			// The HTTP text is still usable.
			log.Warn("browser rendering failed", zap.String("url", siteURL), zap.Error(renderErr))
		} else if rendered, extractErr := excerptFromHTML(siteURL, html); extractErr == nil && len(rendered) > len(excerpt) {
			excerpt = rendered
		}
	}

	if strings.TrimSpace(excerpt) == "" {
		return "", &Error{URL: siteURL, Message: "no text found on page"}
	}
	return excerpt, nil
}

func excerptFromHTML(siteURL, html string) (string, error) {
	platform := DetectPlatform(siteURL, html)

	title, description, err := PageMetadata(html)
	if err != nil {
		return "", err
	}
	text, err := ExtractMainText(html, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
	if err != nil {
		return "", err
	}

	var parts []string
	if title != "" {
		parts = append(parts, fmt.Sprintf("Title: %s", title))
	}
	if description != "" {
		parts = append(parts, fmt.Sprintf("Description: %s", description))
	}
	if text != "" {
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n"), nil
}
