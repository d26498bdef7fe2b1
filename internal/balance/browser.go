package balance

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// BrowserProbe renders the vendor's billing page in a headless browser and
// extracts the displayed balance. The page builds the value client-side, so
// the raw HTML never contains it; a real render is the only way in when no
// API endpoint answers.
type BrowserProbe struct {
	billingURL string
	timeout    time.Duration
	logger     zerolog.Logger
}

// NewBrowserProbe creates a browser probe for the given billing page URL.
func NewBrowserProbe(billingURL string, logger zerolog.Logger) *BrowserProbe {
	return &BrowserProbe{
		billingURL: billingURL,
		timeout:    30 * time.Second,
		logger:     logger,
	}
}

// Name implements Strategy.
func (p *BrowserProbe) Name() string { return "browser_render" }

// TryResolve implements Strategy.
func (p *BrowserProbe) TryResolve(ctx context.Context, creds Credentials) (float64, bool) {
	if p.billingURL == "" {
		return 0, false
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	headers := network.Headers{}
	if creds.APIKey != "" {
		headers["Authorization"] = "Bearer " + creds.APIKey
	}

	var rendered string
	err := chromedp.Run(browserCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(headers),
		chromedp.Navigate(p.billingURL),
		chromedp.WaitReady("body"),
		chromedp.Text("body", &rendered, chromedp.ByQuery),
	)
	if err != nil {
		p.logger.Debug().Err(err).Str("url", p.billingURL).Msg("balance: billing page render failed")
		return 0, false
	}
	return extractCredits(rendered)
}

// creditsPattern matches the first number following a credits/balance label
// in the rendered page text.
var creditsPattern = regexp.MustCompile(`(?i)(?:credits?|balance)\D{0,20}?(-?\d+(?:\.\d+)?)`)

func extractCredits(text string) (float64, bool) {
	match := creditsPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	credits, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return credits, true
}

var (
	_ Strategy = (*EndpointProbe)(nil)
	_ Strategy = (*BrowserProbe)(nil)
)
