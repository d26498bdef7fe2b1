package balance

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultEndpointPaths are the vendor paths observed to carry a balance at
// one time or another. The probe walks them in order.
var DefaultEndpointPaths = []string{
	"/api/v1/user/credits",
	"/api/user/credits",
	"/api/v1/account/balance",
	"/api/user/info",
}

// balanceKeyPaths are the JSON locations a numeric balance has been seen
// under across vendor API revisions.
var balanceKeyPaths = [][]string{
	{"credits"},
	{"balance"},
	{"data", "credits"},
	{"data", "balance"},
	{"data", "remaining"},
	{"user", "credits"},
	{"remainingCredits"},
}

// EndpointProbe tries a list of plausible authenticated vendor endpoints and
// accepts the first 2xx JSON response containing a numeric value under any
// known key path.
type EndpointProbe struct {
	client  *http.Client
	baseURL string
	paths   []string
	logger  zerolog.Logger
}

// NewEndpointProbe creates an endpoint probe against the vendor base URL.
// When paths is empty, DefaultEndpointPaths is used.
func NewEndpointProbe(baseURL string, paths []string, logger zerolog.Logger) *EndpointProbe {
	if len(paths) == 0 {
		paths = DefaultEndpointPaths
	}
	return &EndpointProbe{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		paths:   paths,
		logger:  logger,
	}
}

// Name implements Strategy.
func (p *EndpointProbe) Name() string { return "endpoint_probe" }

// TryResolve implements Strategy.
func (p *EndpointProbe) TryResolve(ctx context.Context, creds Credentials) (float64, bool) {
	if p.baseURL == "" {
		return 0, false
	}
	for _, path := range p.paths {
		if ctx.Err() != nil {
			return 0, false
		}
		credits, ok := p.probe(ctx, p.baseURL+path, creds)
		if ok {
			return credits, true
		}
	}
	return 0, false
}

func (p *EndpointProbe) probe(ctx context.Context, url string, creds Credentials) (float64, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, false
	}
	req.Header.Set("Accept", "application/json")
	if creds.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+creds.APIKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug().Err(err).Str("url", url).Msg("balance: endpoint unreachable")
		return 0, false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, false
	}

	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return 0, false
	}
	for _, keyPath := range balanceKeyPaths {
		if credits, ok := numberAt(doc, keyPath); ok {
			return credits, true
		}
	}
	return 0, false
}

// numberAt walks the key path through nested objects and returns the numeric
// value at the leaf. Numbers encoded as JSON strings are accepted too.
func numberAt(doc map[string]any, keyPath []string) (float64, bool) {
	var cur any = doc
	for _, key := range keyPath {
		obj, ok := cur.(map[string]any)
		if !ok {
			return 0, false
		}
		cur, ok = obj[key]
		if !ok {
			return 0, false
		}
	}
	switch v := cur.(type) {
	case float64:
		return v, true
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return n, true
		}
	}
	return 0, false
}
