// Command vendorbalance runs the balance-resolution chain against the vendor
// for one API key. Operators use it to verify credentials and to see which
// strategy currently works when the vendor shifts its API again.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"server/internal/balance"
	"server/internal/infra"
)

func main() {
	_ = godotenv.Load()

	var (
		apiKey     = flag.String("key", "", "vendor API key to validate (required)")
		baseURL    = flag.String("base", os.Getenv("VENDOR_BASE_URL"), "vendor API base URL")
		billingURL = flag.String("billing", os.Getenv("VENDOR_BILLING_URL"), "vendor billing page URL for the browser probe")
		useBrowser = flag.Bool("browser", false, "enable the headless-browser probe")
		timeout    = flag.Duration("timeout", balance.DefaultResolveTimeout, "total resolution budget")
	)
	flag.Parse()

	if strings.TrimSpace(*apiKey) == "" {
		fmt.Fprintln(os.Stderr, "vendorbalance: -key is required")
		flag.Usage()
		os.Exit(2)
	}

	logger := infra.NewLogger(os.Getenv("APP_ENV"))

	strategies := []balance.Strategy{
		balance.NewEndpointProbe(*baseURL, nil, logger),
	}
	if *useBrowser && *billingURL != "" {
		strategies = append(strategies, balance.NewBrowserProbe(*billingURL, logger))
	}

	resolver := balance.NewResolver(logger, strategies...).WithTimeout(*timeout)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+5*time.Second)
	defer cancel()

	credits := resolver.Resolve(ctx, balance.Credentials{APIKey: *apiKey})
	fmt.Printf("credits: %g\n", credits)
}
