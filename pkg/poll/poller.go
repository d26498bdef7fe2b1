// Package poll implements the client side of the generation-status contract:
// a fixed-interval, bounded polling loop against the status endpoint.
package poll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	// DefaultInterval is the fixed delay between status checks.
	DefaultInterval = time.Second

	// DefaultMaxAttempts bounds the loop at a two-minute ceiling.
	DefaultMaxAttempts = 120
)

// ErrTimeout reports that the attempt budget was exhausted before the task
// reached a terminal state. A vendor-reported failure is not a timeout: it
// arrives as a terminal Result carrying the failure status.
var ErrTimeout = errors.New("poll: timed out waiting for terminal state")

// Result is one observation of a tracked generation.
type Result struct {
	Status       string `json:"status"`
	ResultURL    string `json:"result_url,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// StatusFunc fetches the current status of a task. done is true once the
// task reached a terminal state.
type StatusFunc func(ctx context.Context, taskID string) (Result, bool, error)

// Poller drives a StatusFunc until a terminal state, an error, or the
// attempt budget runs out.
type Poller struct {
	Interval    time.Duration
	MaxAttempts int
}

// Wait polls until the task is terminal. The loop is terminal on the first
// success or fail; exhausting the budget returns ErrTimeout.
func (p Poller) Wait(ctx context.Context, fetch StatusFunc, taskID string) (Result, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	for i := 0; i < attempts; i++ {
		res, done, err := fetch(ctx, taskID)
		if err != nil {
			return Result{}, err
		}
		if done {
			return res, nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(interval):
		}
	}
	return Result{}, ErrTimeout
}

// HTTPStatus returns a StatusFunc querying the orchestrator's status
// endpoint over HTTP.
func HTTPStatus(client *http.Client, baseURL string) StatusFunc {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return func(ctx context.Context, taskID string) (Result, bool, error) {
		url := fmt.Sprintf("%s/v1/generations/%s", baseURL, taskID)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return Result{}, false, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return Result{}, false, err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return Result{}, false, fmt.Errorf("poll: status query returned %d", resp.StatusCode)
		}
		var res Result
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			return Result{}, false, fmt.Errorf("poll: decode status: %w", err)
		}
		done := res.Status == "success" || res.Status == "fail"
		return res, done, nil
	}
}
