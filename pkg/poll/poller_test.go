package poll

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWaitReturnsTerminalResult(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context, taskID string) (Result, bool, error) {
		calls++
		if calls < 3 {
			return Result{Status: "processing"}, false, nil
		}
		return Result{Status: "success", ResultURL: "https://cdn/img.png"}, true, nil
	}

	p := Poller{Interval: time.Millisecond, MaxAttempts: 10}
	res, err := p.Wait(context.Background(), fetch, "t1")
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if res.Status != "success" || res.ResultURL != "https://cdn/img.png" {
		t.Errorf("res = %+v", res)
	}
	if calls != 3 {
		t.Errorf("fetch called %d times, want 3", calls)
	}
}

func TestWaitVendorFailureIsResultNotError(t *testing.T) {
	fetch := func(ctx context.Context, taskID string) (Result, bool, error) {
		return Result{Status: "fail", ErrorMessage: "GPU overload"}, true, nil
	}

	res, err := Poller{Interval: time.Millisecond}.Wait(context.Background(), fetch, "t1")
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if res.Status != "fail" || res.ErrorMessage != "GPU overload" {
		t.Errorf("res = %+v", res)
	}
}

func TestWaitTimesOut(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context, taskID string) (Result, bool, error) {
		calls++
		return Result{Status: "processing"}, false, nil
	}

	p := Poller{Interval: time.Millisecond, MaxAttempts: 5}
	_, err := p.Wait(context.Background(), fetch, "t1")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if calls != 5 {
		t.Errorf("fetch called %d times, want the full budget of 5", calls)
	}
}

func TestWaitPropagatesFetchError(t *testing.T) {
	boom := errors.New("network down")
	fetch := func(ctx context.Context, taskID string) (Result, bool, error) {
		return Result{}, false, boom
	}

	_, err := Poller{Interval: time.Millisecond}.Wait(context.Background(), fetch, "t1")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want fetch error", err)
	}
}

func TestWaitHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetch := func(ctx context.Context, taskID string) (Result, bool, error) {
		cancel()
		return Result{Status: "processing"}, false, nil
	}

	p := Poller{Interval: time.Minute, MaxAttempts: 10}
	_, err := p.Wait(ctx, fetch, "t1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/generations/t1" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","result_url":"https://cdn/img.png"}`))
	}))
	defer srv.Close()

	fetch := HTTPStatus(srv.Client(), srv.URL)
	res, done, err := fetch(context.Background(), "t1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !done {
		t.Error("success status must be terminal")
	}
	if res.ResultURL != "https://cdn/img.png" {
		t.Errorf("result_url = %q", res.ResultURL)
	}

	if _, _, err := fetch(context.Background(), "missing"); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestHTTPStatusProcessingNotDone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"processing"}`))
	}))
	defer srv.Close()

	_, done, err := HTTPStatus(srv.Client(), srv.URL)(context.Background(), "t1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if done {
		t.Error("processing must not be terminal")
	}
}
