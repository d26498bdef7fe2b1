package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterGeneration(t *testing.T) {
	f := newFixture(t)

	rec := postJSON(t, f.router, "/v1/generations",
		`{"task_id":"t1","kind":"image","owner_user_id":"u1","prompt":"a sunset","resolution":"2K"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp generationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TaskID != "t1" || resp.Status != "processing" {
		t.Errorf("resp = %+v", resp)
	}

	snap := f.registry.Snapshot()
	task, ok := snap["t1"]
	if !ok {
		t.Fatal("task not in registry")
	}
	if task.RequestParams.Resolution != "2K" || task.RequestParams.Prompt != "a sunset" {
		t.Errorf("request params = %+v", task.RequestParams)
	}
}

func TestRegisterGenerationDuplicate(t *testing.T) {
	f := newFixture(t)

	body := `{"task_id":"t1","kind":"video","owner_user_id":"u1"}`
	if rec := postJSON(t, f.router, "/v1/generations", body); rec.Code != http.StatusCreated {
		t.Fatalf("first register = %d", rec.Code)
	}
	if rec := postJSON(t, f.router, "/v1/generations", body); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register = %d, want 409", rec.Code)
	}
}

func TestRegisterGenerationValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{"task_id":`},
		{"missing task_id", `{"kind":"image","owner_user_id":"u1"}`},
		{"bad kind", `{"task_id":"t1","kind":"audio","owner_user_id":"u1"}`},
		{"missing owner", `{"task_id":"t1","kind":"image"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := postJSON(t, f.router, "/v1/generations", tc.body); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}
