package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"stoik/internal/cache"
	"stoik/internal/config"
	"stoik/internal/http/handlers"
	"stoik/internal/repos"
)

// newTestApp serves the full API over a seeded in-memory store.
func newTestApp(t *testing.T, opts handlers.Options) (*fiber.App, *repos.Store) {
	t.Helper()
	store := repos.New(repos.NewMemory())
	if err := repos.SeedDemo(context.Background(), store); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cfg := config.Config{BulkRequiredOnCreate: true}
	deps := handlers.NewDeps(store, cfg, cache.NewLocal(0), nil)
	return handlers.NewApp(deps, opts), store
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

func decode(t *testing.T, b []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("decode %s: %v", string(b), err)
	}
}

type errorResponse struct {
	Error struct {
		Kind   string `json:"kind"`
		Detail string `json:"detail"`
	} `json:"error"`
}

func expectError(t *testing.T, resp *http.Response, body []byte, status int, kind string) errorResponse {
	t.Helper()
	if resp.StatusCode != status {
		t.Fatalf("expected %d, got %d body=%s", status, resp.StatusCode, string(body))
	}
	var e errorResponse
	decode(t, body, &e)
	if e.Error.Kind != kind {
		t.Fatalf("expected kind %s, got %+v", kind, e.Error)
	}
	return e
}
