//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestProbes(t *testing.T) {
	for _, path := range []string{"/livez", "/readyz"} {
		t.Run(path, func(t *testing.T) {
			resp := do(t, http.MethodGet, path, nil)
			defer resp.Body.Close()
			expectStatus(t, resp, http.StatusOK)

			if body := decodeJSON[healthResponse](t, resp); body.Status != "ok" {
				t.Fatalf("expected status ok, got %q", body.Status)
			}
		})
	}
}

func TestRequestIDAndCORS(t *testing.T) {
	resp := do(t, http.MethodGet, "/api/categories", nil,
		"X-Request-ID", "it-req-1",
		"Origin", "http://shop.test",
	)
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	if got := resp.Header.Get("X-Request-ID"); got != "it-req-1" {
		t.Errorf("X-Request-ID: got %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://shop.test" {
		t.Errorf("Access-Control-Allow-Origin: got %q", got)
	}
}
