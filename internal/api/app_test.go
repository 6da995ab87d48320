package api

import (
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/onelson/estuary/internal/configuration"
	"github.com/onelson/estuary/internal/index"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := configuration.Default()
	cfg.CrateDir = t.TempDir()
	cfg.IndexDir = t.TempDir()

	idx, err := index.Open(cfg.IndexDir, []byte(`{"dl":"http://localhost/dl","api":"http://localhost"}`))
	if err != nil {
		t.Fatalf("index.Open: %v", err)
	}
	return NewApp(cfg, idx)
}

func lengthPrefixed(b []byte) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
	return append(lenBuf[:], b...)
}

func publishBody(manifestJSON, artifact []byte) []byte {
	body := lengthPrefixed(manifestJSON)
	body = append(body, lengthPrefixed(artifact)...)
	return body
}

func TestPublishRequiresAuthorization(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/crates/new", nil)
	w := httptest.NewRecorder()

	app.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (errors ride in the body)", w.Code)
	}
	if !strings.Contains(w.Body.String(), "UNAUTHORIZED") && !strings.Contains(w.Body.String(), "must be logged in") {
		t.Fatalf("expected unauthorized error, got %q", w.Body.String())
	}
}

func TestPublishThenDownloadRoundTrip(t *testing.T) {
	app := newTestApp(t)
	manifestJSON := []byte(`{"name":"foo","vers":"1.0.0","deps":[],"features":{}}`)
	artifact := []byte("crate tarball bytes")
	body := publishBody(manifestJSON, artifact)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/crates/new", strings.NewReader(string(body)))
	req.Header.Set("Authorization", "token")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("publish status = %d, body = %q", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "errors") {
		t.Fatalf("unexpected error response: %q", w.Body.String())
	}

	dlReq := httptest.NewRequest(http.MethodGet, "/api/v1/crates/foo/1.0.0/download", nil)
	dlW := httptest.NewRecorder()
	app.ServeHTTP(dlW, dlReq)

	if dlW.Code != http.StatusOK {
		t.Fatalf("download status = %d, body = %q", dlW.Code, dlW.Body.String())
	}
	if dlW.Body.String() != string(artifact) {
		t.Fatalf("downloaded artifact = %q, want %q", dlW.Body.String(), artifact)
	}
}

func TestPublishDuplicateVersionReturnsVersionExists(t *testing.T) {
	app := newTestApp(t)
	manifestJSON := []byte(`{"name":"foo","vers":"1.0.0","deps":[],"features":{}}`)
	body := publishBody(manifestJSON, []byte("artifact"))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/crates/new", strings.NewReader(string(body)))
		req.Header.Set("Authorization", "token")
		w := httptest.NewRecorder()
		app.ServeHTTP(w, req)
		if i == 1 && !strings.Contains(w.Body.String(), "crate version already exists") {
			t.Fatalf("expected duplicate-version error, got %q", w.Body.String())
		}
	}
}

func TestYankUnknownCrateReturnsNotFound(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/crates/nope/1.0.0/yank", nil)
	req.Header.Set("Authorization", "token")
	w := httptest.NewRecorder()

	app.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "does not exist") {
		t.Fatalf("expected not-found error, got %q", w.Body.String())
	}
}

func TestYankThenUnyank(t *testing.T) {
	app := newTestApp(t)
	manifestJSON := []byte(`{"name":"foo","vers":"1.0.0","deps":[],"features":{}}`)
	body := publishBody(manifestJSON, []byte("artifact"))
	pubReq := httptest.NewRequest(http.MethodPut, "/api/v1/crates/new", strings.NewReader(string(body)))
	pubReq.Header.Set("Authorization", "token")
	app.ServeHTTP(httptest.NewRecorder(), pubReq)

	yankReq := httptest.NewRequest(http.MethodDelete, "/api/v1/crates/foo/1.0.0/yank", nil)
	yankReq.Header.Set("Authorization", "token")
	yankW := httptest.NewRecorder()
	app.ServeHTTP(yankW, yankReq)
	if !strings.Contains(yankW.Body.String(), `"ok":true`) {
		t.Fatalf("yank response = %q", yankW.Body.String())
	}

	unyankReq := httptest.NewRequest(http.MethodPut, "/api/v1/crates/foo/1.0.0/unyank", nil)
	unyankReq.Header.Set("Authorization", "token")
	unyankW := httptest.NewRecorder()
	app.ServeHTTP(unyankW, unyankReq)
	if !strings.Contains(unyankW.Body.String(), `"ok":true`) {
		t.Fatalf("unyank response = %q", unyankW.Body.String())
	}
}

func TestSearchAlwaysEmpty(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/crates?q=foo", nil)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), `"total":0`) {
		t.Fatalf("search response = %q", w.Body.String())
	}
}

func TestMeEndpointServesHTML(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("Content-Type = %q", ct)
	}
}

func TestInfoRefsReachableThroughApp(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/git/index/info/refs?service=git-upload-pack", nil)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
