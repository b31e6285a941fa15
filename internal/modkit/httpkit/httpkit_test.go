package httpkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "zayavki/internal/platform/errors"
	phttp "zayavki/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type window struct {
	From string `json:"from" query:"from" validate:"omitempty,timestamp"`
}

func newRouter() (*chi.Mux, Router) {
	m := chi.NewRouter()
	return m, phttp.AdaptChi(m)
}

func serve(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var env Envelope
	if rr.Code != http.StatusNoContent {
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v (%s)", err, rr.Body.String())
		}
	}
	return rr, env
}

func TestSugar_GetPostQuery(t *testing.T) {
	mux, r := newRouter()
	Get(r, "/plain", func(*http.Request) (any, error) { return map[string]int{"n": 1}, nil })
	Get(r, "/empty", func(*http.Request) (any, error) { return NoContent(), nil })
	Get(r, "/missing", func(*http.Request) (any, error) { return nil, perr.NotFoundf("nope") })
	GetQuery(r, "/q", func(_ *http.Request, in window) (any, error) { return in.From, nil })
	PostJSON(r, "/j", func(_ *http.Request, in window) (any, error) { return in.From, nil })

	rr, env := serve(t, mux, http.MethodGet, "/plain", "")
	if rr.Code != 200 || env.Status != "OK" {
		t.Fatalf("plain: %d %+v", rr.Code, env)
	}
	if rr, _ = serve(t, mux, http.MethodGet, "/empty", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("empty: %d", rr.Code)
	}
	rr, env = serve(t, mux, http.MethodGet, "/missing", "")
	if rr.Code != http.StatusNotFound || env.Code != perr.ErrorCodeNotFound || env.Error != "nope" {
		t.Fatalf("missing: %d %+v", rr.Code, env)
	}
	rr, env = serve(t, mux, http.MethodGet, "/q?from=2025-06-01", "")
	if rr.Code != 200 || env.Data != "2025-06-01" {
		t.Fatalf("query: %d %+v", rr.Code, env)
	}
	rr, env = serve(t, mux, http.MethodGet, "/q?from=soon", "")
	if rr.Code != http.StatusBadRequest || env.Code != perr.ErrorCodeValidation {
		t.Fatalf("bad query: %d %+v", rr.Code, env)
	}
	rr, env = serve(t, mux, http.MethodPost, "/j", `{"from":"2025-06-02"}`)
	if rr.Code != 200 || env.Data != "2025-06-02" {
		t.Fatalf("json: %d %+v", rr.Code, env)
	}
	rr, env = serve(t, mux, http.MethodPost, "/j", `{"from":`)
	if rr.Code != http.StatusBadRequest || env.Code != perr.ErrorCodeJSON {
		t.Fatalf("bad json: %d %+v", rr.Code, env)
	}
}

func TestMountAPIV1_PrefixAndMiddleware(t *testing.T) {
	mux, r := newRouter()
	stack := CommonStack(StackOptions{AllowedOrigins: []string{"https://map.example"}})
	MountAPIV1(r, stack, func(api Router) {
		MountUnder(api, "/meta", nil, func(m Router) {
			Get(m, "/ping", func(*http.Request) (any, error) { return "pong", nil })
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/meta/ping/", nil)
	req.Header.Set("Origin", "https://map.example")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("expected 200 through trailing slash strip, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "https://map.example" {
		t.Fatalf("cors headers %v", rr.Header())
	}
	if rr.Header().Get("Cache-Control") == "" {
		t.Fatalf("expected NoCache headers")
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/meta/ping", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("route must only exist under /api/v1, got %d", rr.Code)
	}
}

func TestMountUnder_EmptyPrefixGroups(t *testing.T) {
	mux, r := newRouter()
	MountUnder(r, "", nil, func(g Router) {
		Get(g, "/root", func(*http.Request) (any, error) { return true, nil })
	})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/root", nil))
	if rr.Code != 200 {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
}
