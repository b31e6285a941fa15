package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"testing"
	"time"

	"zayavki/internal/adapters/source"
	"zayavki/internal/core/pipeline"
	perr "zayavki/internal/platform/errors"
	phttp "zayavki/internal/platform/net/http"
	"zayavki/internal/services/api/dashboard/domain"
	svc "zayavki/internal/services/api/dashboard/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type memLoader struct{ snap *source.Snapshot }

func (m memLoader) Location() string { return "mem" }

func (m memLoader) Load(context.Context) (*source.Snapshot, error) { return m.snap, nil }

type envelope struct {
	StatusCode int             `json:"status_code"`
	Code       perr.ErrorCode  `json:"code"`
	Error      string          `json:"error"`
	Data       json.RawMessage `json:"data"`
}

var samplePoints = []pipeline.Point{
	{CreatedAt: "2025-06-01T10:00:00", Category: "вода", Lat: 55.8, Lon: 48.5, Street: "Ленина", House: "5"},
	{CreatedAt: "2025-06-05T12:30:00", Category: "газ", Lat: 55.9, Lon: 48.6, Total: pipeline.Num(3)},
	{CreatedAt: "2025-06-10T08:00:00", Category: "вода", Lat: 55.7, Lon: 48.4},
}

func newServer(t *testing.T, start bool) *chi.Mux {
	t.Helper()
	return newServerWith(t, start, samplePoints)
}

func newServerWith(t *testing.T, start bool, points []pipeline.Point) *chi.Mux {
	t.Helper()
	s := svc.New(memLoader{snap: &source.Snapshot{
		ID:       uuid.New(),
		Location: "mem",
		LoadedAt: time.Now(),
		Dataset:  pipeline.NewDataset(points),
	}})
	if start {
		s.Start(context.Background())
		if err := s.Wait(context.Background()); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), s)
	return mux
}

func do(t *testing.T, h stdhttp.Handler, method, target, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v (%s)", err, rr.Body.String())
	}
	return rr.Code, env
}

func TestDomain(t *testing.T) {
	code, env := do(t, newServer(t, true), stdhttp.MethodGet, "/domain", "")
	if code != 200 {
		t.Fatalf("status %d: %+v", code, env)
	}
	var v domain.DomainView
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("data: %v", err)
	}
	if v.Count != 3 || len(v.Categories) != 2 || v.Categories[0] != "вода" || v.Min == nil {
		t.Fatalf("unexpected domain %+v", v)
	}
}

func TestNotReady(t *testing.T) {
	code, env := do(t, newServer(t, false), stdhttp.MethodGet, "/points", "")
	if code != stdhttp.StatusServiceUnavailable || env.Code != perr.ErrorCodeUnavailable {
		t.Fatalf("status %d: %+v", code, env)
	}
}

func TestLayers_Post(t *testing.T) {
	mux := newServer(t, true)

	code, env := do(t, mux, stdhttp.MethodPost, "/layers", `{"to":"2025-06-05","categories":["газ"]}`)
	if code != 200 {
		t.Fatalf("status %d: %+v", code, env)
	}
	var v struct {
		Heat    [][3]float64      `json:"heat"`
		Markers []pipeline.Marker `json:"markers"`
		Total   int               `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("data: %v", err)
	}
	if len(v.Heat) != 1 || v.Heat[0] != [3]float64{55.9, 48.6, 3} || v.Total != 3 {
		t.Fatalf("unexpected layers %+v", v)
	}
	if !strings.Contains(v.Markers[0].Label, "3 шт.") {
		t.Fatalf("label = %q", v.Markers[0].Label)
	}
}

func TestLayers_PostErrors(t *testing.T) {
	mux := newServer(t, true)
	cases := []struct {
		name string
		body string
		code int
		want perr.ErrorCode
	}{
		{"bad json", `{"to":`, 400, perr.ErrorCodeJSON},
		{"bad timestamp", `{"from":"June"}`, 400, perr.ErrorCodeValidation},
		{"from after to", `{"from":"2025-06-09","to":"2025-06-02"}`, 422, perr.ErrorCodeInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, env := do(t, mux, stdhttp.MethodPost, "/layers", tc.body)
			if code != tc.code || env.Code != tc.want {
				t.Fatalf("got %d %+v, want %d code %d", code, env, tc.code, tc.want)
			}
		})
	}
}

func TestLayers_Query(t *testing.T) {
	mux := newServer(t, true)
	cases := []struct {
		target  string
		markers int
	}{
		{"/layers", 3},
		{"/layers?category=" + url.QueryEscape("вода"), 2},
		{"/layers?category=" + url.QueryEscape("вода") + "&category=" + url.QueryEscape("газ") + "&from=2025-06-02", 2},
		{"/layers?category=" + url.QueryEscape("вода,газ"), 0},
		{"/layers?category=", 0},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			code, env := do(t, mux, stdhttp.MethodGet, tc.target, "")
			if code != 200 {
				t.Fatalf("status %d: %+v", code, env)
			}
			var v struct {
				Markers []pipeline.Marker `json:"markers"`
			}
			if err := json.Unmarshal(env.Data, &v); err != nil {
				t.Fatalf("data: %v", err)
			}
			if len(v.Markers) != tc.markers {
				t.Fatalf("markers = %d, want %d", len(v.Markers), tc.markers)
			}
		})
	}
}

func TestPoints(t *testing.T) {
	code, env := do(t, newServer(t, true), stdhttp.MethodGet, "/points", "")
	if code != 200 || !strings.Contains(string(env.Data), `"Улица":"Ленина"`) {
		t.Fatalf("status %d: %s", code, env.Data)
	}
}

func TestLayers_ExactCategoryNames(t *testing.T) {
	mux := newServerWith(t, true, []pipeline.Point{
		{CreatedAt: "2025-06-01", Category: "вода, канализация", Lat: 1, Lon: 1},
		{CreatedAt: "2025-06-02", Category: " вода ", Lat: 2, Lon: 2},
		{CreatedAt: "2025-06-03", Category: "вода", Lat: 3, Lon: 3},
	})
	cases := []struct {
		name   string
		target string
		lats   []float64
	}{
		{"comma inside a name", "/layers?category=" + url.QueryEscape("вода, канализация"), []float64{1}},
		{"surrounding spaces kept", "/layers?category=" + url.QueryEscape(" вода "), []float64{2}},
		{"bare name only", "/layers?category=" + url.QueryEscape("вода"), []float64{3}},
		{"repeated names", "/layers?category=" + url.QueryEscape("вода, канализация") + "&category=" + url.QueryEscape("вода"), []float64{1, 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, env := do(t, mux, stdhttp.MethodGet, tc.target, "")
			if code != 200 {
				t.Fatalf("status %d: %+v", code, env)
			}
			var v struct {
				Markers []pipeline.Marker `json:"markers"`
			}
			if err := json.Unmarshal(env.Data, &v); err != nil {
				t.Fatalf("data: %v", err)
			}
			var got []float64
			for _, m := range v.Markers {
				got = append(got, m.Lat)
			}
			if !slices.Equal(got, tc.lats) {
				t.Fatalf("marker lats = %v, want %v", got, tc.lats)
			}
		})
	}
}

func TestLayers_SubMillisecondBounds(t *testing.T) {
	mux := newServerWith(t, true, []pipeline.Point{
		{CreatedAt: "2025-06-01 10:00:00.000001", Category: "вода", Lat: 1, Lon: 1},
		{CreatedAt: "2025-06-05 10:00:00.123456", Category: "вода", Lat: 2, Lon: 2},
	})
	_, env := do(t, mux, stdhttp.MethodGet, "/domain", "")
	var d domain.DomainView
	if err := json.Unmarshal(env.Data, &d); err != nil {
		t.Fatalf("domain: %v", err)
	}

	cases := []struct {
		name    string
		body    string
		markers int
	}{
		{"bounds omitted", `{}`, 2},
		{"bounds echoed from domain", `{"from":"` + d.Min.Format(time.RFC3339Nano) + `","to":"` + d.Max.Format(time.RFC3339Nano) + `"}`, 2},
		{"upper bound truncated to milliseconds", `{"to":"2025-06-05T10:00:00.123Z"}`, 1},
		{"lower bound truncated to milliseconds", `{"from":"2025-06-01T10:00:00.000Z"}`, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, env := do(t, mux, stdhttp.MethodPost, "/layers", tc.body)
			if code != 200 {
				t.Fatalf("status %d: %+v", code, env)
			}
			var v struct {
				Markers []pipeline.Marker `json:"markers"`
			}
			if err := json.Unmarshal(env.Data, &v); err != nil {
				t.Fatalf("data: %v", err)
			}
			if len(v.Markers) != tc.markers {
				t.Fatalf("markers = %d, want %d", len(v.Markers), tc.markers)
			}
		})
	}
}
