package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/cellroute/pkg/cache"
	"github.com/matzehuels/cellroute/pkg/config"
	"github.com/matzehuels/cellroute/pkg/design"
	"github.com/matzehuels/cellroute/pkg/observability"
	"github.com/matzehuels/cellroute/pkg/pipeline"
)

func marshalDesign(t *testing.T, f design.File) []byte {
	t.Helper()
	d, err := design.Resolve(f)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	data, err := design.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return data
}

var bufMaster = []design.MasterJSON{{Name: "BUF", Pins: []design.MasterPinJSON{
	{Name: "A", Layer: "M1"}, {Name: "Y", Layer: "M1"},
}}}

// detourDesign has net a routed with a detour (cost 26, optimal 10) and a
// straight net b (cost 6).
func detourDesign(t *testing.T) []byte {
	return marshalDesign(t, design.File{
		Grid: design.GridJSON{RowEnd: 9, ColEnd: 9},
		Layers: []design.LayerJSON{
			{Name: "M1", Direction: design.Horizontal, Factor: 1, Supply: 10},
			{Name: "M2", Direction: design.Vertical, Factor: 1, Supply: 10},
		},
		Masters: bufMaster,
		Instances: []design.InstanceJSON{
			{Name: "u1", Master: "BUF", Row: 2, Col: 1},
			{Name: "u2", Master: "BUF", Row: 2, Col: 6},
			{Name: "u3", Master: "BUF", Row: 6, Col: 2},
			{Name: "u4", Master: "BUF", Row: 6, Col: 5},
		},
		Nets: []design.NetJSON{
			{Name: "a", Pins: []design.PinJSON{{Inst: "u1", Pin: "Y"}, {Inst: "u2", Pin: "A"}}},
			{Name: "b", Pins: []design.PinJSON{{Inst: "u3", Pin: "Y"}, {Inst: "u4", Pin: "A"}}},
		},
		Routes: []design.RouteJSON{
			{Net: "a", From: [3]int{2, 1, 0}, To: [3]int{2, 1, 1}},
			{Net: "a", From: [3]int{2, 1, 1}, To: [3]int{4, 1, 1}},
			{Net: "a", From: [3]int{4, 1, 1}, To: [3]int{4, 1, 0}},
			{Net: "a", From: [3]int{4, 1, 0}, To: [3]int{4, 6, 0}},
			{Net: "a", From: [3]int{4, 6, 0}, To: [3]int{4, 6, 1}},
			{Net: "a", From: [3]int{4, 6, 1}, To: [3]int{2, 6, 1}},
			{Net: "a", From: [3]int{2, 6, 1}, To: [3]int{2, 6, 0}},
			{Net: "b", From: [3]int{6, 2, 0}, To: [3]int{6, 5, 0}},
		},
	})
}

// blockedDesign has a single-row grid whose middle column has no supply, so
// net a cannot be routed.
func blockedDesign(t *testing.T) []byte {
	return marshalDesign(t, design.File{
		Grid: design.GridJSON{RowEnd: 0, ColEnd: 4},
		Layers: []design.LayerJSON{
			{Name: "M1", Direction: design.Horizontal, Factor: 1, Supply: 1},
			{Name: "M2", Direction: design.Vertical, Factor: 1, Supply: 1},
		},
		Adjustments: []design.AdjustmentJSON{
			{Row: 0, Col: 2, Layer: 0, Delta: -1},
			{Row: 0, Col: 2, Layer: 1, Delta: -1},
		},
		Masters: bufMaster,
		Instances: []design.InstanceJSON{
			{Name: "u1", Master: "BUF", Row: 0, Col: 0},
			{Name: "u2", Master: "BUF", Row: 0, Col: 4},
		},
		Nets: []design.NetJSON{
			{Name: "a", Pins: []design.PinJSON{{Inst: "u1", Pin: "Y"}, {Inst: "u2", Pin: "A"}}},
		},
	})
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(fc, cache.NewScopedKeyer(nil, "svc:"), nil)
	return New(runner, config.Default(), nil)
}

func do(t *testing.T, s http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["status"] != "ok" || body["version"] == "" {
		t.Errorf("body = %v", body)
	}
}

func TestRoute(t *testing.T) {
	s := newTestServer(t)
	data := detourDesign(t)

	rec := do(t, s, http.MethodPost, "/v1/route?formats=dot", data)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	resp := decode[RouteResponse](t, rec)
	if resp.Sweep == nil || resp.Sweep.CostBefore != 32 || resp.Sweep.CostAfter != 16 {
		t.Errorf("sweep = %+v, want 32 -> 16", resp.Sweep)
	}
	if resp.Cached {
		t.Error("first request should not be cached")
	}
	if !bytes.Contains(resp.Artifacts["dot"], []byte("graph routes")) {
		t.Errorf("dot artifact = %q", resp.Artifacts["dot"])
	}
	d, err := design.Unmarshal(resp.Design)
	if err != nil {
		t.Fatalf("routed design: %v", err)
	}
	if got := len(d.RoutesOf("a")); got != 1 {
		t.Errorf("routes of a = %d, want 1", got)
	}

	again := decode[RouteResponse](t, do(t, s, http.MethodPost, "/v1/route?formats=dot", data))
	if !again.Cached {
		t.Error("second request should be served from cache")
	}
	if again.Sweep.RunID != resp.Sweep.RunID {
		t.Errorf("cached run id = %q, want %q", again.Sweep.RunID, resp.Sweep.RunID)
	}

	fresh := decode[RouteResponse](t, do(t, s, http.MethodPost, "/v1/route?refresh=true", data))
	if fresh.Cached || fresh.Sweep.RunID == resp.Sweep.RunID {
		t.Error("refresh should reroute")
	}
}

func TestRouteNet(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/nets/a/route?solver=kmb", detourDesign(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decode[RouteResponse](t, rec)
	if resp.Net == nil || resp.Sweep != nil {
		t.Fatalf("net = %+v, sweep = %+v", resp.Net, resp.Sweep)
	}
	if resp.Net.Net != "a" || resp.Net.CostBefore != 26 || resp.Net.CostAfter != 10 {
		t.Errorf("net = %+v, want a 26 -> 10", *resp.Net)
	}
}

func TestRouteErrors(t *testing.T) {
	s := newTestServer(t)
	data := detourDesign(t)

	tests := []struct {
		name   string
		target string
		body   []byte
		status int
		code   string
	}{
		{"empty body", "/v1/route", nil, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad json", "/v1/route", []byte("{"), http.StatusBadRequest, "INVALID_DESIGN"},
		{"bad solver", "/v1/route?solver=exact", data, http.StatusBadRequest, "INVALID_CONFIG"},
		{"bad format", "/v1/route?formats=gif", data, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown net", "/v1/nets/zz/route", data, http.StatusNotFound, "NET_NOT_FOUND"},
		{"unroutable", "/v1/nets/a/route", blockedDesign(t), http.StatusUnprocessableEntity, "UNROUTABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			if got := decode[ErrorResponse](t, rec); got.Code != tt.code {
				t.Errorf("code = %q, want %q", got.Code, tt.code)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/v1/route", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestNets(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/nets", detourDesign(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	nets := decode[[]pipeline.NetSummary](t, rec)
	if len(nets) != 2 || nets[0].Name != "a" || nets[0].Cost != 26 {
		t.Errorf("nets = %+v", nets)
	}

	grid := decode[[]pipeline.NetSummary](t, do(t, s, http.MethodPost, "/v1/nets?region=grid", detourDesign(t)))
	if r := grid[1].Region; r.BeginRow != 0 || r.EndRow != 9 || r.BeginCol != 0 || r.EndCol != 9 {
		t.Errorf("grid region = %+v, want whole grid", r)
	}

	if rec := do(t, s, http.MethodPost, "/v1/nets?region=ring", detourDesign(t)); rec.Code != http.StatusBadRequest {
		t.Errorf("bad region status = %d, want 400", rec.Code)
	}
}

type recordingHTTPHooks struct {
	mu     sync.Mutex
	status []int
}

func (h *recordingHTTPHooks) OnRequest(context.Context, string, string) {}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = append(h.status, status)
}

func TestHTTPHooks(t *testing.T) {
	rec := &recordingHTTPHooks{}
	observability.SetHTTPHooks(rec)
	defer observability.Reset()

	s := newTestServer(t)
	do(t, s, http.MethodGet, "/healthz", nil)
	do(t, s, http.MethodPost, "/v1/route", nil)

	if len(rec.status) != 2 || rec.status[0] != http.StatusOK || rec.status[1] != http.StatusBadRequest {
		t.Errorf("hook statuses = %v, want [200 400]", rec.status)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- newTestServer(t).ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("ListenAndServe = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
