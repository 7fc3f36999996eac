package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/matzehuels/fishbone/pkg/cache"
	"github.com/matzehuels/fishbone/pkg/diagram"
	"github.com/matzehuels/fishbone/pkg/observability"
	"github.com/matzehuels/fishbone/pkg/pipeline"
)

const sampleJSON = `{"title":"Late delivery","children":[
	{"name":"People","children":[{"name":"Training"}]},
	{"name":"Process","children":[{"name":"Approvals"}]},
	{"name":"Tools"}
]}`

const sampleYAML = `title: Late delivery
children:
  - name: People
  - name: Process
`

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	if cfg.Runner == nil {
		c, err := cache.NewFileCache(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		cfg.Runner = pipeline.NewRunner(c, nil, nil)
	}
	ts := httptest.NewServer(New(cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, contentType, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func decodeError(t *testing.T, data []byte) errorBody {
	t.Helper()
	var e errorBody
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("error body %q: %v", data, err)
	}
	return e
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Config{})
	resp, data := do(t, ts, http.MethodGet, "/healthz", "", "")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var h healthBody
	if err := json.Unmarshal(data, &h); err != nil || h.Status != "ok" {
		t.Errorf("body = %s", data)
	}
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("request id %q is not a uuid", resp.Header.Get(RequestIDHeader))
	}
}

func TestRequestIDPropagated(t *testing.T) {
	ts := newTestServer(t, Config{})
	id := uuid.NewString()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}

	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp, err = ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got == "not-a-uuid" {
		t.Error("malformed request id should be replaced")
	}
}

func TestPalette(t *testing.T) {
	ts := newTestServer(t, Config{})
	_, data := do(t, ts, http.MethodGet, "/api/v1/palette", "", "")

	var entries []paletteEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 8 {
		t.Fatalf("palette size = %d, want 8", len(entries))
	}
	if !entries[6].Default || entries[6].Name != "black" {
		t.Errorf("default entry = %+v", entries[6])
	}
}

func TestLayout(t *testing.T) {
	ts := newTestServer(t, Config{})
	body := `{"diagram":` + sampleJSON + `,"options":{"width":1000,"color":"blue"}}`

	resp, data := do(t, ts, http.MethodPost, "/api/v1/layout", "application/json", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	if resp.Header.Get(CacheHeader) != "miss" {
		t.Errorf("first request %s = %q", CacheHeader, resp.Header.Get(CacheHeader))
	}
	l, err := diagram.UnmarshalLayout(data)
	if err != nil {
		t.Fatal(err)
	}
	if l.Color != "blue" || l.VizType != diagram.VizTypeFishbone {
		t.Errorf("layout = %s/%s", l.VizType, l.Color)
	}

	resp, _ = do(t, ts, http.MethodPost, "/api/v1/layout", "application/json", body)
	if resp.Header.Get(CacheHeader) != "hit" {
		t.Errorf("second request %s = %q", CacheHeader, resp.Header.Get(CacheHeader))
	}
}

func TestRender(t *testing.T) {
	ts := newTestServer(t, Config{})
	body := `{"diagram":` + sampleJSON + `}`

	tests := []struct {
		query, contentType, prefix string
	}{
		{"", "image/svg+xml", "<?xml"},
		{"?format=svg", "image/svg+xml", "<?xml"},
		{"?format=png", "image/png", "\x89PNG"},
		{"?format=json", "application/json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, data := do(t, ts, http.MethodPost, "/api/v1/render"+tt.query, "application/json", body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d: %s", resp.StatusCode, data)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if !bytes.HasPrefix(data, []byte(tt.prefix)) {
				t.Errorf("body starts with %q", data[:min(len(data), 16)])
			}
		})
	}
}

func TestRenderDownload(t *testing.T) {
	ts := newTestServer(t, Config{})
	body := `{"diagram":` + sampleJSON + `}`

	resp, data := do(t, ts, http.MethodPost, "/api/v1/render?format=svg&download=outage", "application/json", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	if got := resp.Header.Get("Content-Disposition"); got != `attachment; filename="outage.svg"` {
		t.Errorf("Content-Disposition = %q", got)
	}

	resp, data = do(t, ts, http.MethodPost, "/api/v1/render?download=../etc/passwd", "application/json", body)
	if resp.StatusCode != http.StatusBadRequest || !bytes.Contains(data, []byte("INVALID_PATH")) {
		t.Errorf("path download: status %d, body %s", resp.StatusCode, data)
	}
}

func TestRequestErrors(t *testing.T) {
	ts := newTestServer(t, Config{MaxBodyBytes: 512})

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"bad format", "/api/v1/render?format=gif", `{"diagram":` + sampleJSON + `}`, 400, "INVALID_FORMAT"},
		{"no data", "/api/v1/layout", `{}`, 400, "INVALID_INPUT"},
		{"empty diagram", "/api/v1/layout", `{"diagram":{}}`, 400, "INVALID_INPUT"},
		{"both sources", "/api/v1/layout", `{"diagram":` + sampleJSON + `,"hash":"abc"}`, 400, "INVALID_INPUT"},
		{"unknown hash", "/api/v1/layout", `{"hash":"abc"}`, 404, "NOT_FOUND"},
		{"bad json", "/api/v1/layout", `{"diagram":`, 400, "INVALID_INPUT"},
		{"bad color", "/api/v1/layout", `{"diagram":` + sampleJSON + `,"options":{"color":"mauve"}}`, 400, "INVALID_COLOR"},
		{"bad viz type", "/api/v1/layout", `{"diagram":` + sampleJSON + `,"options":{"viz_type":"sankey"}}`, 400, "INVALID_VIZ_TYPE"},
		{"too large", "/api/v1/layout", `{"diagram":{"title":"` + strings.Repeat("x", 600) + `"}}`, 400, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := do(t, ts, http.MethodPost, tt.path, "application/json", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.status, data)
			}
			if e := decodeError(t, data); e.Code != tt.code || e.Message == "" {
				t.Errorf("error = %+v, want code %s", e, tt.code)
			}
		})
	}
}

func TestStoredDiagrams(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, data := do(t, ts, http.MethodPost, "/api/v1/diagrams", "application/yaml", sampleYAML)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("store status = %d: %s", resp.StatusCode, data)
	}
	var stored storedBody
	if err := json.Unmarshal(data, &stored); err != nil || stored.Hash == "" {
		t.Fatalf("store body = %s", data)
	}
	if loc := resp.Header.Get("Location"); loc != "/api/v1/diagrams/"+stored.Hash {
		t.Errorf("Location = %q", loc)
	}

	resp, data = do(t, ts, http.MethodGet, "/api/v1/diagrams/"+stored.Hash, "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	var d diagram.Diagram
	if err := json.Unmarshal(data, &d); err != nil || len(d.Causes) != 2 {
		t.Errorf("stored diagram = %s", data)
	}

	resp, data = do(t, ts, http.MethodPost, "/api/v1/layout", "application/json", `{"hash":"`+stored.Hash+`"}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("layout by hash status = %d: %s", resp.StatusCode, data)
	}

	resp, _ = do(t, ts, http.MethodGet, "/api/v1/diagrams/unknown", "", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown hash status = %d", resp.StatusCode)
	}

	resp, _ = do(t, ts, http.MethodPost, "/api/v1/diagrams", "text/csv", "a,b")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("csv status = %d", resp.StatusCode)
	}
}

func TestNotFoundAndMethod(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, data := do(t, ts, http.MethodGet, "/nope", "", "")
	if resp.StatusCode != http.StatusNotFound || decodeError(t, data).Code != "NOT_FOUND" {
		t.Errorf("unknown route = %d %s", resp.StatusCode, data)
	}

	resp, _ = do(t, ts, http.MethodGet, "/api/v1/layout", "", "")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET layout = %d", resp.StatusCode)
	}
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	mu        sync.Mutex
	requests  []string
	responses []int
	errors    int
}

func (h *recordingHooks) OnRequest(_ context.Context, _, method, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, method+" "+path)
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses = append(h.responses, status)
}

func (h *recordingHooks) OnError(context.Context, string, string, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors++
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	ts := newTestServer(t, Config{})
	do(t, ts, http.MethodGet, "/healthz", "", "")
	do(t, ts, http.MethodPost, "/api/v1/layout", "application/json", "{}")

	// OnResponse runs after the body is flushed to the client.
	deadline := time.Now().Add(2 * time.Second)
	for {
		hooks.mu.Lock()
		n := len(hooks.responses)
		hooks.mu.Unlock()
		if n == 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.requests) != 2 || hooks.requests[0] != "GET /healthz" {
		t.Errorf("requests = %v", hooks.requests)
	}
	if len(hooks.responses) != 2 || hooks.responses[0] != 200 || hooks.responses[1] != 400 {
		t.Errorf("responses = %v", hooks.responses)
	}
	if hooks.errors != 1 {
		t.Errorf("errors = %d, want 1", hooks.errors)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("ListenAndServe() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
