package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/subboxer"
	"github.com/aretw0/subboxer/internal/runtime"
	"github.com/aretw0/subboxer/pkg/domain"
	"github.com/aretw0/subboxer/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSession(t *testing.T, opts ...subboxer.Option) *subboxer.Session {
	t.Helper()
	s := subboxer.New(opts...)
	require.NoError(t, s.OpenVolume(context.Background(), domain.Volume{Shape: [3]int{100, 100, 100}}))
	return s
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeStatus(t *testing.T, w *httptest.ResponseRecorder) runtime.Status {
	t.Helper()
	var st runtime.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st), w.Body.String())
	return st
}

const altPress = `{"phase": "press", "position": {"x": 50, "y": 50, "z": 0}, "view_direction": {"x": 0, "y": 0, "z": 1}, "modifiers": ["alt"]}`

func TestServer_AnnotateAndExport(t *testing.T) {
	dir := t.TempDir()
	h := NewHandler(openSession(t), WithExportDir(dir))

	w := do(t, h, http.MethodPost, "/pointer", altPress)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	st := decodeStatus(t, w)
	assert.Equal(t, 1, st.Subparticles)
	assert.Equal(t, 0, st.Active)

	w = do(t, h, http.MethodPost, "/keys", `{"key": "x"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, "/mode", `{"mode": "z"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.ModeDefineZAxis, decodeStatus(t, w).Mode)

	w = do(t, h, http.MethodPost, "/pointer",
		`{"phase": "press", "position": {"x": 0, "y": 50, "z": 60}, "view_direction": {"x": 1, "y": 0, "z": 0}, "modifiers": ["alt"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, http.MethodGet, "/layers", "")
	var layers domain.Layers
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &layers))
	assert.Len(t, layers.Points, 1)
	assert.Len(t, layers.Vectors, 3)
	assert.NotNil(t, layers.ZPick)

	w = do(t, h, http.MethodPost, "/export", `{"path": "transforms.star"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, err := os.Stat(filepath.Join(dir, "transforms.star"))
	assert.NoError(t, err)

	w = do(t, h, http.MethodPost, "/export", `{"path": "../escape.star"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_ExportRejectsPathsOutsideExportDir(t *testing.T) {
	h := NewHandler(openSession(t))
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/pointer", altPress).Code)

	victim := filepath.Join(t.TempDir(), "victim.txt")
	body, err := json.Marshal(map[string]string{"path": victim})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/export", bytes.NewReader(body))
	req.Header.Set("Origin", "https://elsewhere.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	_, err = os.Stat(victim)
	assert.True(t, os.IsNotExist(err))
}

func TestServer_ErrorMapping(t *testing.T) {
	h := NewHandler(openSession(t))
	tests := []struct {
		name string
		path string
		body string
		code int
	}{
		{"mode without active", "/mode", `{"mode": "rotate"}`, http.StatusConflict},
		{"unknown mode", "/mode", `{"mode": "spin"}`, http.StatusBadRequest},
		{"unknown key", "/keys", `{"key": "q"}`, http.StatusBadRequest},
		{"unknown subparticle", "/select", `{"id": 3}`, http.StatusNotFound},
		{"missing id", "/select", `{}`, http.StatusBadRequest},
		{"unknown field", "/keys", `{"key": "x", "shift": true}`, http.StatusBadRequest},
		{"malformed body", "/pointer", `{"phase":`, http.StatusBadRequest},
		{"unknown phase", "/pointer", `{"phase": "scroll"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestServer_NoVolume(t *testing.T) {
	h := NewHandler(subboxer.New())
	w := do(t, h, http.MethodPost, "/keys", `{"key": "]"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPost, "/export", `{"path": "t.star"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestServer_ReadEndpoints(t *testing.T) {
	h := NewHandler(openSession(t))

	w := do(t, h, http.MethodGet, "/health", "")
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", "")
	assert.Contains(t, w.Body.String(), subboxer.Version)

	w = do(t, h, http.MethodGet, "/keys", "")
	var keys []keyBinding
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &keys))
	require.NotEmpty(t, keys)
	assert.Equal(t, ",", keys[0].Key)

	w = do(t, h, http.MethodGet, "/subparticles", "")
	assert.Equal(t, "[]\n", w.Body.String())

	w = do(t, h, http.MethodOptions, "/pointer", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_CameraAndNavigation(t *testing.T) {
	s := openSession(t)
	h := NewHandler(s)

	w := do(t, h, http.MethodPost, "/camera", `{"view_direction": {"x": 1, "y": 0, "z": 0}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	st := decodeStatus(t, w)
	assert.Equal(t, 1.0, st.Camera.ViewDirection.X)
	assert.Equal(t, 50.0, st.Camera.Center.X, "omitted fields keep their value")

	for _, pos := range []string{`{"x": 10, "y": 10, "z": 0}`, `{"x": 20, "y": 20, "z": 0}`} {
		w = do(t, h, http.MethodPost, "/pointer",
			`{"phase": "press", "position": `+pos+`, "view_direction": {"x": 0, "y": 0, "z": 1}, "modifiers": ["alt"]}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodPost, "/prev", "")
	assert.Equal(t, 0, decodeStatus(t, w).Active)
	w = do(t, h, http.MethodPost, "/next", "")
	assert.Equal(t, 1, decodeStatus(t, w).Active)
	w = do(t, h, http.MethodPost, "/abort", "")
	assert.True(t, decodeStatus(t, w).Interactive)
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	h := NewHandler(openSession(t, subboxer.WithLifecycleHooks(m.Hooks())),
		WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/pointer", altPress).Code)
	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "subboxer_subparticles_added_total 1")
}

func TestServer_SubscribeEvents(t *testing.T) {
	srv := httptest.NewServer(NewHandler(openSession(t)))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?types=subparticle_added", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var name, data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "":
				return name, data
			}
		}
	}

	name, data := readEvent()
	require.Equal(t, "ping", name)
	assert.Equal(t, "connected", data)

	post, err := http.Post(srv.URL+"/pointer", "application/json", bytes.NewBufferString(altPress))
	require.NoError(t, err)
	post.Body.Close()

	name, data = readEvent()
	assert.Equal(t, "subparticle_added", name)
	var ev domain.SubparticleEvent
	require.NoError(t, json.Unmarshal([]byte(data), &ev))
	assert.Equal(t, 0, ev.Subparticle.ID)
}

func TestLoadSpec(t *testing.T) {
	doc, err := LoadSpec(context.Background())
	require.NoError(t, err)
	for _, path := range []string{"/pointer", "/keys", "/mode", "/camera", "/select", "/export"} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}

	w := do(t, NewHandler(subboxer.New()), http.MethodGet, "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")
}

func TestServer_RequestValidation(t *testing.T) {
	h := NewHandler(openSession(t), WithRequestValidation())
	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	w := post("/pointer", altPress)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decodeStatus(t, w).Subparticles)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"key not a string", "/keys", `{"key": 5}`},
		{"empty key", "/keys", `{"key": ""}`},
		{"unknown phase", "/pointer", `{"phase": "scroll", "position": {"x": 1, "y": 2, "z": 3}}`},
		{"missing position", "/pointer", `{"phase": "press"}`},
		{"negative id", "/select", `{"id": -1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	w = do(t, h, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusOK, w.Code, "routes without a body pass")
}
