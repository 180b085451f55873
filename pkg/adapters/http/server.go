package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/subboxer"
	"github.com/aretw0/subboxer/internal/runtime"
	"github.com/aretw0/subboxer/pkg/bridge"
	"github.com/aretw0/subboxer/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodySize bounds request bodies; every request is a handful of numbers.
const maxBodySize = 1 << 16

// Session is the part of subboxer.Session the API drives.
type Session interface {
	HandlePointer(ctx context.Context, ev domain.PointerEvent) error
	HandleKey(ctx context.Context, key string) error
	SetMode(ctx context.Context, m domain.Mode) error
	SetCamera(c domain.Camera)
	Select(ctx context.Context, id int) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Abort(ctx context.Context)
	Subparticles() []domain.SubparticlePose
	Layers() domain.Layers
	Status() runtime.Status
	KeyBindings() []runtime.KeyBinding
	Export(path string) ([]bridge.Record, error)
	Subscribe(buffer int) (<-chan subboxer.Event, func())
}

// Server serves the annotation API for an external viewer.
type Server struct {
	Session Session
	Logger  *slog.Logger
	// ExportDir receives POST /export files; empty means the working directory. Only bare
	// file names are accepted either way.
	ExportDir string
	metrics   http.Handler
	mcp       http.Handler
	validate  bool
}

// Option defines a functional option for configuring the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMCP mounts a Model Context Protocol transport at /mcp.
func WithMCP(h http.Handler) Option {
	return func(s *Server) {
		s.mcp = h
	}
}

// WithRequestValidation checks request bodies against the embedded API description
// before they reach the session.
func WithRequestValidation() Option {
	return func(s *Server) {
		s.validate = true
	}
}

// WithExportDir sets the directory POST /export writes into.
func WithExportDir(dir string) Option {
	return func(s *Server) {
		s.ExportDir = dir
	}
}

// NewHandler creates a new HTTP handler for the session.
func NewHandler(session Session, opts ...Option) http.Handler {
	s := &Server{
		Session: session,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)
	if s.validate {
		if router, err := newSpecRouter(); err != nil {
			s.Logger.Error("request validation disabled", "err", err)
		} else {
			r.Use(s.validateRequests(router))
		}
	}

	r.Get("/health", s.GetHealth)
	r.Get("/openapi.yaml", s.GetSpec)
	r.Get("/info", s.GetInfo)
	r.Get("/status", s.GetStatus)
	r.Get("/subparticles", s.GetSubparticles)
	r.Get("/layers", s.GetLayers)
	r.Get("/keys", s.GetKeys)
	r.Get("/events", s.SubscribeEvents)

	r.Post("/pointer", s.Pointer)
	r.Post("/keys", s.Key)
	r.Post("/mode", s.Mode)
	r.Post("/camera", s.Camera)
	r.Post("/select", s.Select)
	r.Post("/next", s.Next)
	r.Post("/prev", s.Previous)
	r.Post("/abort", s.Abort)
	r.Post("/export", s.Export)

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	if s.mcp != nil {
		r.Handle("/mcp", s.mcp)
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "subboxer-http",
		"version": strings.TrimSpace(subboxer.Version),
	})
}

// GetStatus handles the GET /status request.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Session.Status())
}

// GetSubparticles handles the GET /subparticles request.
func (s *Server) GetSubparticles(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Session.Subparticles())
}

// GetLayers handles the GET /layers request.
func (s *Server) GetLayers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Session.Layers())
}

type keyBinding struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

// GetKeys handles the GET /keys request.
func (s *Server) GetKeys(w http.ResponseWriter, r *http.Request) {
	bindings := s.Session.KeyBindings()
	out := make([]keyBinding, len(bindings))
	for i, b := range bindings {
		out[i] = keyBinding{Key: b.Key, Description: b.Description}
	}
	s.writeJSON(w, http.StatusOK, out)
}

// Pointer handles the POST /pointer request.
func (s *Server) Pointer(w http.ResponseWriter, r *http.Request) {
	var ev domain.PointerEvent
	if !s.decode(w, r, &ev) {
		return
	}
	s.respond(w, r, "pointer", s.Session.HandlePointer(r.Context(), ev))
}

// Key handles the POST /keys request.
func (s *Server) Key(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key string `json:"key"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	s.respond(w, r, "key", s.Session.HandleKey(r.Context(), body.Key))
}

// Mode handles the POST /mode request.
func (s *Server) Mode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode string `json:"mode"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	m, err := domain.ParseMode(body.Mode)
	if err == nil {
		err = s.Session.SetMode(r.Context(), m)
	}
	s.respond(w, r, "mode", err)
}

// Camera handles the POST /camera request.
func (s *Server) Camera(w http.ResponseWriter, r *http.Request) {
	c := s.Session.Status().Camera
	if !s.decode(w, r, &c) {
		return
	}
	s.Session.SetCamera(c)
	s.respond(w, r, "camera", nil)
}

// Select handles the POST /select request.
func (s *Server) Select(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID *int `json:"id"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if body.ID == nil {
		s.writeError(w, http.StatusBadRequest, errors.New("id is required"))
		return
	}
	s.respond(w, r, "select", s.Session.Select(r.Context(), *body.ID))
}

// Next handles the POST /next request.
func (s *Server) Next(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, "next", s.Session.Next(r.Context()))
}

// Previous handles the POST /prev request.
func (s *Server) Previous(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, "prev", s.Session.Previous(r.Context()))
}

// Abort handles the POST /abort request, e.g. when the viewer loses focus mid-drag.
func (s *Server) Abort(w http.ResponseWriter, r *http.Request) {
	s.Session.Abort(r.Context())
	s.respond(w, r, "abort", nil)
}

// Export handles the POST /export request.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Path string `json:"path"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	path, err := bridge.ExportPath(s.ExportDir, body.Path)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	records, err := s.Session.Export(path)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		s.Logger.Warn("export failed", "path", path, "err", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"path": path, "records": records})
}

// respond writes the session status after a successful mutation, or the mapped error.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, op string, err error) {
	if err != nil {
		s.Logger.Debug("request failed", "op", op, "err", err)
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Session.Status())
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		s.Logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

// statusFor maps session errors onto HTTP status codes.
func statusFor(err error) int {
	var axisErr *runtime.UnknownAxisError
	switch {
	case errors.Is(err, domain.ErrUnknownSubparticle):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoVolume),
		errors.Is(err, domain.ErrNoActiveSubparticle),
		errors.Is(err, domain.ErrZAxisUndefined):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnknownMode),
		errors.Is(err, runtime.ErrUnknownKey),
		errors.As(err, &axisErr):
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}
