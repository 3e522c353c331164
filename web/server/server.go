package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/df07/go-shadowcaster/pkg/config"
	"github.com/df07/go-shadowcaster/pkg/logging"
	"github.com/df07/go-shadowcaster/pkg/output"
	"github.com/df07/go-shadowcaster/pkg/renderer"
	"github.com/df07/go-shadowcaster/pkg/scene"
)

const (
	maxImageSize = 4096
	maxSpheres   = 5000
	renderLimit  = 2 * time.Minute
)

// Server handles web requests for the shadow caster
type Server struct {
	config   *config.Config
	log      zerolog.Logger
	router   *mux.Router
	renderID atomic.Uint64
}

// NewServer creates a new web server. cfg supplies defaults for every
// request parameter.
func NewServer(cfg *config.Config, log zerolog.Logger) *Server {
	s := &Server{config: cfg, log: log}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/scenes", s.handleScenes).Methods(http.MethodGet)
	api.HandleFunc("/scenes/{id}", s.handleSceneFile).Methods(http.MethodGet)
	api.HandleFunc("/render", s.handleRender).Methods(http.MethodGet)
	api.HandleFunc("/render/stats", s.handleRenderStats).Methods(http.MethodGet)
	r.Use(s.logRequests)
	s.router = r
	return s
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene     string                 `json:"scene"`
	Seed      int64                  `json:"seed"`
	Width     int                    `json:"width"`
	Height    int                    `json:"height"`
	Spheres   int                    `json:"spheres"`
	Composite renderer.CompositeMode `json:"composite"`
	Thumbnail int                    `json:"thumbnail"` // Thumbnail width, 0 for full size
}

// Stats represents render statistics
type Stats struct {
	TotalPixels      int     `json:"totalPixels"`
	HitPixels        int     `json:"hitPixels"`
	ShadowedPixels   int     `json:"shadowedPixels"`
	SphereTests      int     `json:"sphereTests"`
	MeanBrightness   float64 `json:"meanBrightness"`
	StdDevBrightness float64 `json:"stdDevBrightness"`
	Luminance        float64 `json:"luminance"`
	ElapsedMs        int64   `json:"elapsedMs"`
}

// StatsResponse is the body of /api/render/stats
type StatsResponse struct {
	Request RenderRequest    `json:"request"`
	Stats   Stats            `json:"stats"`
	Console []ConsoleMessage `json:"console"`
}

// Handler returns the HTTP handler serving every endpoint
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server on port
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.log.Info().Msgf("Starting web server on http://localhost%s", addr)
	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server.ListenAndServe()
}

// logRequests logs each request after it completes
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Dur("elapsed", time.Since(start)).Msg("Request")
	})
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists builtin scenes and scene files
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListAll(s.config.ScenesDir, logging.NewZerologLogger(s.log))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, scenes)
}

// handleSceneFile returns a scene as YAML, generated scenes included
func (s *Server) handleSceneFile(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.Scene = mux.Vars(r)["id"]

	sc, err := s.resolveScene(req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	var buf bytes.Buffer
	if err := scene.WriteScene(&buf, sc, ""); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleRender renders a scene and responds with the PNG
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	img, stats, err := s.render(r.Context(), req, nil)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	data, err := output.PNGBytes(output.Thumbnail(img, req.Thumbnail))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Render-Hit-Pixels", strconv.Itoa(stats.HitPixels))
	w.Header().Set("X-Render-Shadowed-Pixels", strconv.Itoa(stats.ShadowedPixels))
	w.Header().Set("X-Render-Elapsed-Ms", strconv.FormatInt(stats.ElapsedMs, 10))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleRenderStats renders a scene and responds with statistics and the
// renderer's log output instead of the image
func (s *Server) handleRenderStats(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	consoleChan := make(chan ConsoleMessage, 64)
	_, stats, err := s.render(r.Context(), req, consoleChan)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		Request: *req,
		Stats:   stats,
		Console: drainConsole(consoleChan),
	})
}

// render resolves and renders req, sending renderer log lines to consoleChan
func (s *Server) render(ctx context.Context, req *RenderRequest, consoleChan chan ConsoleMessage) (*image.RGBA, Stats, error) {
	sc, err := s.resolveScene(req)
	if err != nil {
		return nil, Stats{}, err
	}

	renderID := fmt.Sprintf("render-%d", s.renderID.Add(1))
	logger := NewWebLogger(renderID, s.log, consoleChan)
	if off := sc.OffCanvas(); len(off) > 0 {
		logger.Printf("Warning: %d of %d spheres lie outside the image\n", len(off), len(sc.Spheres))
	}

	renderConfig := s.config.RenderConfig()
	renderConfig.Composite = req.Composite
	raytracer := renderer.NewRaytracer(sc, renderConfig, logger)

	ctx, cancel := context.WithTimeout(ctx, renderLimit)
	defer cancel()

	start := time.Now()
	img, rs, err := raytracer.RenderImage(ctx)
	if err != nil {
		return nil, Stats{}, err
	}
	elapsed := time.Since(start)
	logger.Printf("Render completed in %v\n", elapsed)

	return img, Stats{
		TotalPixels:      rs.TotalPixels,
		HitPixels:        rs.HitPixels,
		ShadowedPixels:   rs.ShadowedPixels,
		SphereTests:      rs.SphereTests,
		MeanBrightness:   rs.MeanBrightness,
		StdDevBrightness: rs.StdDevBrightness,
		Luminance:        renderer.CalculateAverageLuminance(img),
		ElapsedMs:        elapsed.Milliseconds(),
	}, nil
}

// resolveScene builds the scene named in req using request overrides of
// the server defaults. Only builtin names and files inside the scenes
// directory resolve; file paths from clients are never opened.
func (s *Server) resolveScene(req *RenderRequest) (*scene.Scene, error) {
	opts := s.config.ResolveOptions()
	opts.AllowPaths = false
	opts.Seed = req.Seed
	opts.Random.Width = req.Width
	opts.Random.Height = req.Height
	opts.Random.NumSpheres = req.Spheres
	return scene.Resolve(req.Scene, opts)
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: s.config.Scene}
	if name := query.Get("scene"); name != "" {
		req.Scene = name
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", s.config.Width, 1, maxImageSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", s.config.Height, 1, maxImageSize); err != nil {
		return nil, err
	}
	if req.Spheres, err = parseIntParam(query, "spheres", s.config.Spheres, 0, maxSpheres); err != nil {
		return nil, err
	}
	if req.Thumbnail, err = parseIntParam(query, "thumbnail", 0, 0, maxImageSize); err != nil {
		return nil, err
	}
	if req.Seed, err = parseInt64Param(query, "seed", s.config.Seed); err != nil {
		return nil, err
	}

	composite := s.config.Composite
	if value := query.Get("composite"); value != "" {
		composite = value
	}
	if req.Composite, err = renderer.ParseCompositeMode(composite); err != nil {
		return nil, err
	}
	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseInt64Param parses an unbounded 64-bit integer parameter
func parseInt64Param(values url.Values, key string, defaultValue int64) (int64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// statusFor maps render and resolve errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, scene.ErrUnknownScene):
		return http.StatusNotFound
	case errors.Is(err, scene.ErrInvalidScene):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
