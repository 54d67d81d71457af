package web

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hpungsan/focusbrief/internal/config"
	"github.com/hpungsan/focusbrief/internal/logging"
	"github.com/hpungsan/focusbrief/internal/ops"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Deps are the collaborators the HTTP API serves.
type Deps struct {
	DB       *sql.DB
	Pipeline *ops.Pipeline
	Config   *config.Config
	Log      *logging.Logger
	Version  string

	// Authorizer defaults to a TokenAuthorizer over Config.AuthToken.
	Authorizer Authorizer
}

// Handler is the routed API plus the rate limiters it owns.
type Handler struct {
	http.Handler
	limiters []*RateLimiter
}

// Close stops the rate limiters' cleanup goroutines.
func (h *Handler) Close() {
	for _, l := range h.limiters {
		l.Close()
	}
}

// NewHandler builds the routed, wrapped handler.
func NewHandler(d Deps) (*Handler, error) {
	if d.Log == nil {
		d.Log = logging.Nop()
	}
	if d.Config == nil {
		d.Config = config.DefaultConfig()
	}
	if d.Authorizer == nil {
		d.Authorizer = TokenAuthorizer{Token: d.Config.AuthToken}
	}

	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("template sub-FS: %w", err)
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static sub-FS: %w", err)
	}

	h := &Handlers{
		db:       d.DB,
		pipeline: d.Pipeline,
		cfg:      d.Config,
		log:      d.Log,
		version:  d.Version,
		renderer: NewRenderer(templateSub, d.Version, d.Log),
	}

	generate := NewRateLimiter(d.Config.GeneratePerMinute)
	upload := NewRateLimiter(d.Config.UploadPerMinute)
	general := NewRateLimiter(d.Config.GeneralPerMinute)
	for _, rl := range []*RateLimiter{generate, upload, general} {
		rl.TrustProxy = d.Config.TrustProxy
	}

	protect := func(limiter *RateLimiter, fn http.HandlerFunc) http.Handler {
		return limiter.Middleware(requireAuth(d.Authorizer, fn))
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.Handle("GET /api/health", general.Middleware(http.HandlerFunc(h.HandleHealth)))
	mux.Handle("POST /api/process", protect(generate, h.HandleProcess))
	mux.Handle("POST /api/process-url", protect(generate, h.HandleProcessURL))
	mux.Handle("POST /api/process-file", protect(upload, h.HandleProcessFile))
	mux.Handle("POST /api/capsules", protect(generate, h.HandleCreate))
	mux.Handle("GET /api/capsules", protect(general, h.HandleList))
	mux.Handle("GET /api/capsules/{id}", protect(general, h.HandleFetch))
	mux.Handle("DELETE /api/capsules/{id}", protect(general, h.HandleDelete))
	mux.Handle("GET /capsules/{id}", protect(general, h.HandleView))

	// Static file server
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	handler := logRequests(d.Log, cors(securityHeaders(mux)))

	return &Handler{Handler: handler, limiters: []*RateLimiter{generate, upload, general}}, nil
}

// NewServer creates and configures the HTTP server.
func NewServer(d Deps, bind string, port int) (*http.Server, *Handler, error) {
	h, err := NewHandler(d)
	if err != nil {
		return nil, nil, err
	}
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}, h, nil
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// cors lets the dashboard call the API from any origin.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Retry-After")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(log *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.APICall(r.URL.Path, r.Method, rec.status, time.Since(start))
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, log *logging.Logger) error {
	if log == nil {
		log = logging.Nop()
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("focusbrief API listening", "addr", "http://"+srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Info("shutting down")
		// Generation calls can run for a minute; give them time to finish.
		ctx, cancel := context.WithTimeout(context.Background(), 65*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
