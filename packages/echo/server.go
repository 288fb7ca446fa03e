// Package echo provides an httpbin-style HTTP server that reflects requests
// back to the caller. It backs the request tests and the serve command.
package echo

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// MaxBytes caps the size of /bytes/{n} responses.
const MaxBytes = 100 * 1024 * 1024

// Server is an echo server
type Server struct {
	router  chi.Router
	port    int
	delay   time.Duration
	verbose bool
}

// Option is a functional option for Server
type Option func(*Server)

// WithPort sets the server port
func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithDelay adds a delay to all responses
func WithDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.delay = delay
	}
}

// WithVerbose enables verbose logging
func WithVerbose(verbose bool) Option {
	return func(s *Server) {
		s.verbose = verbose
	}
}

// NewServer creates a new echo server
func NewServer(opts ...Option) *Server {
	s := &Server{
		router: chi.NewRouter(),
		port:   3000,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// Handler returns the routed handler, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.logMiddleware)

	r.Get("/get", s.handleEcho)
	r.Post("/post", s.handleEcho)
	r.Put("/put", s.handleEcho)
	r.Delete("/delete", s.handleEcho)
	r.HandleFunc("/anything", s.handleEcho)
	r.HandleFunc("/anything/*", s.handleEcho)

	r.Get("/headers", s.handleHeaders)
	r.Get("/user-agent", s.handleUserAgent)
	r.HandleFunc("/status/{code}", s.handleStatus)
	r.Get("/basic-auth/{user}/{pass}", s.handleBasicAuth)
	r.Get("/redirect/{n}", s.handleRedirect)
	r.HandleFunc("/redirect-to", s.handleRedirectTo)
	r.Get("/bytes/{n}", s.handleBytes)
}

// Start starts the echo server
func (s *Server) Start() error {
	return s.StartWithContext(context.Background())
}

// StartWithContext starts the server with context for graceful shutdown
func (s *Server) StartWithContext(ctx context.Context) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("Echo server starting on http://localhost:%d", s.port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if s.delay > 0 {
			time.Sleep(s.delay)
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if s.verbose {
			log.Printf("%s %s -> %d (%s)", r.Method, r.URL.RequestURI(), rec.status, time.Since(start))
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Echo is the JSON document returned by the echo endpoints.
type Echo struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Args    map[string]string `json:"args"`
	Headers map[string]string `json:"headers"`
	Data    string            `json:"data"`
}

func (s *Server) handleEcho(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	args := make(map[string]string)
	for k, vs := range r.URL.Query() {
		args[k] = strings.Join(vs, ",")
	}

	writeJSON(w, http.StatusOK, Echo{
		Method:  r.Method,
		URL:     r.URL.RequestURI(),
		Args:    args,
		Headers: flattenHeaders(r),
		Data:    string(body),
	})
}

func (s *Server) handleHeaders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"headers": flattenHeaders(r)})
}

func (s *Server) handleUserAgent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"user-agent": r.UserAgent()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil || code < 100 || code > 599 {
		http.Error(w, "invalid status code", http.StatusBadRequest)
		return
	}
	w.WriteHeader(code)
}

func (s *Server) handleBasicAuth(w http.ResponseWriter, r *http.Request) {
	user, pass, ok := r.BasicAuth()
	wantUser := chi.URLParam(r, "user")
	wantPass := chi.URLParam(r, "pass")

	if !ok ||
		subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) != 1 ||
		subtle.ConstantTimeCompare([]byte(pass), []byte(wantPass)) != 1 {
		w.Header().Set("WWW-Authenticate", `Basic realm="echo"`)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"authenticated": true, "user": user})
}

// handleRedirect redirects n times before landing on /get.
func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 1 {
		http.Error(w, "invalid redirect count", http.StatusBadRequest)
		return
	}

	next := "/get"
	if n > 1 {
		next = fmt.Sprintf("/redirect/%d", n-1)
	}
	http.Redirect(w, r, next, http.StatusFound)
}

func (s *Server) handleRedirectTo(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		http.Error(w, "missing url", http.StatusBadRequest)
		return
	}

	code := http.StatusFound
	if raw := r.URL.Query().Get("status_code"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 300 || parsed > 399 {
			http.Error(w, "invalid status_code", http.StatusBadRequest)
			return
		}
		code = parsed
	}
	http.Redirect(w, r, target, code)
}

// handleBytes writes n deterministic bytes: byte i is i mod 256.
func (s *Server) handleBytes(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 0 || n > MaxBytes {
		http.Error(w, "invalid byte count", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)

	buf := make([]byte, 4096)
	for i := range buf {
		buf[i] = byte(i)
	}
	for n > 0 {
		chunk := min(n, len(buf))
		if _, err := w.Write(buf[:chunk]); err != nil {
			return
		}
		n -= chunk
	}
}

func flattenHeaders(r *http.Request) map[string]string {
	headers := make(map[string]string, len(r.Header)+1)
	for k, vs := range r.Header {
		headers[k] = strings.Join(vs, ",")
	}
	if r.Host != "" {
		headers["Host"] = r.Host
	}
	return headers
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
