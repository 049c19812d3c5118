package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/climatevia/pathway/auth"
	"github.com/climatevia/pathway/cache"
	"github.com/climatevia/pathway/config"
	"github.com/climatevia/pathway/empathy"
	"github.com/climatevia/pathway/metrics"
	"github.com/climatevia/pathway/session"
	"github.com/climatevia/pathway/specialists"
	"github.com/climatevia/pathway/supervisor"
)

// Server hosts the HTTP chat surface over one supervisor workflow.
type Server struct {
	cfg        config.ServerConfig
	httpServer *http.Server

	supervisorWF *supervisor.Workflow
	empathyWF    *empathy.Workflow
	delegate     *specialists.Supervisor // nil if the team wasn't threaded through
	sessions     *session.Tracker
	authv        *auth.JWTValidator // nil disables bearer-token enforcement
	cacheStore   *cache.Cache
	metrics      *metrics.Metrics

	conversations *conversationStore
}

// Dependencies bundles the collaborators the transport dispatches into,
// normally sourced from a container.Container.
type Dependencies struct {
	Supervisor *supervisor.Workflow
	Empathy    *empathy.Workflow
	Delegate   *specialists.Supervisor
	Sessions   *session.Tracker
	Auth       *auth.JWTValidator
	Cache      *cache.Cache
	Metrics    *metrics.Metrics
}

// NewServer builds the HTTP server and wires its route table. It does not
// start listening; call Start.
func NewServer(cfg config.ServerConfig, deps Dependencies) *Server {
	s := &Server{
		cfg:           cfg,
		supervisorWF:  deps.Supervisor,
		empathyWF:     deps.Empathy,
		delegate:      deps.Delegate,
		sessions:      deps.Sessions,
		authv:         deps.Auth,
		cacheStore:    deps.Cache,
		metrics:       deps.Metrics,
		conversations: newConversationStore(),
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(s.requestLogger)
	router.Use(s.metricsMiddleware)

	router.Get("/health", s.handleHealth)
	router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		s.metrics.Handler().ServeHTTP(w, r)
	})

	router.Route("/chat", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/message", s.handleChatMessage)
		r.Post("/stream", s.handleChatStream)
		r.Post("/delegate", s.handleChatDelegate)
		r.Get("/history/{conversationID}", s.handleHistory)
		r.Get("/summary/{conversationID}", s.handleSummary)
		r.Delete("/conversation/{conversationID}", s.handleDeleteConversation)
		r.Get("/conversations", s.handleListConversations)
		r.Get("/stats", s.handleStats)
		r.Get("/health", s.handleChatHealth)
	})

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Start begins serving (blocking) until the server is shut down.
func (s *Server) Start() error {
	slog.Info("transport: listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, waiting up to ctx's deadline for
// in-flight requests (notably long-lived SSE streams) to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("transport: request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

type statusCapturingWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusCapturingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush satisfies http.Flusher so SSE handlers downstream of this
// middleware can still flush incrementally.
func (w *statusCapturingWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusCapturingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		s.metrics.RecordHTTPRequest(route, r.Method, fmt.Sprintf("%d", wrapped.status), time.Since(start))
	})
}
