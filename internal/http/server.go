package http

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"financeiro/internal/log"
	"financeiro/internal/metrics"
	"financeiro/internal/middleware/ratelimit"
	"financeiro/internal/middleware/security"
	"financeiro/internal/middleware/trace"
	"financeiro/internal/report"
	"financeiro/internal/services"
	"financeiro/internal/storage"
	"financeiro/internal/taxonomy"
	appweb "financeiro/web"
)

// Pinger is implemented by stores that can check their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the HTTP server.
type Deps struct {
	Sessions           *services.SessionManager
	Store              storage.Store // readiness probe only
	Taxonomy           *taxonomy.Taxonomy
	Metrics            *metrics.Metrics // optional
	Logger             *log.Logger
	Report             report.Options
	RateLimitPerMinute int
	TrustedProxies     []string // CIDRs whose forwarded headers are honoured
	Now                func() time.Time
}

// Server serves the ledger UI, the JSON API and the PDF report.
type Server struct {
	http.Server
	deps      Deps
	logger    *log.Logger
	templates *template.Template
	mux       *http.ServeMux

	detector    *security.Detector
	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = log.New(log.DefaultConfig())
	}
	if deps.Taxonomy == nil {
		deps.Taxonomy = taxonomy.Default()
	}
	if deps.Report.Title == "" {
		deps.Report.Title = report.DefaultTitle
	}

	mux := http.NewServeMux()
	s := &Server{
		deps:     deps,
		logger:   deps.Logger.WithComponent(log.ComponentHTTP),
		mux:      mux,
		detector: security.NewDetector(),
		started:  time.Now(),
	}

	for _, cidr := range deps.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			s.logger.Warn("Ignoring trusted proxy", "cidr", cidr, log.FieldError, err)
		}
	}

	limits := ratelimit.DefaultConfig()
	if deps.RateLimitPerMinute > 0 {
		limits.RequestsPerMinute = deps.RateLimitPerMinute
	}
	s.rateLimiter = ratelimit.NewLimiter(limits)

	s.tracer = trace.NewMiddleware(trace.Config{
		Logger:    deps.Logger,
		ExtractIP: s.detector.ExtractClientIP,
		Observer:  deps.Metrics,
		Route:     s.route,
	})

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Error("Failed parsing templates", log.FieldError, err,
			"error_type", log.ErrorTypeConfiguration)
	} else {
		s.templates = t
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	ledgerRoute := func(h http.HandlerFunc) http.Handler { return security.NoStore(h) }

	mux.Handle("/", ledgerRoute(s.handleIndex))
	mux.Handle("/login", ledgerRoute(s.handleLogin))
	mux.Handle("/logout", ledgerRoute(s.handleLogout))
	mux.Handle("/ui/month", ledgerRoute(s.withSession(s.handleMonth)))
	mux.Handle("/transactions", ledgerRoute(s.withSession(s.handleAddTransaction)))
	mux.Handle("/transactions/delete", ledgerRoute(s.withSession(s.handleDeleteTransaction)))
	mux.Handle("/opening-balance", ledgerRoute(s.withSession(s.handleSetOpeningBalance)))
	mux.Handle("/opening-balance/delete", ledgerRoute(s.withSession(s.handleRemoveOpeningBalance)))
	mux.Handle("/report.pdf", ledgerRoute(s.withSession(s.handleReport)))

	mux.Handle("/api/summary", ledgerRoute(s.withAPISession(s.handleAPISummary)))
	mux.Handle("/api/categories", ledgerRoute(s.withAPISession(s.handleAPICategories)))
	mux.Handle("/api/periods", ledgerRoute(s.withAPISession(s.handleAPIPeriods)))

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	if deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics.Handler())
	}

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)(handler)
	handler = s.detector.Middleware(deps.Logger, true)(handler)
	handler = headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// route labels requests with their mux pattern to keep metric cardinality
// bounded.
func (s *Server) route(r *http.Request) string {
	_, pattern := s.mux.Handler(r)
	if pattern == "" {
		return "unmatched"
	}
	return pattern
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Muitas requisições. Tente novamente em instantes.").
		TriggerErrorNotification("Muitas requisições. Tente novamente em instantes.").
		Write(w)
}

// ListenAndServe starts serving and treats a graceful shutdown as success.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", "addr", s.Addr)
	if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
