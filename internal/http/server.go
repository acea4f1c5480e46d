// Package http provides the JSON API server for recording transactions and
// reading monthly budget reports.
package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"budgetwatch/internal/budget"
	"budgetwatch/internal/core"
	"budgetwatch/internal/log"
	"budgetwatch/internal/metrics"
	"budgetwatch/internal/middleware/ratelimit"
	"budgetwatch/internal/middleware/security"
	"budgetwatch/internal/middleware/trace"
	"budgetwatch/internal/services"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LedgerService is what the API needs from the service layer.
type LedgerService interface {
	Record(ctx context.Context, tx core.Transaction) (services.RecordResult, error)
	Report(ctx context.Context, month core.MonthKey) (services.MonthlyReport, error)
	Months(ctx context.Context) ([]core.MonthKey, error)
	Transactions(ctx context.Context, month core.MonthKey) ([]core.Transaction, error)
	Categories(ctx context.Context) ([]string, error)
	Budgets() budget.Table
	Ready(ctx context.Context) error
}

// Config holds the server options that are not routes.
type Config struct {
	// Classifier and NearThreshold are echoed by GET /api/budgets.
	Classifier    string
	NearThreshold float64
	// RateLimit applies to POST requests per client address.
	RateLimit ratelimit.Config
	Logger    *log.Logger
	// Now defaults to time.Now; it dates transactions sent without a date.
	Now func() time.Time
}

// Server wraps http.Server with the API routes and middleware.
type Server struct {
	http.Server

	svc      LedgerService
	cfg      Config
	logger   *log.Logger
	logs     *log.StructuredLogger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	now      func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc LedgerService, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		svc:     svc,
		cfg:     cfg,
		logger:  logger,
		logs:    log.NewStructuredLogger(logger),
		limiter: ratelimit.NewLimiter(cfg.RateLimit),
		now:     now,
	}
	s.detector = security.NewDetector(s.onSuspicious)

	mux := http.NewServeMux()
	limited := s.limiter.Middleware(s.detector.ClientIP, s.onRateLimited)

	s.route(mux, "GET /healthz", http.HandlerFunc(handleHealth))
	s.route(mux, "GET /readyz", http.HandlerFunc(s.handleReady))
	s.route(mux, "GET /metrics", promhttp.Handler())
	s.route(mux, "POST /api/transactions", limited(http.HandlerFunc(s.handleRecord)))
	s.route(mux, "GET /api/transactions", http.HandlerFunc(s.handleListTransactions))
	s.route(mux, "GET /api/months", http.HandlerFunc(s.handleMonths))
	s.route(mux, "GET /api/report", http.HandlerFunc(s.handleReport))
	s.route(mux, "GET /api/budgets", http.HandlerFunc(s.handleBudgets))
	s.route(mux, "GET /api/categories", http.HandlerFunc(s.handleCategories))

	var h http.Handler = mux
	h = trace.Completed(h, s.logCompletion)
	h = s.detector.Middleware(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = log.RequestIDMiddleware(func(r *http.Request) string { return trace.GetRequestID(r.Context()) })(h)
	h = log.Middleware(logger)(h)
	h = trace.RequestID(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// route registers h under pattern with per-route metrics.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.Handler) {
	mux.Handle(pattern, trace.Instrument(pattern, h))
}

func (s *Server) logCompletion(r *http.Request, c trace.Completion) {
	s.logs.LogHTTPEnd(r.Context(), r, c.Status, c.Duration.Milliseconds(), s.detector.ClientIP(r))
}

func (s *Server) onSuspicious(r *http.Request, reason string) {
	metrics.SuspiciousRequests.Inc()
	log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
		log.FieldClientIP, s.detector.ClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path,
		"reason", reason)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request, retryAfter int) {
	metrics.RateLimited.Inc()
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	if retryAfter < 1 {
		retryAfter = 1
	}
	TooManyRequestsError(strconv.Itoa(retryAfter)).Write(w)
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
