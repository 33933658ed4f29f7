package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"financeiro/internal/log"
	"financeiro/internal/services"
)

var errTemplatesNotLoaded = errors.New("templates not loaded")

var templateFuncs = template.FuncMap{
	"pad2": func(n int) string { return fmt.Sprintf("%02d", n) },
}

// execute runs a template into memory so a failing template never leaves a
// half-written page behind.
func (s *Server) execute(name string, data any) ([]byte, error) {
	if s.templates == nil {
		return nil, errTemplatesNotLoaded
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	page, err := s.execute(name, data)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err,
			log.FieldPath, r.URL.Path,
			"error_type", log.ErrorTypeConfiguration)
		http.Error(w, "Erro ao montar a página", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(page)
}

// selectedView returns the view of the period named in the query, or of the
// newest period with data.
func (s *Server) selectedView(r *http.Request, sess *services.Session) (services.MonthView, error) {
	periods := sess.AvailablePeriods()
	p, explicit := ParsePeriod(r.URL.Query(), periods[0])
	if !explicit && r.URL.Query().Get("month") != "" {
		s.logger.WarnContext(r.Context(), "Invalid period parameters, using newest period",
			log.FieldQuery, r.URL.RawQuery)
	}
	return sess.Period(p.Year, p.Month)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	sess, ok := s.currentSession(r)
	if !ok {
		s.render(w, r, http.StatusOK, "login.html", loginData{
			Title:   s.deps.Report.Title,
			Warning: "Por favor, digite seu e-mail para continuar.",
		})
		return
	}

	v, err := s.selectedView(r, sess)
	if err != nil {
		BadRequestError("Período inválido").Write(w)
		return
	}
	page := s.newPageData(sess, v, sess.AvailablePeriods())
	if n, ok := redirectNotices[r.URL.Query().Get("notice")]; ok {
		page.Month.Notice = &n
	}
	s.render(w, r, http.StatusOK, "index.html", page)
}

// handleMonth renders the month partial for htmx refreshes.
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	v, err := s.selectedView(r, sess)
	if err != nil {
		BadRequestError("Período inválido").Write(w)
		return
	}
	s.render(w, r, http.StatusOK, "month", newMonthData(v))
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)
	fail := func(name string, detail string) {
		checks[name] = "failed: " + detail
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	if s.templates == nil {
		fail("templates", "templates not loaded")
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.deps.Sessions == nil:
		fail("sessions", "not configured")
	default:
		checks["sessions"] = map[string]any{"cached": s.deps.Sessions.Size(), "status": "ok"}
	}

	if p, ok := s.deps.Store.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			fail("store", err.Error())
		} else {
			checks["store"] = "ok"
		}
	} else if s.deps.Store == nil {
		fail("store", "not configured")
	} else {
		checks["store"] = "ok"
	}

	limits := s.rateLimiter.GetMetrics()
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"limited_total":  limits.TotalHits,
		"status":         "ok",
	}
	sec := s.detector.GetMetrics()
	checks["security"] = map[string]any{
		"suspicious_requests": sec.SuspiciousRequests,
		"invalid_ip_attempts": sec.InvalidIPAttempts,
	}
	traffic := s.tracer.GetMetrics()
	checks["requests"] = map[string]any{
		"total":           traffic.TotalRequests,
		"avg_response_us": traffic.AverageResponseTime,
	}

	_ = writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	})
}
