package http

import (
	"net/http"

	"financeiro/internal/services"
)

// apiView resolves the period of an API call. A malformed period is a client
// error here rather than a silent fallback.
func (s *Server) apiView(w http.ResponseWriter, r *http.Request, sess *services.Session) (services.MonthView, bool) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		_ = writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "método não permitido"})
		return services.MonthView{}, false
	}
	q := r.URL.Query()
	p, explicit := ParsePeriod(q, sess.AvailablePeriods()[0])
	if !explicit && (q.Has("year") || q.Has("month")) {
		_ = writeJSON(w, http.StatusBadRequest, apiError{Error: "período inválido"})
		return services.MonthView{}, false
	}
	v, err := sess.Period(p.Year, p.Month)
	if err != nil {
		_ = writeJSON(w, http.StatusBadRequest, apiError{Error: "período inválido"})
		return services.MonthView{}, false
	}
	return v, true
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	v, ok := s.apiView(w, r, sess)
	if !ok {
		return
	}
	_ = writeJSON(w, http.StatusOK, newAPISummary(v))
}

func (s *Server) handleAPICategories(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	v, ok := s.apiView(w, r, sess)
	if !ok {
		return
	}
	_ = writeJSON(w, http.StatusOK, newAPICategories(v))
}

func (s *Server) handleAPIPeriods(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		_ = writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "método não permitido"})
		return
	}
	_ = writeJSON(w, http.StatusOK, newAPIPeriods(sess.AvailablePeriods()))
}
