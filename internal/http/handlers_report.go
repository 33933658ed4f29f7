package http

import (
	"net/http"
	"strconv"

	"financeiro/internal/log"
	"financeiro/internal/report"
	"financeiro/internal/services"
)

// handleReport streams the PDF report of the selected period.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	v, err := s.selectedView(r, sess)
	if err != nil {
		BadRequestError("Período inválido").Write(w)
		return
	}

	opts := s.deps.Report
	opts.GeneratedAt = s.now()
	doc := report.Compile(v.Transactions, v.Period.Year, v.Period.Month, opts)
	pdf, err := report.Render(doc)
	if err != nil {
		log.NewStructuredLogger(s.deps.Logger).LogError(r.Context(), "Failed to render report", err,
			log.ComponentReport, log.OpRender,
			log.NewFields().WithUserKey(sess.Key()).WithPeriod(v.Period.Year, v.Period.Month))
		InternalServerError("Erro ao gerar o relatório").Write(w)
		return
	}
	s.deps.Metrics.ReportRendered(len(doc.Pages))

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.FileName(v.Period.Year, v.Period.Month)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(pdf)
	}
}
