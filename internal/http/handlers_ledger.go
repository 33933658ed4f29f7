package http

import (
	"errors"
	"fmt"
	"net/http"

	"financeiro/internal/core"
	"financeiro/internal/log"
	"financeiro/internal/services"
)

const (
	msgSaveFailed       = "Não foi possível salvar o arquivo. As alterações ficam apenas nesta sessão."
	msgInvalidBalance   = "Digite um valor válido para o saldo"
	msgBalanceAdded     = "✅ Saldo do mês adicionado como receita!"
	msgBalanceRemoved   = "Saldo removido!"
	msgRecordDeleted    = "Registro excluído!"
	msgRecordNotFound   = "Registro não encontrado"
	msgTransactionAdded = "✅ %s adicionada com sucesso!"
)

// validationMessage translates domain errors into messages for the form.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidDate):
		return "Data inválida. Use o formato dd/mm/aaaa."
	case errors.Is(err, core.ErrInvalidKind):
		return "Escolha Receita ou Despesa."
	case errors.Is(err, core.ErrInvalidPaymentMethod):
		return "Forma de pagamento inválida."
	case errors.Is(err, core.ErrEmptyCategory):
		return "Informe a categoria."
	case errors.Is(err, core.ErrDescriptionTooLong):
		return "Descrição muito longa (máximo de 200 caracteres)."
	case errors.Is(err, core.ErrInvalidAmount):
		return "Valor inválido."
	case errors.Is(err, core.ErrInvalidPeriod):
		return "Período inválido."
	default:
		return "Dados inválidos."
	}
}

// noticeSaveFailed is the notice code a plain form post carries across its
// redirect when the ledger could not be written.
const noticeSaveFailed = "save_failed"

var redirectNotices = map[string]noticeData{
	noticeSaveFailed: {Type: NotificationError, Message: msgSaveFailed},
}

// reject answers a command whose input was refused. htmx keeps the page as is
// and shows a warning; plain form posts get the page of p back with the
// warning in place. A zero p selects the newest period.
func (s *Server) reject(w http.ResponseWriter, r *http.Request, sess *services.Session, p core.Period, err error, message string) {
	s.logger.WarnContext(r.Context(), "Command rejected",
		log.FieldPath, r.URL.Path,
		log.FieldError, err,
		"error_type", log.ErrorTypeValidation)

	if isHTMX(r) {
		UnprocessableEntityError(message).
			Header("HX-Reswap", "none").
			TriggerWarningNotification(message).
			Write(w)
		return
	}

	periods := sess.AvailablePeriods()
	if p.Validate() != nil {
		p = periods[0]
	}
	v, viewErr := sess.Period(p.Year, p.Month)
	if viewErr != nil {
		UnprocessableEntityError(message).Write(w)
		return
	}
	page := s.newPageData(sess, v, periods)
	page.Month.Notice = &noticeData{Type: NotificationWarning, Message: message}
	s.render(w, r, http.StatusUnprocessableEntity, "index.html", page)
}

// respond answers a command that changed the ledger. htmx callers get the
// refreshed month partial; plain form posts are redirected to the period.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, out services.Outcome, err error, success string, resetForm bool) {
	if !isHTMX(r) {
		target := "/?" + periodQuery(out.View.Period)
		if errors.Is(err, services.ErrSaveFailed) {
			target += "&notice=" + noticeSaveFailed
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	m := newMonthData(out.View)
	resp := NewHTMXResponse().TriggerLedgerChanged(out.View.Period)
	if errors.Is(err, services.ErrSaveFailed) {
		m.Notice = &noticeData{Type: NotificationError, Message: msgSaveFailed}
		resp.TriggerErrorNotification(msgSaveFailed)
	} else {
		m.Notice = &noticeData{Type: NotificationSuccess, Message: success}
		resp.TriggerSuccessNotification(success)
	}
	if resetForm {
		resp.TriggerFormReset()
	}

	page, execErr := s.execute("month", m)
	if execErr != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed", log.FieldError, execErr)
		InternalServerError("Erro ao montar a página").Write(w)
		return
	}
	resp.BodyHTML(string(page)).Write(w)
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	body, resp := ParseBodyOrFail(r)
	if resp != nil {
		resp.Write(w)
		return
	}

	in := body.TransactionInput()
	if in.Date == "" {
		in.Date = s.now().Format(core.DateLayout)
	}
	out, err := sess.AddTransaction(r.Context(), in)
	if err != nil && !errors.Is(err, services.ErrSaveFailed) {
		s.reject(w, r, sess, core.Period{}, err, validationMessage(err))
		return
	}
	s.respond(w, r, out, err, fmt.Sprintf(msgTransactionAdded, out.Transaction.Kind), true)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}
	body, resp := ParseBodyOrFail(r)
	if resp != nil {
		resp.Write(w)
		return
	}

	id := body.Get("id")
	if id == "" {
		id = sanitizeInput(r.URL.Query().Get("id"))
	}
	if id == "" {
		BadRequestError("ID obrigatório").Write(w)
		return
	}

	out, err := sess.DeleteTransaction(r.Context(), id)
	if errors.Is(err, core.ErrTransactionNotFound) {
		NotFoundError(msgRecordNotFound).
			Header("HX-Reswap", "none").
			TriggerWarningNotification(msgRecordNotFound).
			Write(w)
		return
	}
	if err != nil && !errors.Is(err, services.ErrSaveFailed) {
		s.logger.ErrorContext(r.Context(), "Failed to delete transaction", log.FieldError, err)
		InternalServerError("Erro ao excluir o registro").Write(w)
		return
	}
	s.respond(w, r, out, err, msgRecordDeleted, false)
}

// commandPeriod reads the period a balance command applies to, from the body
// first and then from the query.
func (s *Server) commandPeriod(r *http.Request, body *RequestBodyParser) (core.Period, bool) {
	if p, ok := ParsePeriod(body.Values(), core.Period{}); ok {
		return p, true
	}
	return ParsePeriod(r.URL.Query(), core.Period{})
}

func (s *Server) handleSetOpeningBalance(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	body, resp := ParseBodyOrFail(r)
	if resp != nil {
		resp.Write(w)
		return
	}
	p, ok := s.commandPeriod(r, body)
	if !ok {
		s.reject(w, r, sess, core.Period{}, core.ErrInvalidPeriod, validationMessage(core.ErrInvalidPeriod))
		return
	}

	out, err := sess.SetOpeningBalance(r.Context(), p.Year, p.Month, body.Get("amount"))
	if err != nil && !errors.Is(err, services.ErrSaveFailed) {
		s.reject(w, r, sess, p, err, msgInvalidBalance)
		return
	}
	s.respond(w, r, out, err, msgBalanceAdded, false)
}

func (s *Server) handleRemoveOpeningBalance(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}
	body, resp := ParseBodyOrFail(r)
	if resp != nil {
		resp.Write(w)
		return
	}
	p, ok := s.commandPeriod(r, body)
	if !ok {
		s.reject(w, r, sess, core.Period{}, core.ErrInvalidPeriod, validationMessage(core.ErrInvalidPeriod))
		return
	}

	out, err := sess.RemoveOpeningBalance(r.Context(), p.Year, p.Month)
	if err != nil && !errors.Is(err, services.ErrSaveFailed) {
		s.reject(w, r, sess, p, err, validationMessage(err))
		return
	}
	s.respond(w, r, out, err, msgBalanceRemoved, false)
}
