package http

import (
	"errors"
	"net/http"
	"regexp"

	"financeiro/internal/core"
	"financeiro/internal/log"
	"financeiro/internal/services"
)

// userCookie carries the user key, the MD5 of the email typed at the gate.
// The key is the ledger identity; there are no passwords.
const userCookie = "financeiro_user"

var userKeyPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// sessionHandler is a handler that runs with the caller's ledger session.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *services.Session)

// currentSession resolves the session named by the user cookie.
func (s *Server) currentSession(r *http.Request) (*services.Session, bool) {
	c, err := r.Cookie(userCookie)
	if err != nil || !userKeyPattern.MatchString(c.Value) {
		return nil, false
	}
	return s.deps.Sessions.ForKey(r.Context(), c.Value), true
}

// withSession sends callers without a session back to the email gate.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.currentSession(r)
		if !ok {
			if isHTMX(r) {
				NewHTMXResponse().Redirect("/").Status(http.StatusUnauthorized).Write(w)
				return
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next(w, r, sess)
	}
}

// withAPISession answers 401 in JSON to callers without a session.
func (s *Server) withAPISession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.currentSession(r)
		if !ok {
			_ = writeJSON(w, http.StatusUnauthorized, apiError{Error: "e-mail não informado"})
			return
		}
		next(w, r, sess)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	body, resp := ParseBodyOrFail(r)
	if resp != nil {
		resp.Write(w)
		return
	}

	email := body.Get("email")
	sess, err := s.deps.Sessions.ForEmail(r.Context(), email)
	if err != nil {
		if !errors.Is(err, core.ErrInvalidEmail) {
			s.logger.ErrorContext(r.Context(), "Failed to open session", log.FieldError, err)
		}
		s.render(w, r, http.StatusUnprocessableEntity, "login.html", loginData{
			Title:   s.deps.Report.Title,
			Email:   email,
			Warning: "Por favor, digite um e-mail válido para continuar.",
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     userCookie,
		Value:    sess.Key(),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.InfoContext(r.Context(), "User entered", log.FieldUserKey, sess.Key())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     userCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
