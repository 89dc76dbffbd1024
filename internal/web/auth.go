package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/session"
)

type authPage struct {
	PageData
	Email    string
	FullName string
	Next     string
}

// LoginPage handles GET /login.
func (srv *Server) LoginPage(w http.ResponseWriter, r *http.Request, s *session.Session) {
	p := &authPage{PageData: PageData{Title: "Sign in"}, Next: r.URL.Query().Get("next")}
	switch {
	case r.URL.Query().Has("expired"):
		p.Notice = "Your session has expired. Please sign in again."
	case r.URL.Query().Has("registered"):
		p.Notice = "Your account was created. You can sign in now."
	}
	srv.Templates.Render(w, http.StatusOK, "login.html", p)
}

// LoginSubmit handles POST /login.
func (srv *Server) LoginSubmit(w http.ResponseWriter, r *http.Request, _ *session.Session) {
	creds := model.Credentials{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	next := r.FormValue("next")

	sess, cookie, err := srv.Sessions.Login(r.Context(), creds)
	if err != nil {
		p := &authPage{PageData: PageData{Title: "Sign in"}, Email: creds.Email, Next: next}
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, session.ErrBusy):
			p.Error = "A sign-in for this account is already in progress."
			status = http.StatusConflict
		case errors.Is(err, client.ErrUnauthorized):
			// The backend answers bad credentials with 401.
			p.Error = "Invalid email or password."
			status = http.StatusUnauthorized
		default:
			a := describeError(err)
			p.Error, p.Fields = a.Message, a.Fields
			if a.Banner {
				status = http.StatusBadGateway
			}
		}
		srv.Templates.Render(w, status, "login.html", p)
		return
	}

	http.SetCookie(w, cookie)
	fallback := "/dashboard"
	if sess.IsAdmin() {
		fallback = "/admin"
	}
	http.Redirect(w, r, safeNext(next, fallback), http.StatusSeeOther)
}

// RegisterPage handles GET /register.
func (srv *Server) RegisterPage(w http.ResponseWriter, r *http.Request, _ *session.Session) {
	srv.Templates.Render(w, http.StatusOK, "register.html", &authPage{PageData: PageData{Title: "Create account"}})
}

// RegisterSubmit handles POST /register.
func (srv *Server) RegisterSubmit(w http.ResponseWriter, r *http.Request, _ *session.Session) {
	reg := model.Registration{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		FullName: strings.TrimSpace(r.FormValue("full_name")),
	}
	p := &authPage{PageData: PageData{Title: "Create account"}, Email: reg.Email, FullName: reg.FullName}

	if err := model.ValidatePassword(reg.Password); err != nil {
		p.Error = "Please check the highlighted fields."
		p.Fields = map[string]string{"password": err.Error()}
		srv.Templates.Render(w, http.StatusBadRequest, "register.html", p)
		return
	}
	if reg.Password != r.FormValue("confirm_password") {
		p.Error = "Please check the highlighted fields."
		p.Fields = map[string]string{"confirm_password": "passwords do not match"}
		srv.Templates.Render(w, http.StatusBadRequest, "register.html", p)
		return
	}

	if err := srv.Backend.Register(r.Context(), reg); err != nil {
		a := describeError(err)
		p.Error, p.Fields = a.Message, a.Fields
		status := http.StatusBadRequest
		if a.Banner {
			status = http.StatusBadGateway
		}
		srv.Templates.Render(w, status, "register.html", p)
		return
	}

	slog.Info("user registered", "email", reg.Email)
	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

// Logout handles POST /logout.
func (srv *Server) Logout(w http.ResponseWriter, r *http.Request, s *session.Session) {
	cookie, err := srv.Sessions.Logout(r.Context(), s)
	if err != nil {
		if errors.Is(err, session.ErrBusy) {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		slog.Error("failed to sign out", "error", err)
		cookie = srv.Sessions.ExpiredCookie()
	}
	if s != nil {
		srv.Consoles.Drop(s.ID)
	}
	http.SetCookie(w, cookie)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
