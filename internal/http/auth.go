package httpapi

import (
	"net/http"

	"github.com/example/rideflow/internal/apiclient"
	"github.com/example/rideflow/internal/models"
	"github.com/example/rideflow/internal/nav"
	"github.com/example/rideflow/internal/notify"
	"github.com/example/rideflow/internal/validate"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if !decode(w, r, &body) {
		return
	}
	if err := (validate.LoginForm{Email: body.Email, Password: body.Password}).Validate(); err != nil {
		fail(w, err, "Login failed")
		return
	}
	if !s.session.Login(r.Context(), body.Email, body.Password) {
		msg := "Login failed"
		if m, ok := s.notices.Last(); ok && m.Level == notify.LevelError {
			msg = m.Text
		}
		writeError(w, http.StatusUnauthorized, msg)
		return
	}
	s.remount()
	writeJSON(w, http.StatusOK, nav.Resolve(s.session.Snapshot()))
}

type registerBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Password string `json:"password"`
	Confirm  string `json:"confirmPassword"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var b registerBody
	if !decode(w, r, &b) {
		return
	}
	form := validate.RegisterForm{Name: b.Name, Email: b.Email, Phone: b.Phone, Role: b.Role, Password: b.Password, Confirm: b.Confirm}
	if err := form.Validate(); err != nil {
		fail(w, err, "Registration failed")
		return
	}
	req := apiclient.RegisterRequest{Name: b.Name, Email: b.Email, Phone: b.Phone, Password: b.Password, Role: models.Role(b.Role)}
	if err := s.session.Register(r.Context(), req); err != nil {
		fail(w, err, "Registration failed")
		return
	}
	// registering never logs in
	writeJSON(w, http.StatusCreated, nav.Decision{Redirect: nav.LoginRoute, Sections: []nav.Section{}})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.session.Logout(r.Context())
	s.remount()
	writeJSON(w, http.StatusOK, nav.Resolve(s.session.Snapshot()))
}

type sessionView struct {
	Authenticated bool             `json:"authenticated"`
	User          *models.Identity `json:"user,omitempty"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session.Snapshot()
	if !ok {
		writeJSON(w, http.StatusOK, sessionView{})
		return
	}
	id := sess.Identity
	writeJSON(w, http.StatusOK, sessionView{Authenticated: true, User: &id})
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nav.Resolve(s.session.Snapshot()))
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	msgs := s.notices.Drain()
	if msgs == nil {
		msgs = []notify.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}
