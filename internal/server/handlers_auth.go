package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"bloghub/internal/models"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if s.currentUser(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if r.Method != http.MethodPost {
		s.render(w, r, "register", map[string]any{"Form": &RegisterForm{Errors: map[string]string{}}})
		return
	}
	f := parseRegisterForm(r)
	if f.Valid() {
		hash, err := bcrypt.GenerateFromPassword([]byte(f.Password), bcrypt.DefaultCost)
		if err != nil {
			s.serverError(w, err)
			return
		}
		err = models.CreateUser(s.DB, f.Email, f.Username, string(hash))
		switch {
		case errors.Is(err, models.ErrDuplicateUsername):
			f.Errors["username"] = "This username is already taken"
		case errors.Is(err, models.ErrDuplicateEmail):
			f.Errors["email"] = "This email is already registered"
		case err != nil:
			s.serverError(w, err)
			return
		default:
			s.setFlash(w, "success", "Account created successfully! You can now log in")
			http.Redirect(w, r, "/login/", http.StatusSeeOther)
			return
		}
	}
	s.render(w, r, "register", map[string]any{"Form": f})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.currentUser(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if r.Method != http.MethodPost {
		s.render(w, r, "login", map[string]any{"Email": ""})
		return
	}
	email := r.FormValue("email")
	password := r.FormValue("password")
	user, err := models.GetUserByEmail(s.DB, email)
	// One message for unknown email and wrong password alike.
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.render(w, r, "login", map[string]any{
			"Flash": &Flash{Level: "error", Message: "Invalid email or password"},
			"Email": email,
		})
		return
	}
	sid := uuid.NewString()
	expires := time.Now().Add(sessionTTL)
	if err := models.CreateSession(s.DB, user.ID, sid, expires); err != nil {
		s.serverError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: s.CookieName, Value: sid, Path: "/", Expires: expires, HttpOnly: true})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.CookieName); err == nil {
		if s.currentUser(r) != nil {
			s.setFlash(w, "info", "You have been logged out successfully")
		}
		if err := models.RevokeSession(s.DB, cookie.Value); err != nil {
			log.Printf("logout: revoke session: %v", err)
		}
		http.SetCookie(w, &http.Cookie{Name: s.CookieName, Path: "/", MaxAge: -1})
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
