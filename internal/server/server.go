package server

import (
	"database/sql"
	"html/template"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bloghub/internal/models"
)

const (
	siteName = "BlogHub"
	tagline  = "Your Platform for Sharing Ideas"

	pageSize      = 9
	featuredLimit = 4
	relatedLimit  = 3
	topicsLimit   = 6

	sessionTTL = 24 * time.Hour
)

var titleCaser = cases.Title(language.Und)

type Server struct {
	DB *sql.DB

	tmpl map[string]*template.Template

	CookieName string
	FlashName  string
}

func New(db *sql.DB, templateDir string) (*Server, error) {
	templates := map[string]*template.Template{}
	layout := filepath.Join(templateDir, "layout.html")
	pages, err := filepath.Glob(filepath.Join(templateDir, "*.html"))
	if err != nil {
		return nil, err
	}
	for _, page := range pages {
		if filepath.Base(page) == "layout.html" {
			continue
		}
		t, err := template.ParseFiles(layout, page)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(page), ".html")
		templates[name] = t
	}
	return &Server{DB: db, tmpl: templates, CookieName: "session_id", FlashName: "flash"}, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /about/{$}", s.handleAbout)
	mux.HandleFunc("/contact/{$}", s.handleContact)
	mux.HandleFunc("GET /posts/{$}", s.handlePosts)
	// Registered per method so the literal segment outranks the
	// {slug} wildcard below instead of conflicting with it.
	mux.HandleFunc("GET /post/create/{$}", s.requireAuth(s.handlePostCreate))
	mux.HandleFunc("POST /post/create/{$}", s.requireAuth(s.handlePostCreate))
	mux.HandleFunc("GET /post/{slug}/{$}", s.handlePostDetail)
	mux.HandleFunc("/post/{slug}/update", s.requireAuth(s.handlePostUpdate))
	mux.HandleFunc("/post/{slug}/delete", s.requireAuth(s.handlePostDelete))
	mux.HandleFunc("POST /post/{slug}/comment/{$}", s.requireAuth(s.handleAddComment))
	mux.HandleFunc("POST /comment/{id}/delete/{$}", s.requireAuth(s.handleDeleteComment))
	mux.HandleFunc("GET /category/{name}/{$}", s.handleCategoryPosts)
	mux.HandleFunc("GET /author/{name}/{$}", s.handleAuthorPosts)
	mux.HandleFunc("GET /search/{$}", s.handleSearch)
	mux.HandleFunc("GET /my/posts/{$}", s.requireAuth(s.handleMyPosts))
	mux.HandleFunc("GET /my/drafts/{$}", s.requireAuth(s.handleMyDrafts))
	mux.HandleFunc("/login/{$}", s.handleLogin)
	mux.HandleFunc("/register/{$}", s.handleRegister)
	mux.HandleFunc("/logout/{$}", s.handleLogout)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	return mux
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.routes().ServeHTTP(w, r)
}

// render executes the named page inside the layout, filling in the
// base context every template expects.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	t, ok := s.tmpl[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["User"]; !ok {
		data["User"] = s.currentUser(r)
	}
	data["SiteName"] = siteName
	data["Tagline"] = tagline
	data["CurrentYear"] = time.Now().Year()
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = s.popFlash(w, r)
	}
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

// Flash is a one-shot notice carried across a redirect.
type Flash struct {
	Level   string // success, error, info
	Message string
}

func (s *Server) setFlash(w http.ResponseWriter, level, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.FlashName,
		Value:    url.QueryEscape(level + "|" + message),
		Path:     "/",
		HttpOnly: true,
	})
}

func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(s.FlashName)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: s.FlashName, Path: "/", MaxAge: -1})
	value, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}
	level, message, ok := strings.Cut(value, "|")
	if !ok {
		return nil
	}
	return &Flash{Level: level, Message: message}
}

// middleware
func (s *Server) requireAuth(next func(http.ResponseWriter, *http.Request, *models.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.currentUser(r)
		if user == nil {
			http.Redirect(w, r, "/login/", http.StatusSeeOther)
			return
		}
		next(w, r, user)
	}
}

func (s *Server) currentUser(r *http.Request) *models.User {
	cookie, err := r.Cookie(s.CookieName)
	if err != nil {
		return nil
	}
	sess, err := models.GetSession(s.DB, cookie.Value)
	if err != nil || sess.RevokedAt != nil || sess.ExpiresAt.Before(time.Now()) {
		return nil
	}
	user, err := models.GetUserByID(s.DB, sess.UserID)
	if err != nil {
		return nil
	}
	return user
}
