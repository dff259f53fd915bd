package server

import (
	"net/http"
	"strconv"
	"strings"

	"bloghub/internal/models"
)

// PostForm carries the create/update form fields plus the free-text
// side channel for minting a category or tags on the fly.
type PostForm struct {
	Title         string
	Excerpt       string
	Content       string
	CategoryID    int
	TagIDs        []int
	Status        string
	IsFeatured    bool
	AllowComments bool
	NewCategory   string
	NewTags       string

	Errors map[string]string
}

func parsePostForm(r *http.Request) *PostForm {
	r.ParseForm()
	f := &PostForm{
		Title:         strings.TrimSpace(r.FormValue("title")),
		Excerpt:       strings.TrimSpace(r.FormValue("excerpt")),
		Content:       strings.TrimSpace(r.FormValue("content")),
		Status:        r.FormValue("status"),
		IsFeatured:    r.FormValue("is_featured") != "",
		AllowComments: r.FormValue("allow_comments") != "",
		NewCategory:   strings.TrimSpace(r.FormValue("new_category")),
		NewTags:       strings.TrimSpace(r.FormValue("new_tags")),
		Errors:        map[string]string{},
	}
	f.CategoryID, _ = strconv.Atoi(r.FormValue("category"))
	for _, v := range r.Form["tags"] {
		if id, err := strconv.Atoi(v); err == nil && id > 0 {
			f.TagIDs = append(f.TagIDs, id)
		}
	}
	if f.Status == "" {
		f.Status = models.StatusDraft
	}
	return f
}

func (f *PostForm) Valid() bool {
	if f.Title == "" {
		f.Errors["title"] = "Title is required"
	}
	if f.Excerpt == "" {
		f.Errors["excerpt"] = "Excerpt is required"
	}
	if f.Content == "" {
		f.Errors["content"] = "Content is required"
	}
	if f.CategoryID == 0 && f.NewCategory == "" {
		f.Errors["category"] = "Choose a category or enter a new one"
	}
	if f.Status != models.StatusDraft && f.Status != models.StatusPublished {
		f.Errors["status"] = "Invalid status"
	}
	return len(f.Errors) == 0
}

// splitTags breaks a comma-separated tag list into trimmed, non-empty
// names. Duplicate names collapse later through the unique constraint.
func splitTags(s string) []string {
	var names []string
	for _, token := range strings.Split(s, ",") {
		if name := strings.TrimSpace(token); name != "" {
			names = append(names, name)
		}
	}
	return names
}

type RegisterForm struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string

	Errors map[string]string
}

func parseRegisterForm(r *http.Request) *RegisterForm {
	return &RegisterForm{
		Username:        strings.TrimSpace(r.FormValue("username")),
		Email:           strings.TrimSpace(r.FormValue("email")),
		Password:        r.FormValue("password"),
		PasswordConfirm: r.FormValue("password_confirm"),
		Errors:          map[string]string{},
	}
}

func (f *RegisterForm) Valid() bool {
	if f.Username == "" {
		f.Errors["username"] = "Username is required"
	}
	if f.Email == "" {
		f.Errors["email"] = "Email is required"
	} else if !strings.Contains(f.Email, "@") {
		f.Errors["email"] = "Enter a valid email address"
	}
	if len(f.Password) < 8 {
		f.Errors["password"] = "Password must be at least 8 characters long"
	}
	if f.Password != f.PasswordConfirm {
		f.Errors["password_confirm"] = "Passwords do not match"
	}
	return len(f.Errors) == 0
}
