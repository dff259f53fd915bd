package models

import (
	"errors"
	"time"
)

// Post status values.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

var (
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrNotFound          = errors.New("not found")
)

type User struct {
	ID           int
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type Session struct {
	ID        string
	UserID    int
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

type Category struct {
	ID   int
	Name string
}

type Tag struct {
	ID   int
	Name string
}

type Post struct {
	ID            int
	AuthorID      int
	CategoryID    int
	Title         string
	Slug          string
	Excerpt       string
	Content       string
	Status        string
	IsFeatured    bool
	AllowComments bool
	ViewsCount    int
	CreatedAt     time.Time
	PublishedAt   *time.Time

	// Joined for display.
	Author   string
	Category string
	Tags     []Tag
}

func (p *Post) Published() bool { return p.Status == StatusPublished }

type Comment struct {
	ID         int
	PostID     int
	AuthorID   int
	Body       string
	IsApproved bool
	CreatedAt  time.Time

	Author string
}
