package models

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"bloghub/internal/db"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func createTestUser(t *testing.T, database *sql.DB, username, email string) *User {
	t.Helper()
	require.NoError(t, CreateUser(database, email, username, "x"))
	u, err := GetUserByEmail(database, email)
	require.NoError(t, err)
	return u
}

func createTestCategory(t *testing.T, database *sql.DB, name string) *Category {
	t.Helper()
	c, err := GetOrCreateCategory(database, name)
	require.NoError(t, err)
	return c
}

func createTestPost(t *testing.T, database *sql.DB, authorID, categoryID int, title, status string) *Post {
	t.Helper()
	p := &Post{
		AuthorID:      authorID,
		CategoryID:    categoryID,
		Title:         title,
		Excerpt:       "excerpt of " + title,
		Content:       "content of " + title,
		Status:        status,
		AllowComments: true,
	}
	require.NoError(t, CreatePost(database, p, nil))
	return p
}
