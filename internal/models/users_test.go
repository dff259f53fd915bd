package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserDuplicates(t *testing.T) {
	database := openTestDB(t)
	require.NoError(t, CreateUser(database, "alice@example.com", "alice", "hash"))

	err := CreateUser(database, "alice@example.com", "someone-else", "hash")
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	err = CreateUser(database, "other@example.com", "alice", "hash")
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Equal(t, 1, n, "rejected registrations create no rows")
}

func TestSessionLifecycle(t *testing.T) {
	database := openTestDB(t)
	user := createTestUser(t, database, "alice", "alice@example.com")

	require.NoError(t, CreateSession(database, user.ID, "sid-1", time.Now().Add(time.Hour)))
	sess, err := GetSession(database, "sid-1")
	require.NoError(t, err)
	assert.Nil(t, sess.RevokedAt)

	// A fresh login revokes the previous session.
	require.NoError(t, CreateSession(database, user.ID, "sid-2", time.Now().Add(time.Hour)))
	old, err := GetSession(database, "sid-1")
	require.NoError(t, err)
	assert.NotNil(t, old.RevokedAt)

	require.NoError(t, RevokeSession(database, "sid-2"))
	revoked, err := GetSession(database, "sid-2")
	require.NoError(t, err)
	assert.NotNil(t, revoked.RevokedAt)

	_, err = GetSession(database, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
