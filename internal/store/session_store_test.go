package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ymori/futalog/internal/domain"
)

func newSession(t *testing.T, d *sql.DB, sessions *SessionStore, expiresAt time.Time) *domain.Session {
	t.Helper()
	sess := &domain.Session{
		Token:     uuid.NewString(),
		AccountID: seedAccount(t, d, "u"+uuid.NewString()[:8]),
		ExpiresAt: expiresAt,
	}
	require.NoError(t, sessions.Create(context.Background(), sess))
	return sess
}

func TestSessionStoreRoundTrip(t *testing.T) {
	d := openTestDB(t)
	sessions := NewSessionStore(d)
	ctx := context.Background()

	sess := newSession(t, d, sessions, time.Now().Add(time.Hour))

	got, err := sessions.GetByToken(ctx, sess.Token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sess.AccountID, got.AccountID)

	require.NoError(t, sessions.Delete(ctx, sess.Token))
	got, err = sessions.GetByToken(ctx, sess.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStoreExpiredTokenResolvesNil(t *testing.T) {
	d := openTestDB(t)
	sessions := NewSessionStore(d)

	sess := newSession(t, d, sessions, time.Now().Add(-time.Minute))

	got, err := sessions.GetByToken(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStoreDeleteExpired(t *testing.T) {
	d := openTestDB(t)
	sessions := NewSessionStore(d)
	ctx := context.Background()

	live := newSession(t, d, sessions, time.Now().Add(time.Hour))
	newSession(t, d, sessions, time.Now().Add(-time.Hour))

	require.NoError(t, sessions.DeleteExpired(ctx))

	var count int
	require.NoError(t, d.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count))
	assert.Equal(t, 1, count)

	got, err := sessions.GetByToken(ctx, live.Token)
	require.NoError(t, err)
	assert.NotNil(t, got)
}
