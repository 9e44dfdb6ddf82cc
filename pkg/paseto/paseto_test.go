package pasetotoken

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, keys Keys) *Manager {
	t.Helper()
	m, err := New(Config{
		Mode:      keys.Mode,
		Issuer:    "drivingschool",
		Audience:  "drivingschool-api",
		AccessTTL: time.Minute,
	}, keys)
	require.NoError(t, err)
	return m
}

func TestIssueVerify_Local(t *testing.T) {
	m := newManager(t, NewLocalKeys())
	uid := uuid.New()
	sid := uuid.New()

	tok, err := m.IssueAccess(uid, &sid)
	require.NoError(t, err)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, uid, claims.UserID)
	require.NotNil(t, claims.SessionID)
	assert.Equal(t, sid, *claims.SessionID)
	assert.True(t, claims.IsAccess())
	assert.False(t, claims.IsExpired())
}

func TestIssueVerify_PublicRefresh(t *testing.T) {
	m := newManager(t, NewPublicKeys())
	uid := uuid.New()

	tok, err := m.IssueRefresh(uid, nil)
	require.NoError(t, err)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.True(t, claims.IsRefresh())
	assert.Nil(t, claims.SessionID)
	assert.Equal(t, 30*24*time.Hour, m.RefreshTTL())
}

func TestVerify_WrongKey(t *testing.T) {
	issuer := newManager(t, NewLocalKeys())
	other := newManager(t, NewLocalKeys())

	tok, err := issuer.IssueAccess(uuid.New(), nil)
	require.NoError(t, err)

	_, err = other.Verify(tok)
	var invalid ErrInvalidToken
	assert.True(t, errors.As(err, &invalid))
}

func TestNew_ModeMismatch(t *testing.T) {
	_, err := New(Config{Mode: ModePublic, Issuer: "i", Audience: "a"}, NewLocalKeys())
	assert.Error(t, err)
}

func TestLoadKeys(t *testing.T) {
	_, err := LoadKeys(KeyStrings{Mode: ModeLocal})
	assert.Error(t, err)

	_, err = LoadKeys(KeyStrings{Mode: "jwt"})
	assert.Error(t, err)

	k := NewLocalKeys()
	loaded, err := LoadKeys(KeyStrings{Mode: ModeLocal, SymmetricHex: k.Symmetric.ExportHex()})
	require.NoError(t, err)
	assert.Equal(t, ModeLocal, loaded.Mode)
}
