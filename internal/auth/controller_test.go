package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerflow/careerflow-cli/internal/apperr"
	"github.com/careerflow/careerflow-cli/internal/testutil"
	"github.com/careerflow/careerflow-cli/internal/transport"
)

func newTestProvider(t *testing.T) (*RESTProvider, *testutil.IdentityServer) {
	t.Helper()
	srv := testutil.NewIdentityServer()
	t.Cleanup(srv.Close)

	hc, err := transport.NewClient(transport.ClientOptions{})
	require.NoError(t, err)
	return NewRESTProvider(srv.URL, "test-key", hc), srv
}

func TestSignInSuccess(t *testing.T) {
	provider, srv := newTestProvider(t)
	srv.AddAccount("dev@example.com", "secret123", "Dev User")
	c := NewController(provider)

	sess, err := c.SignIn(context.Background(), "dev@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", sess.Email)
	assert.Equal(t, "Dev User", sess.DisplayName)
	assert.NotEmpty(t, sess.UID)
	assert.NotEmpty(t, sess.IDToken)

	current := c.Current()
	require.NotNil(t, current)
	assert.Equal(t, sess.UID, current.UID)
}

func TestSignInWrongPassword(t *testing.T) {
	provider, srv := newTestProvider(t)
	srv.AddAccount("dev@example.com", "secret123", "")
	c := NewController(provider)

	_, err := c.SignIn(context.Background(), "dev@example.com", "wrong")
	var ae *apperr.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "Incorrect password. Please try again.", ae.Message)
	assert.Nil(t, c.Current())
}

func TestSignInUnknownEmail(t *testing.T) {
	provider, _ := newTestProvider(t)
	c := NewController(provider)

	_, err := c.SignIn(context.Background(), "nobody@example.com", "secret123")
	var ae *apperr.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "No account found with this email.", ae.Message)
}

func TestRegisterAssignsNameAndSendsVerification(t *testing.T) {
	provider, srv := newTestProvider(t)
	c := NewController(provider)

	sess, err := c.Register(context.Background(), "new@example.com", "secret123", "New User")
	require.NoError(t, err)
	assert.Equal(t, "New User", sess.DisplayName)
	assert.Contains(t, srv.OobCodes, "VERIFY_EMAIL")

	// Registration signs the user in.
	require.NotNil(t, c.Current())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	provider, srv := newTestProvider(t)
	srv.AddAccount("taken@example.com", "secret123", "")
	c := NewController(provider)

	_, err := c.Register(context.Background(), "taken@example.com", "secret123", "Someone")
	var ae *apperr.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "Email is already in use.", ae.Message)
}

func TestRegisterRequiresName(t *testing.T) {
	provider, _ := newTestProvider(t)
	c := NewController(provider)

	_, err := c.Register(context.Background(), "new@example.com", "secret123", "   ")
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Please enter your full name.", ve.Message)
}

func TestPasswordReset(t *testing.T) {
	provider, srv := newTestProvider(t)
	srv.AddAccount("dev@example.com", "secret123", "")
	c := NewController(provider)

	var ve *apperr.ValidationError
	require.ErrorAs(t, c.RequestPasswordReset(context.Background(), ""), &ve)

	require.NoError(t, c.RequestPasswordReset(context.Background(), "dev@example.com"))
	assert.Contains(t, srv.OobCodes, "PASSWORD_RESET")
}

func TestUpdateDisplayName(t *testing.T) {
	provider, srv := newTestProvider(t)
	srv.AddAccount("dev@example.com", "secret123", "Old Name")
	c := NewController(provider)
	_, err := c.SignIn(context.Background(), "dev@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, c.UpdateDisplayName(context.Background(), "Fresh Name"))
	assert.Equal(t, "Fresh Name", c.Current().DisplayName)
}

func TestUpdateDisplayNameWithoutSession(t *testing.T) {
	provider, _ := newTestProvider(t)
	c := NewController(provider)

	var ae *apperr.AuthError
	require.ErrorAs(t, c.UpdateDisplayName(context.Background(), "Name"), &ae)
}

func TestSubscribeAndSignOut(t *testing.T) {
	provider, srv := newTestProvider(t)
	srv.AddAccount("dev@example.com", "secret123", "")
	c := NewController(provider)

	var seen []*Session
	unsubscribe := c.Subscribe(func(s *Session) { seen = append(seen, s) })
	require.Len(t, seen, 1, "subscribers fire immediately")
	assert.Nil(t, seen[0])

	_, err := c.SignIn(context.Background(), "dev@example.com", "secret123")
	require.NoError(t, err)
	require.Len(t, seen, 2)
	require.NotNil(t, seen[1])

	c.SignOut()
	require.Len(t, seen, 3)
	assert.Nil(t, seen[2])

	// Signing out twice must not re-notify.
	c.SignOut()
	assert.Len(t, seen, 3)

	unsubscribe()
	srv.AddAccount("other@example.com", "secret123", "")
	_, err = c.SignIn(context.Background(), "other@example.com", "secret123")
	require.NoError(t, err)
	assert.Len(t, seen, 3, "unsubscribed callbacks stay silent")
}

func TestTokenCacheRestoresSession(t *testing.T) {
	provider, srv := newTestProvider(t)
	srv.AddAccount("dev@example.com", "secret123", "Dev User")

	path := filepath.Join(t.TempDir(), "session.json")
	c := NewController(provider, WithTokenCache(NewTokenCache(path)))
	_, err := c.SignIn(context.Background(), "dev@example.com", "secret123")
	require.NoError(t, err)

	restored := NewController(provider, WithTokenCache(NewTokenCache(path)))
	sess := restored.Current()
	require.NotNil(t, sess)
	assert.Equal(t, "dev@example.com", sess.Email)

	restored.SignOut()
	again := NewController(provider, WithTokenCache(NewTokenCache(path)))
	assert.Nil(t, again.Current(), "sign-out clears the cached session")
}

func TestTokenCacheMissingFile(t *testing.T) {
	cache := NewTokenCache(filepath.Join(t.TempDir(), "absent.json"))
	sess, err := cache.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)
	require.NoError(t, cache.Clear())
}
