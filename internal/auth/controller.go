package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/careerflow/careerflow-cli/internal/apperr"
)

// Controller owns the Session and notifies subscribers of session changes.
// All operations delegate to the Provider exactly once: failures propagate
// to the caller without retry.
type Controller struct {
	mu       sync.Mutex
	provider Provider
	session  *Session
	subs     map[int]func(*Session)
	nextSub  int
	logger   *slog.Logger
	cache    *TokenCache
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithTokenCache persists the session to disk across runs. A cached session
// is restored on construction and announced to later subscribers.
func WithTokenCache(cache *TokenCache) ControllerOption {
	return func(c *Controller) {
		c.cache = cache
	}
}

// NewController creates a session controller on top of the given provider.
func NewController(provider Provider, opts ...ControllerOption) *Controller {
	c := &Controller{
		provider: provider,
		subs:     make(map[int]func(*Session)),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache != nil {
		if sess, err := c.cache.Load(); err == nil && sess != nil {
			c.session = sess
		}
	}
	return c
}

// Current returns a copy of the active session, or nil when signed out.
func (c *Controller) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Clone()
}

// Subscribe registers a session-change callback. The callback is invoked
// immediately with the current session, then on every change. The returned
// function removes the subscription.
func (c *Controller) Subscribe(fn func(*Session)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	current := c.session.Clone()
	c.mu.Unlock()

	fn(current)

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// SignIn authenticates with email and password.
func (c *Controller) SignIn(ctx context.Context, email, password string) (*Session, error) {
	sess, err := c.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, mapProviderError(err)
	}
	c.setSession(sess)
	return sess.Clone(), nil
}

// SignInWithProvider authenticates with a federated identity token obtained
// out of band.
func (c *Controller) SignInWithProvider(ctx context.Context, providerToken string) (*Session, error) {
	sess, err := c.provider.SignInWithIdp(ctx, providerToken)
	if err != nil {
		return nil, mapProviderError(err)
	}
	c.setSession(sess)
	return sess.Clone(), nil
}

// Register creates an account, assigns the display name, and dispatches a
// verification notification as a fire-and-forget side effect.
func (c *Controller) Register(ctx context.Context, email, password, displayName string) (*Session, error) {
	if strings.TrimSpace(displayName) == "" {
		return nil, apperr.Validation("displayName", "Please enter your full name.")
	}

	sess, err := c.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, mapProviderError(err)
	}

	named, err := c.provider.UpdateProfile(ctx, sess.IDToken, displayName)
	if err != nil {
		return nil, mapProviderError(err)
	}
	named.DisplayName = displayName

	// Welcome/verification email; a failure here never fails registration.
	if err := c.provider.SendVerification(ctx, named.IDToken); err != nil {
		c.logger.Warn("verification email dispatch failed", slog.String("email", email), slog.Any("error", err))
	}

	c.setSession(named)
	return named.Clone(), nil
}

// RequestPasswordReset asks the provider to send a reset link. It changes no
// session state.
func (c *Controller) RequestPasswordReset(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return apperr.Validation("email", "Please enter your email address.")
	}
	if err := c.provider.SendPasswordReset(ctx, email); err != nil {
		return mapProviderError(err)
	}
	return nil
}

// UpdateDisplayName changes the active session's display name.
func (c *Controller) UpdateDisplayName(ctx context.Context, newName string) error {
	c.mu.Lock()
	sess := c.session.Clone()
	c.mu.Unlock()
	if sess == nil {
		return &apperr.AuthError{Message: "Not signed in."}
	}

	updated, err := c.provider.UpdateProfile(ctx, sess.IDToken, newName)
	if err != nil {
		return mapProviderError(err)
	}

	sess.DisplayName = newName
	if updated.IDToken != "" {
		sess.IDToken = updated.IDToken
	}
	c.setSession(sess)
	return nil
}

// SignOut destroys the session. Calling it twice is not an error.
func (c *Controller) SignOut() {
	c.mu.Lock()
	already := c.session == nil
	c.session = nil
	c.mu.Unlock()

	if c.cache != nil {
		if err := c.cache.Clear(); err != nil {
			c.logger.Warn("token cache clear failed", slog.Any("error", err))
		}
	}
	if !already {
		c.notify()
	}
}

func (c *Controller) setSession(sess *Session) {
	c.mu.Lock()
	c.session = sess.Clone()
	c.mu.Unlock()

	if c.cache != nil {
		if err := c.cache.Save(sess); err != nil {
			c.logger.Warn("token cache save failed", slog.Any("error", err))
		}
	}
	c.notify()
}

func (c *Controller) notify() {
	c.mu.Lock()
	current := c.session.Clone()
	fns := make([]func(*Session), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(current)
	}
}

// mapProviderError converts a provider failure into a human-readable
// AuthError. Unknown codes fall through to a generic message.
func mapProviderError(err error) error {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return &apperr.AuthError{
			Message: "Authentication failed. Please check your credentials.",
			Err:     err,
		}
	}

	// Codes may carry a trailing detail, e.g. "EMAIL_EXISTS : ...".
	code, _, _ := strings.Cut(pe.Code, " ")
	msg := ""
	switch code {
	case "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		msg = "Incorrect password. Please try again."
	case "EMAIL_NOT_FOUND":
		msg = "No account found with this email."
	case "EMAIL_EXISTS":
		msg = "Email is already in use."
	default:
		msg = "Authentication failed. Please check your credentials."
	}
	return &apperr.AuthError{Code: code, Message: msg, Err: err}
}
