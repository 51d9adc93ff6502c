package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/careerflow/careerflow-cli/internal/transport"
)

// Provider is the identity collaborator. It is consumed as an opaque
// capability: no retries, no caching, every call is a fresh request.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignInWithIdp(ctx context.Context, providerToken string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	UpdateProfile(ctx context.Context, idToken, displayName string) (*Session, error)
	SendPasswordReset(ctx context.Context, email string) error
	SendVerification(ctx context.Context, idToken string) error
}

// ProviderError carries the provider's raw error code (e.g. "EMAIL_EXISTS").
type ProviderError struct {
	Code       string
	HTTPStatus int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider: %s (status %d)", e.Code, e.HTTPStatus)
}

// RESTProvider implements Provider against an Identity Toolkit style REST
// surface: accounts:signInWithPassword, accounts:signUp, accounts:update,
// accounts:sendOobCode, accounts:signInWithIdp.
type RESTProvider struct {
	baseURL string
	apiKey  string
	http    transport.Client
}

var _ Provider = (*RESTProvider)(nil)

// NewRESTProvider creates a provider client. baseURL points at the
// provider's v1 accounts endpoint root.
func NewRESTProvider(baseURL, apiKey string, hc transport.Client) *RESTProvider {
	return &RESTProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    hc,
	}
}

// accountPayload is the common shape of the provider's account responses.
type accountPayload struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

func (p *RESTProvider) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var out accountPayload
	err := p.post(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return p.toSession(&out), nil
}

func (p *RESTProvider) SignInWithIdp(ctx context.Context, providerToken string) (*Session, error) {
	post := url.Values{}
	post.Set("id_token", providerToken)
	post.Set("providerId", "google.com")

	var out accountPayload
	err := p.post(ctx, "accounts:signInWithIdp", map[string]any{
		"postBody":          post.Encode(),
		"requestUri":        "http://localhost",
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return p.toSession(&out), nil
}

func (p *RESTProvider) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var out accountPayload
	err := p.post(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return p.toSession(&out), nil
}

func (p *RESTProvider) UpdateProfile(ctx context.Context, idToken, displayName string) (*Session, error) {
	var out accountPayload
	err := p.post(ctx, "accounts:update", map[string]any{
		"idToken":           idToken,
		"displayName":       displayName,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return nil, err
	}
	sess := p.toSession(&out)
	if sess.IDToken == "" {
		sess.IDToken = idToken
	}
	return sess, nil
}

func (p *RESTProvider) SendPasswordReset(ctx context.Context, email string) error {
	return p.post(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, &struct{}{})
}

func (p *RESTProvider) SendVerification(ctx context.Context, idToken string) error {
	return p.post(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "VERIFY_EMAIL",
		"idToken":     idToken,
	}, &struct{}{})
}

// toSession maps an account payload to a Session, backfilling identity
// fields from the ID-token claims when the payload omits them.
func (p *RESTProvider) toSession(acc *accountPayload) *Session {
	sess := &Session{
		UID:          acc.LocalID,
		Email:        acc.Email,
		DisplayName:  acc.DisplayName,
		IDToken:      acc.IDToken,
		RefreshToken: acc.RefreshToken,
	}
	if secs, err := strconv.Atoi(acc.ExpiresIn); err == nil && secs > 0 {
		sess.ExpiresAt = time.Now().Add(time.Duration(secs) * time.Second)
	}
	if sess.IDToken != "" && (sess.Email == "" || sess.UID == "" || sess.DisplayName == "") {
		if claims, err := claimsFromToken(sess.IDToken); err == nil {
			if sess.UID == "" {
				sess.UID = claims.UserID
			}
			if sess.Email == "" {
				sess.Email = claims.Email
			}
			if sess.DisplayName == "" {
				sess.DisplayName = claims.Name
			}
		}
	}
	return sess
}

func (p *RESTProvider) post(ctx context.Context, action string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", action, err)
	}

	u := p.baseURL + "/" + action
	if p.apiKey != "" {
		u += "?key=" + url.QueryEscape(p.apiKey)
	}

	resp, err := p.http.Do(ctx, &transport.Request{
		Method:      http.MethodPost,
		URL:         u,
		Body:        string(body),
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	if !resp.OK() {
		var fail struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(resp.Body, &fail)
		code := fail.Error.Message
		if code == "" {
			code = http.StatusText(resp.StatusCode)
		}
		return &ProviderError{Code: code, HTTPStatus: resp.StatusCode}
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", action, err)
	}
	return nil
}
