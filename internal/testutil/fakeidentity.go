package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityServer is a fake identity provider holding accounts in memory.
type IdentityServer struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]*fakeAccount // keyed by email
	nextID   int

	// OobCodes records every out-of-band request (password reset,
	// email verification) the server has seen.
	OobCodes []string
}

type fakeAccount struct {
	localID     string
	email       string
	password    string
	displayName string
}

// NewIdentityServer starts a fake identity provider on a local port.
// The returned server should be closed after use.
func NewIdentityServer() *IdentityServer {
	s := &IdentityServer{accounts: make(map[string]*fakeAccount)}
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts:signInWithPassword", s.handleSignIn)
	mux.HandleFunc("/accounts:signUp", s.handleSignUp)
	mux.HandleFunc("/accounts:update", s.handleUpdate)
	mux.HandleFunc("/accounts:sendOobCode", s.handleSendOobCode)
	mux.HandleFunc("/accounts:signInWithIdp", s.handleSignInWithIdp)
	s.Server = httptest.NewServer(mux)
	return s
}

// AddAccount registers an account so tests can sign in without a prior
// sign-up round trip. Returns the assigned local ID.
func (s *IdentityServer) AddAccount(email, password, displayName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("uid-%d", s.nextID)
	s.accounts[email] = &fakeAccount{localID: id, email: email, password: password, displayName: displayName}
	return id
}

func (s *IdentityServer) fail(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": status, "message": code},
	})
}

func (s *IdentityServer) tokenFor(acct *fakeAccount) string {
	claims := jwt.MapClaims{
		"user_id": acct.localID,
		"sub":     acct.localID,
		"email":   acct.email,
		"name":    acct.displayName,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := tok.SignedString([]byte("fake-identity-key"))
	return signed
}

func (s *IdentityServer) respondAccount(w http.ResponseWriter, acct *fakeAccount) {
	writeJSON(w, map[string]any{
		"localId":      acct.localID,
		"email":        acct.email,
		"displayName":  acct.displayName,
		"idToken":      s.tokenFor(acct),
		"refreshToken": "refresh-" + acct.localID,
		"expiresIn":    "3600",
	})
}

func (s *IdentityServer) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[in.Email]
	if !ok {
		s.fail(w, http.StatusBadRequest, "EMAIL_NOT_FOUND")
		return
	}
	if acct.password != in.Password {
		s.fail(w, http.StatusBadRequest, "INVALID_PASSWORD")
		return
	}
	s.respondAccount(w, acct)
}

func (s *IdentityServer) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[in.Email]; ok {
		s.fail(w, http.StatusBadRequest, "EMAIL_EXISTS")
		return
	}
	if len(in.Password) < 6 {
		s.fail(w, http.StatusBadRequest, "WEAK_PASSWORD : Password should be at least 6 characters")
		return
	}
	s.nextID++
	acct := &fakeAccount{
		localID:  fmt.Sprintf("uid-%d", s.nextID),
		email:    in.Email,
		password: in.Password,
	}
	s.accounts[in.Email] = acct
	s.respondAccount(w, acct)
}

func (s *IdentityServer) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		IDToken     string `json:"idToken"`
		DisplayName string `json:"displayName"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.accountByToken(in.IDToken)
	if acct == nil {
		s.fail(w, http.StatusUnauthorized, "INVALID_ID_TOKEN")
		return
	}
	acct.displayName = in.DisplayName
	s.respondAccount(w, acct)
}

func (s *IdentityServer) handleSendOobCode(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RequestType string `json:"requestType"`
		Email       string `json:"email"`
		IDToken     string `json:"idToken"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	s.mu.Lock()
	defer s.mu.Unlock()
	if in.RequestType == "PASSWORD_RESET" {
		if _, ok := s.accounts[in.Email]; !ok {
			s.fail(w, http.StatusBadRequest, "EMAIL_NOT_FOUND")
			return
		}
	}
	s.OobCodes = append(s.OobCodes, in.RequestType)
	writeJSON(w, map[string]any{"email": in.Email})
}

func (s *IdentityServer) handleSignInWithIdp(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	acct := &fakeAccount{
		localID:     fmt.Sprintf("uid-%d", s.nextID),
		email:       fmt.Sprintf("federated-%d@example.com", s.nextID),
		displayName: "Federated User",
	}
	s.accounts[acct.email] = acct
	s.respondAccount(w, acct)
}

// accountByToken resolves an ID token back to its account. Tokens carry
// the local ID in their claims so no signature check is needed here.
func (s *IdentityServer) accountByToken(token string) *fakeAccount {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	uid, _ := claims["user_id"].(string)
	for _, acct := range s.accounts {
		if acct.localID == uid {
			return acct
		}
	}
	// Tolerate opaque tokens from manually seeded sessions.
	if strings.HasPrefix(token, "token-") {
		id := strings.TrimPrefix(token, "token-")
		for _, acct := range s.accounts {
			if acct.localID == id {
				return acct
			}
		}
	}
	return nil
}
