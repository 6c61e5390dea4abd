// Package auth holds the session state of the app: who the current actor is,
// what role they have, and the handshake with the external auth provider.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yashraj-ghemud/royal-state/internal/apperr"
)

// ProviderSession is what the external provider hands back on success.
type ProviderSession struct {
	UID     string
	Email   string
	IDToken string
}

// Provider is the external auth boundary. Credential verification is
// entirely its job; nothing here stores or hashes secrets.
type Provider interface {
	SignIn(ctx context.Context, email, secret string) (*ProviderSession, error)
	SignUp(ctx context.Context, email, secret string) (*ProviderSession, error)
	SignOut(ctx context.Context) error
}

// identityClient speaks the identity-toolkit REST surface with a static
// project API key.
type identityClient struct {
	http     *http.Client
	endpoint string
	apiKey   string
}

func NewIdentityClient(endpoint, apiKey string) Provider {
	tr := &http.Transport{
		DialContext:     (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		MaxIdleConns:    16,
		IdleConnTimeout: 90 * time.Second,
	}
	return &identityClient{
		http:     &http.Client{Transport: tr, Timeout: 30 * time.Second},
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
	}
}

type identityRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type identityResponse struct {
	IDToken string `json:"idToken"`
	Email   string `json:"email"`
	LocalID string `json:"localId"`
}

type identityError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *identityClient) SignIn(ctx context.Context, email, secret string) (*ProviderSession, error) {
	return c.call(ctx, "accounts:signInWithPassword", email, secret)
}

func (c *identityClient) SignUp(ctx context.Context, email, secret string) (*ProviderSession, error) {
	return c.call(ctx, "accounts:signUp", email, secret)
}

// SignOut is local for token-based providers: dropping the token ends the
// session. Kept on the interface so the manager has one teardown path.
func (c *identityClient) SignOut(ctx context.Context) error { return nil }

func (c *identityClient) call(ctx context.Context, action, email, secret string) (*ProviderSession, error) {
	body, err := json.Marshal(identityRequest{Email: email, Password: secret, ReturnSecureToken: true})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/%s?key=%s", c.endpoint, action, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &apperr.AuthError{Kind: apperr.AuthOther, Message: "auth provider unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var payload identityError
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return nil, mapProviderError(payload.Error.Message)
	}

	var out identityResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &apperr.AuthError{Kind: apperr.AuthOther, Message: "malformed provider response", Err: err}
	}
	return &ProviderSession{UID: out.LocalID, Email: out.Email, IDToken: out.IDToken}, nil
}

// mapProviderError turns provider error codes into the AuthError taxonomy so
// the sign-in screen can show a per-kind message.
func mapProviderError(code string) error {
	// codes may carry a suffix, e.g. "WEAK_PASSWORD : ..."
	code = strings.TrimSpace(strings.SplitN(code, ":", 2)[0])
	switch code {
	case "EMAIL_NOT_FOUND", "USER_NOT_FOUND":
		return &apperr.AuthError{Kind: apperr.AuthNotFound, Message: "User not found. Please sign up."}
	case "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return &apperr.AuthError{Kind: apperr.AuthInvalidCredential, Message: "Wrong password."}
	case "EMAIL_EXISTS":
		return &apperr.AuthError{Kind: apperr.AuthAlreadyExists, Message: "Email already registered. Please login."}
	case "INVALID_EMAIL":
		return &apperr.AuthError{Kind: apperr.AuthInvalidInput, Message: "Invalid email address."}
	case "WEAK_PASSWORD":
		return &apperr.AuthError{Kind: apperr.AuthInvalidInput, Message: "Password must be at least 6 characters"}
	default:
		return &apperr.AuthError{Kind: apperr.AuthOther, Message: "Something went wrong. Please try again."}
	}
}

// tokenClaims pulls the identity claims out of an ID token. The token is
// treated as a claims envelope only; signature verification happened on the
// provider side when it was minted.
func tokenClaims(idToken string) (uid, email string, expires time.Time, err error) {
	claims := jwt.MapClaims{}
	if _, _, err = jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return "", "", time.Time{}, err
	}
	if v, ok := claims["user_id"].(string); ok {
		uid = v
	} else if v, ok := claims["sub"].(string); ok {
		uid = v
	}
	if v, ok := claims["email"].(string); ok {
		email = v
	}
	if exp, e := claims.GetExpirationTime(); e == nil && exp != nil {
		expires = exp.Time
	}
	return uid, email, expires, nil
}
