package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/token"
	"go.uber.org/zap"
)

const (
	msgNetworkFailure = "Failed to connect to server"
	msgSignInFailed   = "Signin failed"
	msgSignUpFailed   = "Signup failed"
	msgSignInOK       = "SignIn successful!"
	msgSignUpOK       = "Signup successful!"

	// FormErrorKey collects errors not tied to a single field.
	FormErrorKey = "form"

	maxResponseBytes = 1 << 20
)

// ActionResult is the outcome of a sign-in or sign-up call.
type ActionResult struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// SignUpRequest is the registration payload.
type SignUpRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Password    string `json:"password"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
}

type signInRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Message     string `json:"message"`
}

type errorResponse struct {
	Errors map[string][]string `json:"errors"`
	Detail json.RawMessage     `json:"detail"`
}

// AuthAPI talks to the backend at the authority's configured base URL.
type AuthAPI struct {
	baseURL   string
	http      *http.Client
	authority *goGuard.Authority
	logger    *zap.Logger
}

// NewAuthAPI returns a client sharing the authority's HTTP client.
func NewAuthAPI(a *goGuard.Authority) *AuthAPI {
	cfg := a.Config()
	return &AuthAPI{
		baseURL:   strings.TrimRight(cfg.Session.BaseURL, "/"),
		http:      a.HTTPClient(),
		authority: a,
		logger:    a.Logger(),
	}
}

// WithHTTPClient replaces the transport.
func (c *AuthAPI) WithHTTPClient(hc *http.Client) *AuthAPI {
	if hc != nil {
		c.http = hc
	}
	return c
}

// SignIn exchanges credentials for a token and logs the authority in with
// it. The session is untouched when the backend cannot be reached or
// rejects the credentials.
func (c *AuthAPI) SignIn(ctx context.Context, phone, password string) ActionResult {
	var tr tokenResponse
	res, ok := c.post(ctx, "/signin", signInRequest{Phone: phone, Password: password}, &tr, msgSignInFailed)
	if !ok {
		return res
	}

	if tr.AccessToken == "" {
		return failure(msgSignInFailed, "No access token received")
	}
	if tr.TokenType != "" && !strings.EqualFold(tr.TokenType, "bearer") {
		c.logger.Warn("unexpected token type", zap.String("token_type", tr.TokenType))
	}

	if err := c.authority.Login(ctx, tr.AccessToken); err != nil {
		switch {
		case errors.Is(err, goGuard.ErrAuthorityClosed):
			return failure(msgSignInFailed, "Session closed before sign-in completed")
		case errors.Is(err, token.ErrMalformed):
			return failure(msgSignInFailed, "Invalid token received")
		default:
			return failure(msgSignInFailed, "Could not store session")
		}
	}

	return ActionResult{Success: true, Message: orDefault(tr.Message, msgSignInOK)}
}

// SignUp registers an account. It does not log in.
func (c *AuthAPI) SignUp(ctx context.Context, req SignUpRequest) ActionResult {
	var body struct {
		Message string `json:"message"`
	}
	res, ok := c.post(ctx, "/signup", req, &body, msgSignUpFailed)
	if !ok {
		return res
	}
	return ActionResult{Success: true, Message: orDefault(body.Message, msgSignUpOK)}
}

// post sends payload as JSON and decodes a 2xx body into out. ok is false
// when res already describes a failure.
func (c *AuthAPI) post(ctx context.Context, path string, payload, out any, failMsg string) (res ActionResult, ok bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		return failure(failMsg, "Invalid request"), false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return failure(failMsg, "Invalid request"), false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend unreachable", zap.String("path", path), zap.Error(err))
		return ActionResult{
			Success: false,
			Message: msgNetworkFailure,
			Errors:  map[string][]string{FormErrorKey: {"Network error occurred"}},
		}, false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return ActionResult{
			Success: false,
			Message: msgNetworkFailure,
			Errors:  map[string][]string{FormErrorKey: {"Network error occurred"}},
		}, false
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Info("backend rejected request",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return ActionResult{
			Success: false,
			Message: failMsg,
			Errors:  backendErrors(body),
		}, false
	}

	if err := json.Unmarshal(body, out); err != nil {
		return failure(failMsg, fmt.Sprintf("Unexpected server response (%d)", resp.StatusCode)), false
	}
	return ActionResult{}, true
}

// backendErrors extracts field errors from either {"errors": ...} or the
// {"detail": {"errors": ...}} envelope.
func backendErrors(body []byte) map[string][]string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil {
		if len(er.Errors) > 0 {
			return er.Errors
		}
		var detail struct {
			Errors map[string][]string `json:"errors"`
		}
		if len(er.Detail) > 0 && json.Unmarshal(er.Detail, &detail) == nil && len(detail.Errors) > 0 {
			return detail.Errors
		}
	}
	return map[string][]string{FormErrorKey: {"Server error occurred"}}
}

func failure(msg, formErr string) ActionResult {
	return ActionResult{
		Success: false,
		Message: msg,
		Errors:  map[string][]string{FormErrorKey: {formErr}},
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
