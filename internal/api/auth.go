package api

import (
	"context"
	"log"
	"net/http"

	"github.com/panelkit/dealerpanel/internal/auth"
	apperrors "github.com/panelkit/dealerpanel/internal/platform/errors"
)

// AuthGateway signs dealers in and out against the backend.
type AuthGateway struct {
	client *Client
}

// Auth returns the auth resource gateway.
func (c *Client) Auth() *AuthGateway {
	return &AuthGateway{client: c}
}

// Credentials are the sign-in form fields.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginPayload struct {
	User  auth.User `json:"user"`
	Token string    `json:"token"`
}

// Login exchanges credentials for a user and bearer token. The caller
// installs them on the session.
func (g *AuthGateway) Login(ctx context.Context, creds Credentials) (auth.User, string, error) {
	var payload loginPayload
	if err := g.client.send(ctx, http.MethodPost, "/auth/login", creds, &payload); err != nil {
		return auth.User{}, "", apperrors.Wrap(apperrors.CodeAuthLoginFailed, "login", err)
	}
	if payload.Token == "" {
		return auth.User{}, "", apperrors.New(apperrors.CodeAuthLoginFailed, "login response carried no token")
	}
	return payload.User, payload.Token, nil
}

// Logout tells the backend to drop the session. The local session is
// cleared regardless of the outcome, so a failed call only gets logged.
func (g *AuthGateway) Logout(ctx context.Context) {
	if err := g.client.send(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		log.Printf("[AUTH] logout request failed: %v", err)
	}
}
