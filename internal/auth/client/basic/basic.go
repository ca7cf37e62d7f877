// Package basic is an identity client for HTTP basic authentication on the
// callback.
package basic

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"authbridge/internal/auth"
	"authbridge/internal/auth/client"
	"authbridge/internal/auth/client/form"
	"authbridge/internal/auth/credentials"
	"authbridge/internal/logger"
)

const Name = "basic"

type Client struct {
	realm       string
	callbackURL string
	auth        credentials.Authenticator
}

func New(realm, callbackURL string, authenticator credentials.Authenticator) *Client {
	return &Client{realm: realm, callbackURL: callbackURL, auth: authenticator}
}

func (c *Client) Name() string {
	return Name
}

// RedirectAction points at the callback, which answers with a challenge.
func (c *Client) RedirectAction(_ context.Context, _ client.WebContext) (client.RedirectAction, error) {
	return client.RedirectAction{Location: c.callbackURL}, nil
}

func (c *Client) challenge() client.CredentialsResult {
	return client.RequireAction(client.Unauthorized(fmt.Sprintf("Basic realm=%q", c.realm)))
}

func parseHeader(h string) (username, password string, ok bool) {
	const prefix = "Basic "
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(h[len(prefix):])
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(raw), ":")
}

func (c *Client) ExtractCredentials(ctx context.Context, wc client.WebContext) (client.CredentialsResult, error) {
	username, password, ok := parseHeader(wc.RequestHeader("Authorization"))
	if !ok || username == "" {
		return c.challenge(), nil
	}

	acct, err := c.auth.Authenticate(ctx, username, password)
	if errors.Is(err, credentials.ErrInvalidCredentials) {
		logger.Info("basic auth rejected", map[string]any{"client": Name})
		return c.challenge(), nil
	}
	if err != nil {
		return client.CredentialsResult{}, fmt.Errorf("basic: authenticate: %w", err)
	}

	return client.Found(&Credentials{Username: username, Account: acct}), nil
}

func (c *Client) Profile(_ context.Context, creds client.Credentials, _ client.WebContext) (*auth.Profile, error) {
	cr, ok := creds.(*Credentials)
	if !ok {
		return nil, fmt.Errorf("basic: unexpected credentials %T", creds)
	}
	return form.ProfileFromAccount(Name, cr.Username, cr.Account), nil
}

type Credentials struct {
	Username string
	Account  credentials.Account
}

func (*Credentials) ClientName() string { return Name }
