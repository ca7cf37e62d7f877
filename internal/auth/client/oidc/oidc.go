// Package oidc is an identity client for OpenID Connect providers using the
// authorization code flow with PKCE. State, nonce and the PKCE verifier are
// kept as session attributes between the redirect and the callback.
package oidc

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"authbridge/internal/auth"
	"authbridge/internal/auth/client"
	"authbridge/internal/logger"
	"authbridge/internal/utils"
)

var (
	ErrStateMismatch = errors.New("oidc: state mismatch")
	ErrNonceMismatch = errors.New("oidc: nonce mismatch")
	ErrNoIDToken     = errors.New("oidc: provider did not return id_token")
)

type Config struct {
	Name         string
	ClientID     string
	ClientSecret string
	// CallbackURL must carry the client name parameter.
	CallbackURL string
	Scopes      []string
}

type Client struct {
	name        string
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
}

// New discovers issuer and builds a client for it.
func New(ctx context.Context, issuer string, cfg Config) (*Client, error) {
	if issuer == "" || cfg.Name == "" || cfg.ClientID == "" || cfg.CallbackURL == "" {
		return nil, errors.New("oidc: config missing required fields")
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc: failed to init provider %s: %w", issuer, err)
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: cfg.ClientID,
	})

	return NewWithEndpoint(cfg, provider.Endpoint(), verifier), nil
}

// NewWithEndpoint builds a client without discovery.
func NewWithEndpoint(cfg Config, ep oauth2.Endpoint, verifier *oidc.IDTokenVerifier) *Client {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	return &Client{
		name: cfg.Name,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     ep,
			Scopes:       scopes,
		},
		verifier: verifier,
	}
}

// Name returns the client identifier used by the registry.
func (c *Client) Name() string {
	return c.name
}

func (c *Client) attr(key string) string {
	return "oidc:" + c.name + ":" + key
}

// RedirectAction builds the authorization URL and remembers state, nonce
// and PKCE verifier for the callback.
func (c *Client) RedirectAction(ctx context.Context, wc client.WebContext) (client.RedirectAction, error) {
	state, err := utils.RandomString(32)
	if err != nil {
		return client.RedirectAction{}, err
	}
	nonce, err := utils.RandomString(32)
	if err != nil {
		return client.RedirectAction{}, err
	}
	verifier := oauth2.GenerateVerifier()

	for key, value := range map[string]string{
		"state":    state,
		"nonce":    nonce,
		"verifier": verifier,
	} {
		if err := wc.SetSessionAttribute(ctx, c.attr(key), value); err != nil {
			return client.RedirectAction{}, fmt.Errorf("oidc: failed to store %s: %w", key, err)
		}
	}

	authURL := c.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oidc.Nonce(nonce),
		oauth2.S256ChallengeOption(verifier),
	)
	return client.RedirectAction{Location: authURL}, nil
}

// takeAttr reads a one-time session attribute and drops it.
func (c *Client) takeAttr(ctx context.Context, wc client.WebContext, key string) (string, error) {
	v, err := wc.SessionAttribute(ctx, c.attr(key))
	if err != nil {
		return "", err
	}
	if err := wc.SetSessionAttribute(ctx, c.attr(key), ""); err != nil {
		return "", err
	}
	return v, nil
}

func (c *Client) checkState(ctx context.Context, wc client.WebContext) error {
	expected, err := c.takeAttr(ctx, wc, "state")
	if err != nil {
		return err
	}
	got := wc.RequestParameter("state")
	if expected == "" || got != expected {
		return ErrStateMismatch
	}
	return nil
}

// ExtractCredentials reads the authorization code of the callback. A
// callback without code and without error yields no credentials.
func (c *Client) ExtractCredentials(ctx context.Context, wc client.WebContext) (client.CredentialsResult, error) {
	if errParam := wc.RequestParameter("error"); errParam != "" {
		logger.Warn("oidc callback returned error", map[string]any{
			"client": c.name,
			"error":  errParam,
			"desc":   wc.RequestParameter("error_description"),
		})
		return client.CredentialsResult{}, fmt.Errorf("oidc: provider error: %s", errParam)
	}

	code := wc.RequestParameter("code")
	if code == "" {
		return client.CredentialsResult{}, nil
	}

	if err := c.checkState(ctx, wc); err != nil {
		return client.CredentialsResult{}, err
	}

	verifier, err := c.takeAttr(ctx, wc, "verifier")
	if err != nil {
		return client.CredentialsResult{}, err
	}
	nonce, err := c.takeAttr(ctx, wc, "nonce")
	if err != nil {
		return client.CredentialsResult{}, err
	}

	return client.Found(&AuthorizationCode{
		client:   c.name,
		Code:     code,
		Verifier: verifier,
		Nonce:    nonce,
	}), nil
}

// ExtractAlternateCredentials accepts an id_token posted straight to the
// callback. State and nonce are still checked, so this only works when the
// session id travels in the trusted header.
func (c *Client) ExtractAlternateCredentials(ctx context.Context, wc client.WebContext) (client.CredentialsResult, bool, error) {
	raw := wc.RequestParameter("id_token")
	if raw == "" {
		return client.CredentialsResult{}, false, nil
	}

	if err := c.checkState(ctx, wc); err != nil {
		return client.CredentialsResult{}, true, err
	}
	nonce, err := c.takeAttr(ctx, wc, "nonce")
	if err != nil {
		return client.CredentialsResult{}, true, err
	}
	// best-effort cleanup, the verifier is unused on this path
	_ = wc.SetSessionAttribute(ctx, c.attr("verifier"), "")

	return client.Found(&IDToken{client: c.name, Raw: raw, Nonce: nonce}), true, nil
}

func (c *Client) Profile(ctx context.Context, creds client.Credentials, _ client.WebContext) (*auth.Profile, error) {
	switch cr := creds.(type) {
	case *AuthorizationCode:
		return c.exchange(ctx, cr)
	case *IDToken:
		return c.verify(ctx, cr.Raw, cr.Nonce)
	default:
		return nil, fmt.Errorf("oidc: unexpected credentials %T", creds)
	}
}

func (c *Client) exchange(ctx context.Context, cr *AuthorizationCode) (*auth.Profile, error) {
	token, err := c.oauthConfig.Exchange(
		ctx,
		cr.Code,
		oauth2.VerifierOption(cr.Verifier),
	)
	if err != nil {
		logger.Error("oidc token exchange failed", map[string]any{
			"client": c.name,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("oidc: token exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, ErrNoIDToken
	}

	return c.verify(ctx, rawIDToken, cr.Nonce)
}

type claims struct {
	Subject           string `json:"sub"`
	Email             string `json:"email"`
	EmailVerified     bool   `json:"email_verified"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	Locale            string `json:"locale"`
	RealmAccess       struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

func (c *Client) verify(ctx context.Context, raw, nonce string) (*auth.Profile, error) {
	idToken, err := c.verifier.Verify(ctx, raw)
	if err != nil {
		logger.Error("oidc id_token verification failed", map[string]any{
			"client": c.name,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("oidc: id_token verification failed: %w", err)
	}

	if nonce != "" && idToken.Nonce != nonce {
		return nil, ErrNonceMismatch
	}

	var cl claims
	if err := idToken.Claims(&cl); err != nil {
		return nil, fmt.Errorf("oidc: id_token claims parse failed: %w", err)
	}

	if cl.Subject == "" {
		return nil, errors.New("oidc: id_token missing subject")
	}

	logger.Info("oidc verified", map[string]any{
		"client":          c.name,
		"issuer":          idToken.Issuer,
		"subject_present": cl.Subject != "",
		"email_present":   cl.Email != "",
		"email_verified":  cl.EmailVerified,
		"expiry_unix":     idToken.Expiry.Unix(),
	})

	name := cl.Name
	if name == "" {
		name = cl.PreferredUsername
	}

	p := &auth.Profile{
		ID:            cl.Subject,
		ClientName:    c.name,
		Email:         cl.Email,
		EmailVerified: cl.EmailVerified,
		DisplayName:   name,
		Roles:         cl.RealmAccess.Roles,
		Attributes:    map[string]any{"issuer": idToken.Issuer},
	}
	if cl.PreferredUsername != "" {
		p.Attributes["preferred_username"] = cl.PreferredUsername
	}
	if cl.Locale != "" {
		p.Attributes["locale"] = cl.Locale
	}
	return p, nil
}
