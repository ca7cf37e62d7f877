package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const (
	GoogleName   = "google"
	KeycloakName = "keycloak"

	googleIssuer = "https://accounts.google.com"
)

// NewGoogle configures the Google client.
func NewGoogle(ctx context.Context, clientID, clientSecret, callbackURL string) (*Client, error) {
	if clientID == "" || clientSecret == "" || callbackURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	return New(ctx, googleIssuer, Config{
		Name:         GoogleName,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		CallbackURL:  callbackURL,
	})
}

// NewKeycloak configures a public Keycloak client. issuer is the realm
// issuer URL, e.g. http://keycloak:8080/realms/app. When the browser
// reaches Keycloak through a different host, publicBaseURL replaces the
// issuer's scheme and host in the authorization URL only; back-channel
// calls keep using the issuer.
func NewKeycloak(ctx context.Context, issuer, clientID, callbackURL, publicBaseURL string) (*Client, error) {
	if issuer == "" || clientID == "" || callbackURL == "" {
		return nil, errors.New("keycloak oauth config missing required fields")
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init keycloak oidc provider: %w", err)
	}

	ep := provider.Endpoint()
	if publicBaseURL != "" {
		ep.AuthURL, err = rebase(ep.AuthURL, publicBaseURL)
		if err != nil {
			return nil, err
		}
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: clientID})

	return NewWithEndpoint(Config{
		Name:        KeycloakName,
		ClientID:    clientID,
		CallbackURL: callbackURL,
		Scopes:      []string{oidc.ScopeOpenID, "email", "profile"},
	}, oauth2.Endpoint{
		AuthURL:   ep.AuthURL,
		TokenURL:  ep.TokenURL,
		AuthStyle: ep.AuthStyle,
	}, verifier), nil
}

// rebase moves endpoint onto base, keeping endpoint's path and query.
func rebase(endpoint, base string) (string, error) {
	e, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("oidc: parse endpoint: %w", err)
	}
	b, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("oidc: parse public base url: %w", err)
	}
	e.Scheme = b.Scheme
	e.Host = b.Host
	e.Path = b.Path + e.Path
	return e.String(), nil
}
