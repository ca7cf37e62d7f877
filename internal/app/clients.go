package app

import (
	"context"
	"fmt"

	"authbridge/internal/auth/client"
	"authbridge/internal/auth/client/basic"
	"authbridge/internal/auth/client/form"
	"authbridge/internal/auth/client/oidc"
	"authbridge/internal/auth/credentials"
	"authbridge/internal/config"
	"authbridge/internal/logger"
)

// buildRegistry creates every client the configuration enables. OIDC
// clients are enabled by their client id, password clients by a flag.
func buildRegistry(ctx context.Context, cfg config.Config, infra *Infra) (*client.Registry, error) {
	callback := func(name string) string {
		return client.CallbackURL(cfg.CallbackURL, cfg.ClientNameParameter, name)
	}

	var clients []client.Client

	if cfg.GoogleClientID != "" {
		google, err := oidc.NewGoogle(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, callback(oidc.GoogleName))
		if err != nil {
			return nil, err
		}
		clients = append(clients, google)
	}

	if cfg.KeycloakClientID != "" {
		keycloak, err := oidc.NewKeycloak(
			ctx,
			cfg.KeycloakIssuer,
			cfg.KeycloakClientID,
			callback(oidc.KeycloakName),
			cfg.KeycloakPublicBaseURL,
		)
		if err != nil {
			return nil, err
		}
		clients = append(clients, keycloak)
	}

	if cfg.FormClientEnabled || cfg.BasicClientEnabled {
		authenticator, err := buildAuthenticator(cfg, infra)
		if err != nil {
			return nil, err
		}
		if cfg.FormClientEnabled {
			clients = append(clients, form.New(form.Config{
				CallbackURL: callback(form.Name),
				LoginURL:    cfg.FormLoginURL,
			}, authenticator))
		}
		if cfg.BasicClientEnabled {
			clients = append(clients, basic.New(cfg.BasicRealm, callback(basic.Name), authenticator))
		}
	}

	registry := client.NewRegistry(cfg.ClientNameParameter, clients...)
	logger.Info("identity clients configured", map[string]any{
		"clients": registry.Names(),
	})
	return registry, nil
}

// buildAuthenticator checks static users first, then the database.
func buildAuthenticator(cfg config.Config, infra *Infra) (credentials.Authenticator, error) {
	var chain credentials.Chain

	if cfg.StaticUsers != "" {
		static, err := credentials.ParseStatic(cfg.StaticUsers)
		if err != nil {
			return nil, err
		}
		chain = append(chain, static)
	}
	if infra.DB != nil {
		chain = append(chain, credentials.NewService(infra.DB))
	}

	if len(chain) == 0 {
		return nil, fmt.Errorf("app: password clients need STATIC_USERS or DATABASE_DSN")
	}
	return chain, nil
}
