package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppPort  string `envconfig:"APP_PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Session identifier resolution.
	SessionHeader     string `envconfig:"SESSION_HEADER" default:"X-Session-Id"`
	SessionCookieName string `envconfig:"SESSION_COOKIE_NAME" default:"authbridge"`
	SessionKey        string `envconfig:"SESSION_KEY" default:"sessionId"`
	SessionSecret     string `envconfig:"SESSION_SECRET" required:"true"`
	SessionSecure     bool   `envconfig:"SESSION_SECURE" default:"true"`

	// Storage. Timeouts are in seconds.
	CacheBackend            string `envconfig:"CACHE_BACKEND" default:"memory"`
	CacheKeyPrefix          string `envconfig:"CACHE_KEY_PREFIX" default:""`
	SessionTimeout          int    `envconfig:"SESSION_TIMEOUT" default:"3600"`
	ProfileTimeout          int    `envconfig:"PROFILE_TIMEOUT" default:"3600"`
	ClearRequestedURLOnRead bool   `envconfig:"CLEAR_REQUESTED_URL_ON_READ" default:"false"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Postgres is optional; form/basic clients and identity linking need it.
	DatabaseDSN string `envconfig:"DATABASE_DSN" default:""`

	// Callback flow.
	CallbackURL         string `envconfig:"CALLBACK_URL" default:"http://localhost:8080/auth/callback"`
	ClientNameParameter string `envconfig:"CLIENT_NAME_PARAMETER" default:"client_name"`
	DefaultSuccessURL   string `envconfig:"DEFAULT_SUCCESS_URL" default:"/"`
	SuccessURLPattern   string `envconfig:"SUCCESS_URL_PATTERN" default:""`
	LogoutURLParameter  string `envconfig:"LOGOUT_URL_PARAMETER" default:"url"`
	LogoutURLPattern    string `envconfig:"LOGOUT_URL_PATTERN" default:"/.*"`
	DefaultLogoutURL    string `envconfig:"DEFAULT_LOGOUT_URL" default:"/"`

	// LoginClient, when set, sends anonymous requests to protected routes
	// to that client instead of answering 401.
	LoginClient string `envconfig:"LOGIN_CLIENT" default:""`

	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID" default:""`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET" default:""`

	KeycloakIssuer        string `envconfig:"KEYCLOAK_ISSUER" default:""`
	KeycloakClientID      string `envconfig:"KEYCLOAK_CLIENT_ID" default:""`
	KeycloakPublicBaseURL string `envconfig:"KEYCLOAK_PUBLIC_BASE_URL" default:""`

	FormClientEnabled  bool   `envconfig:"FORM_CLIENT_ENABLED" default:"false"`
	FormLoginURL       string `envconfig:"FORM_LOGIN_URL" default:""`
	BasicClientEnabled bool   `envconfig:"BASIC_CLIENT_ENABLED" default:"false"`
	BasicRealm         string `envconfig:"BASIC_REALM" default:"authbridge"`

	// Comma-separated "email:bcrypt-hash" pairs checked before the database.
	StaticUsers string `envconfig:"STATIC_USERS" default:""`
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTimeout) * time.Second
}

func (c Config) ProfileTTL() time.Duration {
	return time.Duration(c.ProfileTimeout) * time.Second
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: process env: %w", err)
	}
	return cfg, nil
}

func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
