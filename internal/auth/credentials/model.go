package credentials

import (
	"context"
	"time"
)

type Credential struct {
	ID           string
	UserID       string
	PasswordHash string
	HashVersion  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Account is what a successful password check yields.
type Account struct {
	UserID        string
	Email         string
	EmailVerified bool
}

// Authenticator checks a username/password pair. Form and basic clients
// depend on it; Service is the postgres implementation.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (Account, error)
}
