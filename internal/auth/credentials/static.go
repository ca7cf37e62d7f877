package credentials

import (
	"context"
	"fmt"
	"strings"
)

// StaticAuthenticator checks passwords against a fixed set of bcrypt
// hashes. It backs the form and basic clients when no database is
// configured.
type StaticAuthenticator struct {
	hashes map[string]string // lower-cased email -> bcrypt hash
}

// ParseStatic reads "email:hash,email:hash". Hashes contain no commas, and
// the email ends at the first colon.
func ParseStatic(users string) (*StaticAuthenticator, error) {
	a := &StaticAuthenticator{hashes: map[string]string{}}
	for _, entry := range strings.Split(users, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		email, hash, ok := strings.Cut(entry, ":")
		if !ok || email == "" || hash == "" {
			return nil, fmt.Errorf("credentials: malformed static user %q", entry)
		}
		a.hashes[strings.ToLower(email)] = hash
	}
	return a, nil
}

// Add registers email with an already computed bcrypt hash.
func (a *StaticAuthenticator) Add(email, hash string) {
	a.hashes[strings.ToLower(email)] = hash
}

func (a *StaticAuthenticator) Authenticate(_ context.Context, email, password string) (Account, error) {
	hash, ok := a.hashes[strings.ToLower(email)]
	if !ok {
		return Account{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(hash, password); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return Account{UserID: strings.ToLower(email), Email: email}, nil
}
