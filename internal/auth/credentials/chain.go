package credentials

import (
	"context"
	"errors"
)

// Chain tries each authenticator in order. Only ErrInvalidCredentials moves
// on to the next one; any other error stops the chain.
type Chain []Authenticator

func (c Chain) Authenticate(ctx context.Context, username, password string) (Account, error) {
	for _, a := range c {
		acct, err := a.Authenticate(ctx, username, password)
		if errors.Is(err, ErrInvalidCredentials) {
			continue
		}
		return acct, err
	}
	return Account{}, ErrInvalidCredentials
}
