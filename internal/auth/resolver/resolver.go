package resolver

import (
	"context"

	"authbridge/internal/auth"
)

// Resolver determines which internal user an external profile belongs to.
// It is the ONLY place where profile-to-user mapping logic lives.
type Resolver interface {
	Resolve(
		ctx context.Context,
		profile *auth.Profile,
	) (userID string, err error)
}
