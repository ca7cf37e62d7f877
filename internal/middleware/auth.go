package middleware

import (
	"context"
	"net/http"

	"authbridge/internal/auth"
	"authbridge/internal/auth/flow"
	"authbridge/internal/logger"
	"authbridge/internal/webctx"
)

// unexported, collision-proof context key
type profileContextKeyType struct{}

var profileKey = profileContextKeyType{}

// ProfileFromContext extracts the authenticated profile from context.
func ProfileFromContext(ctx context.Context) (*auth.Profile, bool) {
	p, ok := ctx.Value(profileKey).(*auth.Profile)
	return p, ok && p != nil
}

type AuthMiddleware struct {
	flow        *flow.Coordinator
	loginClient string
}

func NewAuthMiddleware(coordinator *flow.Coordinator) *AuthMiddleware {
	return &AuthMiddleware{flow: coordinator}
}

// WithLoginClient sends anonymous requests to clientName instead of
// answering 401. The requested URL is remembered so the callback returns
// the user to it.
func (a *AuthMiddleware) WithLoginClient(clientName string) *AuthMiddleware {
	a.loginClient = clientName
	return a
}

// RequireProfile needs the request scope attached by webctx.Middleware.
func (a *AuthMiddleware) RequireProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Request scope
		scope, ok := webctx.ScopeFromContext(r.Context())
		if !ok {
			logger.Error("auth middleware used without request scope", nil)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		// 2. Stored profile
		profile, err := a.flow.UserProfile(r.Context(), scope)
		if err != nil {
			logger.Error("profile lookup failed", map[string]any{"error": err.Error()})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		// 3. Anonymous: log in or reject
		if profile == nil {
			if a.loginClient != "" {
				action, err := a.flow.RedirectAction(r.Context(), scope, a.loginClient, "")
				if err == nil {
					http.Redirect(w, r, action.Location, http.StatusFound)
					return
				}
				logger.Error("login redirect failed", map[string]any{
					"client": a.loginClient,
					"error":  err.Error(),
				})
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// 4. Attach profile to context
		ctx := context.WithValue(r.Context(), profileKey, profile)

		// 5. Continue request
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
