// Package webctx holds what lives for exactly one request: the web context
// handed to identity clients and the memo slots that keep the flow from
// recomputing the client, credentials, profile and session id.
package webctx

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"authbridge/internal/auth"
	"authbridge/internal/auth/client"
	"authbridge/internal/session"
)

type slot[T any] struct {
	set bool
	val T
}

// get returns the memoized value, computing it on first use. Errors are not
// memoized; a later call computes again.
func (s *slot[T]) get(compute func() (T, error)) (T, error) {
	if s.set {
		return s.val, nil
	}
	v, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	s.val, s.set = v, true
	return v, nil
}

// Scope is the request-scoped state. Each slot is written at most once;
// later reads return the first value. A Scope is not safe for concurrent
// use, it belongs to the goroutine serving the request.
type Scope struct {
	Request *http.Request
	Writer  http.ResponseWriter
	Session session.Values

	webContext  slot[*Context]
	client      slot[client.Client]
	credentials slot[client.CredentialsResult]
	profile     slot[*auth.Profile]
	sessionID   slot[string]
}

func NewScope(r *http.Request, w http.ResponseWriter, values session.Values) *Scope {
	return &Scope{Request: r, Writer: w, Session: values}
}

func (s *Scope) WebContext(compute func() (*Context, error)) (*Context, error) {
	return s.webContext.get(compute)
}

func (s *Scope) Client(compute func() (client.Client, error)) (client.Client, error) {
	return s.client.get(compute)
}

func (s *Scope) Credentials(compute func() (client.CredentialsResult, error)) (client.CredentialsResult, error) {
	return s.credentials.get(compute)
}

func (s *Scope) Profile(compute func() (*auth.Profile, error)) (*auth.Profile, error) {
	return s.profile.get(compute)
}

func (s *Scope) SessionID(compute func() (string, error)) (string, error) {
	return s.sessionID.get(compute)
}

type scopeContextKey struct{}

// WithScope returns a copy of ctx carrying s.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// ScopeFromContext returns the Scope attached by the middleware.
func ScopeFromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeContextKey{}).(*Scope)
	return s, ok
}

func attach(c *gin.Context) *Scope {
	s := NewScope(c.Request, c.Writer, session.FromGin(c))
	c.Request = c.Request.WithContext(WithScope(c.Request.Context(), s))
	s.Request = c.Request
	return s
}

// Middleware attaches a fresh Scope to every request, both to the gin
// context and to the request context for net/http middleware. It must run
// after the session middleware.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		attach(c)
		c.Next()
	}
}

// FromGin returns the request's Scope, creating one when the middleware
// did not run.
func FromGin(c *gin.Context) *Scope {
	if s, ok := ScopeFromContext(c.Request.Context()); ok {
		return s
	}
	return attach(c)
}
