package session

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// CookieOptions defines how the session cookie is issued.
type CookieOptions struct {
	Name     string
	Path     string
	Domain   string
	MaxAge   int // seconds; 0 makes it a browser-session cookie
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
}

// normalize applies safe defaults without breaking callers
func (o CookieOptions) normalize() CookieOptions {
	if o.Name == "" {
		o.Name = "authbridge"
	}
	if o.Path == "" {
		o.Path = "/"
	}
	if !o.HttpOnly {
		o.HttpOnly = true
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// Middleware installs the signed cookie session the resolver reads and
// writes. secret authenticates the cookie; it must be stable across
// restarts or every browser session is lost.
func Middleware(secret []byte, opts CookieOptions) gin.HandlerFunc {
	opts = opts.normalize()

	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     opts.Path,
		Domain:   opts.Domain,
		MaxAge:   opts.MaxAge,
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})

	return sessions.Sessions(opts.Name, store)
}

// FromGin returns the cookie session of the request.
func FromGin(c *gin.Context) Values {
	return sessions.Default(c)
}
