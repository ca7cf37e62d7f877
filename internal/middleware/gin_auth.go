package middleware

import (
	"net/http"

	"authbridge/internal/auth"

	"github.com/gin-gonic/gin"
)

// GinRequireProfile adapts the net/http AuthMiddleware to Gin.
func GinRequireProfile(a *AuthMiddleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		// Wrap Gin request with net/http auth middleware
		handler := a.RequireProfile(next)

		// Execute middleware chain
		handler.ServeHTTP(c.Writer, c.Request)

		// If auth middleware already handled the response, stop Gin chain
		if c.Writer.Written() {
			c.Abort()
			return
		}
	}
}

// ProfileFromGin returns the profile attached by GinRequireProfile.
func ProfileFromGin(c *gin.Context) (*auth.Profile, bool) {
	return ProfileFromContext(c.Request.Context())
}
