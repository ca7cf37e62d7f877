package handler

import (
	"net/http"

	"authbridge/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Profile returns the authenticated profile. It must run behind the auth
// middleware.
func Profile(c *gin.Context) {
	p, ok := middleware.ProfileFromGin(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, p)
}
