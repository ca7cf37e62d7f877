package handler

import (
	"net/http"

	"authbridge/internal/logger"
	"authbridge/internal/webctx"

	"github.com/gin-gonic/gin"
)

func (h *Handler) doLogout(c *gin.Context) bool {
	if err := h.flow.Logout(c.Request.Context(), webctx.FromGin(c)); err != nil {
		logger.Error("logout failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return false
	}

	logger.Info("logout", map[string]any{"ip": c.ClientIP()})
	return true
}

// logout is idempotent: without a session it still answers 200.
func (h *Handler) logout(c *gin.Context) {
	if !h.doLogout(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

// logoutRedirect only follows targets the logout pattern allows.
func (h *Handler) logoutRedirect(c *gin.Context) {
	if !h.doLogout(c) {
		return
	}
	c.Redirect(http.StatusFound, h.flow.LogoutRedirectTarget(c.Request.URL.Query()))
}
