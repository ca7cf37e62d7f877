package handler

import (
	"context"
	"errors"
	"net/http"

	"authbridge/internal/auth"
	"authbridge/internal/auth/credentials"
	"authbridge/internal/webctx"

	"github.com/gin-gonic/gin"
)

// Registrar creates password accounts. credentials.Service implements it.
type Registrar interface {
	Register(ctx context.Context, email, password string) (userID string, err error)
}

// registeredClient is the client name given to accounts signed in right
// after registration; they log in through the form client afterwards.
const registeredClient = "form"

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID, err := h.registrar.Register(
		c.Request.Context(),
		req.Email,
		req.Password,
	)

	if err != nil {
		switch {
		case errors.Is(err, credentials.ErrAlreadyRegistered):
			c.JSON(http.StatusConflict, gin.H{"error": "account already exists"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	profile := &auth.Profile{
		ID:          req.Email,
		ClientName:  registeredClient,
		UserID:      userID,
		Email:       req.Email,
		DisplayName: req.Email,
	}

	if err := h.flow.SignIn(c.Request.Context(), webctx.FromGin(c), profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "registered"})
}
