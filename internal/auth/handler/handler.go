package handler

import (
	"errors"
	"net/http"

	"authbridge/internal/auth/client"
	"authbridge/internal/auth/flow"
	"authbridge/internal/logger"
	"authbridge/internal/webctx"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	flow      *flow.Coordinator
	registrar Registrar
}

// NewHandler wires the auth routes. registrar may be nil, in which case
// registration is not offered.
func NewHandler(coordinator *flow.Coordinator, registrar Registrar) *Handler {
	return &Handler{
		flow:      coordinator,
		registrar: registrar,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/auth/login/:client", h.login)
	r.GET("/auth/callback", h.callback)
	r.POST("/auth/callback", h.callback)
	r.GET("/auth/logout", h.logout)
	r.GET("/auth/logout/redirect", h.logoutRedirect)
	if h.registrar != nil {
		r.POST("/auth/register", h.Register)
	}

	for _, route := range r.Routes() {
		logger.Debug("route registered", map[string]any{
			"method": route.Method,
			"path":   route.Path,
		})
	}
}

func (h *Handler) login(c *gin.Context) {
	clientName := c.Param("client")

	target := c.Query("target")
	if target == "" {
		target = h.flow.DefaultSuccessURL()
	}

	action, err := h.flow.RedirectAction(c.Request.Context(), webctx.FromGin(c), clientName, target)
	if err != nil {
		h.fail(c, "login", err)
		return
	}

	c.Redirect(http.StatusFound, action.Location)
}

func (h *Handler) callback(c *gin.Context) {
	out, err := h.flow.Callback(c.Request.Context(), webctx.FromGin(c))
	if err != nil {
		h.fail(c, "callback", err)
		return
	}

	switch out.Kind {
	case flow.OutcomeActionRequired:
		renderAction(c, out.Action)
	case flow.OutcomeFailure:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": out.Failure.Message,
		})
	default:
		c.Redirect(http.StatusFound, out.RedirectURL)
	}
}

// renderAction writes the response an identity client asked for, as is.
func renderAction(c *gin.Context, a *client.HTTPAction) {
	for name, values := range a.Header {
		for _, v := range values {
			c.Writer.Header().Add(name, v)
		}
	}

	if a.Body == "" {
		c.Status(a.Code)
		return
	}
	c.Data(a.Code, a.Header.Get("Content-Type"), []byte(a.Body))
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, client.ErrUnknownClient), errors.Is(err, client.ErrMissingClientName):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown identity client",
		})
	case errors.Is(err, flow.ErrMissingClientConfiguration), errors.Is(err, flow.ErrStorage):
		logger.Error(op+" failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "authentication unavailable",
		})
	default:
		logger.Warn(op+" rejected", map[string]any{"error": err.Error()})
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
	}
}
