package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authbridge/internal/auth"
	"authbridge/internal/auth/client"
	"authbridge/internal/auth/flow"
	"authbridge/internal/cache"
	"authbridge/internal/session"
	"authbridge/internal/session/sessiontest"
	"authbridge/internal/storage"
	"authbridge/internal/webctx"
)

type loginClient struct{}

func (loginClient) Name() string { return "idp" }

func (loginClient) RedirectAction(context.Context, client.WebContext) (client.RedirectAction, error) {
	return client.RedirectAction{Location: "https://idp.example.com/auth"}, nil
}

func (loginClient) ExtractCredentials(context.Context, client.WebContext) (client.CredentialsResult, error) {
	return client.CredentialsResult{}, nil
}

func (loginClient) Profile(context.Context, client.Credentials, client.WebContext) (*auth.Profile, error) {
	return nil, nil
}

func newCoordinator(t *testing.T) (*flow.Coordinator, *storage.Store) {
	t.Helper()
	store := storage.New(cache.NewMemory(), storage.Config{SessionTTL: time.Hour, ProfileTTL: time.Hour})
	sessions := session.NewResolver(session.Config{Header: "X-Session-Id", Key: "sessionId"})
	coord, err := flow.New(flow.Config{}, client.NewRegistry("client_name", loginClient{}), sessions, store)
	require.NoError(t, err)
	return coord, store
}

func serve(h http.Handler, r *http.Request, values session.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	scope := webctx.NewScope(r, w, values)
	h.ServeHTTP(w, r.WithContext(webctx.WithScope(r.Context(), scope)))
	return w
}

func TestRequireProfileAttachesProfile(t *testing.T) {
	coord, store := newCoordinator(t)
	require.NoError(t, store.SaveProfile(context.Background(), "sid-1", &auth.Profile{ID: "jane", ClientName: "idp"}, 0))

	var got *auth.Profile
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ProfileFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	r := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	r.Header.Set("X-Session-Id", "sid-1")
	w := serve(NewAuthMiddleware(coord).RequireProfile(next), r, sessiontest.New())

	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, "jane", got.ID)
}

func TestRequireProfileRejectsAnonymous(t *testing.T) {
	coord, _ := newCoordinator(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next must not run")
	})

	w := serve(NewAuthMiddleware(coord).RequireProfile(next), httptest.NewRequest(http.MethodGet, "/api/profile", nil), sessiontest.New())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireProfileRedirectsToLoginClient(t *testing.T) {
	coord, store := newCoordinator(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next must not run")
	})

	values := sessiontest.New()
	r := httptest.NewRequest(http.MethodGet, "http://app.example.com/reports", nil)
	w := serve(NewAuthMiddleware(coord).WithLoginClient("idp").RequireProfile(next), r, values)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://idp.example.com/auth", w.Header().Get("Location"))

	sid, _ := values.Get("sessionId").(string)
	require.NotEmpty(t, sid)
	saved, err := store.GetRequestedURL(context.Background(), sid, "idp")
	require.NoError(t, err)
	assert.Equal(t, "http://app.example.com/reports", saved)
}

func TestRequireProfileWithoutScope(t *testing.T) {
	coord, _ := newCoordinator(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	NewAuthMiddleware(coord).RequireProfile(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGinRequireProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	coord, store := newCoordinator(t)
	require.NoError(t, store.SaveProfile(context.Background(), "sid-1", &auth.Profile{ID: "jane"}, 0))

	r := gin.New()
	r.Use(session.Middleware([]byte("0123456789abcdef0123456789abcdef"), session.CookieOptions{}))
	r.Use(webctx.Middleware())
	r.Use(GinRequireProfile(NewAuthMiddleware(coord)))
	r.GET("/me", func(c *gin.Context) {
		p, ok := ProfileFromGin(c)
		require.True(t, ok)
		c.String(http.StatusOK, p.ID)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-Session-Id", "sid-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jane", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
