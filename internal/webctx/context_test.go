package webctx

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authbridge/internal/cache"
	"authbridge/internal/storage"
)

func newStore() *storage.Store {
	return storage.New(cache.NewMemory(), storage.Config{SessionTTL: time.Hour})
}

func TestRequestParametersQueryWins(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/cb?a=query&q=1", strings.NewReader("a=form&f=2"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	wc := NewContext(r, httptest.NewRecorder(), newStore(), func() string { return "" })

	assert.Equal(t, "query", wc.RequestParameter("a"))
	assert.Equal(t, "1", wc.RequestParameter("q"))
	assert.Equal(t, "2", wc.RequestParameter("f"))
	assert.Len(t, wc.RequestParameters(), 3)
}

func TestServerNameAndPort(t *testing.T) {
	tests := []struct {
		name   string
		host   string
		tls    bool
		fwd    string
		server string
		port   int
		scheme string
	}{
		{"explicit port", "app.example.com:8443", false, "", "app.example.com", 8443, "http"},
		{"plain http", "app.example.com", false, "", "app.example.com", 80, "http"},
		{"tls", "app.example.com", true, "", "app.example.com", 443, "https"},
		{"forwarded proto", "app.example.com", false, "https", "app.example.com", 443, "https"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/x?y=1", nil)
			r.Host = tt.host
			if tt.tls {
				r.TLS = &tls.ConnectionState{}
			}
			if tt.fwd != "" {
				r.Header.Set("X-Forwarded-Proto", tt.fwd)
			}

			wc := NewContext(r, httptest.NewRecorder(), newStore(), func() string { return "" })
			assert.Equal(t, tt.server, wc.ServerName())
			assert.Equal(t, tt.port, wc.ServerPort())
			assert.Equal(t, tt.scheme, wc.Scheme())
			assert.Equal(t, tt.scheme+"://"+tt.host+"/x?y=1", wc.FullRequestURL())
		})
	}
}

func TestSessionAttributes(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	sid := ""
	wc := NewContext(r, httptest.NewRecorder(), store, func() string { return sid })

	// without a session writes are dropped
	require.NoError(t, wc.SetSessionAttribute(ctx, "k", "v"))
	got, err := wc.SessionAttribute(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, got)

	sid = "sid-1"
	require.NoError(t, wc.SetSessionAttribute(ctx, "k", "v"))
	got, err = wc.SessionAttribute(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	stored, err := store.GetAttribute(ctx, "sid-1", "k")
	require.NoError(t, err)
	assert.Equal(t, "v", stored)
}

func TestRequestAccessors(t *testing.T) {
	r := httptest.NewRequest(http.MethodPut, "/", nil)
	r.Header.Set("Authorization", "Basic abc")
	w := httptest.NewRecorder()

	wc := NewContext(r, w, newStore(), func() string { return "" })
	wc.SetResponseHeader("X-Test", "1")

	assert.Equal(t, http.MethodPut, wc.RequestMethod())
	assert.Equal(t, "Basic abc", wc.RequestHeader("Authorization"))
	assert.Equal(t, "1", w.Header().Get("X-Test"))
	assert.Same(t, r, wc.Request())
}
