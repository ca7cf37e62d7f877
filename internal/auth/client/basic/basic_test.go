package basic

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authbridge/internal/auth/client/clienttest"
	"authbridge/internal/auth/credentials"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	hash, _, err := credentials.HashPassword("s3cret-pass")
	require.NoError(t, err)
	a, err := credentials.ParseStatic("jane@example.com:" + hash)
	require.NoError(t, err)
	return New("test", "http://localhost/cb?client_name=basic", a)
}

func basicHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestChallengeWithoutHeader(t *testing.T) {
	c := newTestClient(t)

	res, err := c.ExtractCredentials(context.Background(), clienttest.New())
	require.NoError(t, err)
	require.NotNil(t, res.Action)
	assert.Equal(t, http.StatusUnauthorized, res.Action.Code)
	assert.Equal(t, `Basic realm="test"`, res.Action.Header.Get("WWW-Authenticate"))
}

func TestChallengeOnWrongPassword(t *testing.T) {
	c := newTestClient(t)
	wc := clienttest.New()
	wc.Header.Set("Authorization", basicHeader("jane@example.com", "nope"))

	res, err := c.ExtractCredentials(context.Background(), wc)
	require.NoError(t, err)
	require.NotNil(t, res.Action)
	assert.Equal(t, http.StatusUnauthorized, res.Action.Code)
}

func TestValidHeader(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	wc := clienttest.New()
	wc.Header.Set("Authorization", basicHeader("jane@example.com", "s3cret-pass"))

	res, err := c.ExtractCredentials(ctx, wc)
	require.NoError(t, err)
	require.Nil(t, res.Action)

	p, err := c.Profile(ctx, res.Credentials, wc)
	require.NoError(t, err)
	assert.Equal(t, "basic#jane@example.com", p.TypedID())
}

func TestParseHeader(t *testing.T) {
	u, p, ok := parseHeader(basicHeader("a", "b:c"))
	require.True(t, ok)
	assert.Equal(t, "a", u)
	assert.Equal(t, "b:c", p)

	_, _, ok = parseHeader("Bearer xyz")
	assert.False(t, ok)

	_, _, ok = parseHeader("Basic !!!")
	assert.False(t, ok)
}
