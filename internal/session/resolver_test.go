package session

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapValues struct {
	m     map[interface{}]interface{}
	saves int
	err   error
}

func newMapValues() *mapValues {
	return &mapValues{m: map[interface{}]interface{}{}}
}

func (v *mapValues) Get(key interface{}) interface{}      { return v.m[key] }
func (v *mapValues) Set(key interface{}, val interface{}) { v.m[key] = val }
func (v *mapValues) Delete(key interface{})               { delete(v.m, key) }
func (v *mapValues) Save() error {
	v.saves++
	return v.err
}

func testResolver() *Resolver {
	return NewResolver(Config{Header: "X-Session-Id", Key: "sessionId"})
}

func TestResolveOrCreateHeaderWins(t *testing.T) {
	r := testResolver()
	values := newMapValues()
	values.Set("sessionId", "from-cookie")

	headers := http.Header{}
	headers.Set("X-Session-Id", "from-header")

	id, err := r.ResolveOrCreate(headers, values)
	require.NoError(t, err)
	assert.Equal(t, "from-header", id)
	assert.Equal(t, "from-cookie", values.Get("sessionId"))
	assert.Zero(t, values.saves)
}

func TestResolveOrCreateUsesFirstHeaderValue(t *testing.T) {
	r := testResolver()

	headers := http.Header{}
	headers.Add("X-Session-Id", "first")
	headers.Add("X-Session-Id", "second")

	id, err := r.ResolveOrCreate(headers, newMapValues())
	require.NoError(t, err)
	assert.Equal(t, "first", id)
}

func TestResolveOrCreateEmptyHeaderFallsBack(t *testing.T) {
	r := testResolver()
	values := newMapValues()
	values.Set("sessionId", "from-cookie")

	headers := http.Header{}
	headers.Set("X-Session-Id", "")

	id, err := r.ResolveOrCreate(headers, values)
	require.NoError(t, err)
	assert.Equal(t, "from-cookie", id)
}

func TestResolveOrCreateGeneratesOnce(t *testing.T) {
	r := testResolver()
	values := newMapValues()

	created := 0
	r.OnCreate(func() { created++ })

	first, err := r.ResolveOrCreate(nil, values)
	require.NoError(t, err)
	_, err = uuid.Parse(first)
	require.NoError(t, err)

	second, err := r.ResolveOrCreate(nil, values)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first, values.Get("sessionId"))
	assert.Equal(t, 1, values.saves)
	assert.Equal(t, 1, created)
}

func TestResolveOrCreateSaveError(t *testing.T) {
	r := testResolver()
	values := newMapValues()
	values.err = errors.New("boom")

	_, err := r.ResolveOrCreate(nil, values)
	require.Error(t, err)
}

func TestResolveOrCreateWithoutSession(t *testing.T) {
	r := testResolver()

	_, err := r.ResolveOrCreate(nil, nil)
	require.Error(t, err)
}

func TestResolveExistingNeverGenerates(t *testing.T) {
	r := testResolver()
	values := newMapValues()

	assert.Empty(t, r.ResolveExisting(nil, values))
	assert.Empty(t, values.m)

	values.Set("sessionId", "abc")
	assert.Equal(t, "abc", r.ResolveExisting(http.Header{}, values))
}

func TestClear(t *testing.T) {
	r := testResolver()
	values := newMapValues()
	values.Set("sessionId", "abc")

	require.NoError(t, r.Clear(values))
	assert.Empty(t, r.ResolveExisting(nil, values))

	headers := http.Header{}
	headers.Set("X-Session-Id", "header-id")
	assert.Equal(t, "header-id", r.ResolveExisting(headers, values))
}

func TestGenerateIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id, err := GenerateID()
		require.NoError(t, err)
		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		require.Equal(t, uuid.Version(4), parsed.Version())
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestResolveIgnoresHeaderWithKeySeparator(t *testing.T) {
	r := testResolver()
	values := newMapValues()
	values.Set("sessionId", "from-cookie")

	headers := http.Header{}
	headers.Set("X-Session-Id", "other:oidc:google:state")

	assert.Equal(t, "from-cookie", r.ResolveExisting(headers, values))

	id, err := r.ResolveOrCreate(headers, newMapValues())
	require.NoError(t, err)
	assert.NotContains(t, id, ":")
}
