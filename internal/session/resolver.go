package session

import (
	"fmt"
	"net/http"
	"strings"

	"authbridge/internal/logger"
)

const idSeparator = ":"

// Values is the subset of the framework session the resolver needs.
// sessions.Session from gin-contrib/sessions satisfies it.
type Values interface {
	Get(key interface{}) interface{}
	Set(key interface{}, val interface{})
	Delete(key interface{})
	Save() error
}

// Config names where a session id may be found.
type Config struct {
	// Header is the trusted request header. A non-empty first value is the
	// session id for that request.
	Header string

	// Key is the entry in the cookie-backed session holding the id.
	Key string
}

// Resolver derives the session identifier of a request. The trusted header
// always wins over the cookie session so stateless callers can override a
// browser cookie.
type Resolver struct {
	cfg      Config
	generate func() (string, error)
	onCreate func()
}

func NewResolver(cfg Config) *Resolver {
	return &Resolver{
		cfg:      cfg,
		generate: GenerateID,
	}
}

// OnCreate registers a hook run each time a new id is generated.
func (r *Resolver) OnCreate(fn func()) {
	r.onCreate = fn
}

func (r *Resolver) fromHeader(headers http.Header) string {
	if r.cfg.Header == "" || headers == nil {
		return ""
	}
	values := headers.Values(r.cfg.Header)
	if len(values) == 0 {
		return ""
	}
	// ids are joined into cache keys with ":"; one containing it could
	// address another session's entries
	if strings.Contains(values[0], idSeparator) {
		logger.Warn("session id header rejected", map[string]any{
			"header": r.cfg.Header,
		})
		return ""
	}
	return values[0]
}

func (r *Resolver) fromSession(values Values) string {
	if values == nil {
		return ""
	}
	id, _ := values.Get(r.cfg.Key).(string)
	return id
}

// ResolveExisting returns the session id carried by the request, or "" when
// neither the header nor the session holds one. It never generates.
func (r *Resolver) ResolveExisting(headers http.Header, values Values) string {
	if id := r.fromHeader(headers); id != "" {
		logger.Debug("session id found in header", map[string]any{
			"header": r.cfg.Header,
		})
		return id
	}
	return r.fromSession(values)
}

// ResolveOrCreate behaves like ResolveExisting, but when no id is found it
// generates one and stores it in values. The header path never writes.
func (r *Resolver) ResolveOrCreate(headers http.Header, values Values) (string, error) {
	if id := r.ResolveExisting(headers, values); id != "" {
		return id, nil
	}
	if values == nil {
		return "", fmt.Errorf("session: no session to store a new id in")
	}

	id, err := r.generate()
	if err != nil {
		return "", err
	}

	values.Set(r.cfg.Key, id)
	if err := values.Save(); err != nil {
		return "", fmt.Errorf("session: failed to save id: %w", err)
	}

	if r.onCreate != nil {
		r.onCreate()
	}
	logger.Debug("session id created", map[string]any{"session_id": id})

	return id, nil
}

// Clear drops the id from the cookie session. Header-based callers are
// stateless and have nothing to clear.
func (r *Resolver) Clear(values Values) error {
	if values == nil {
		return nil
	}
	values.Delete(r.cfg.Key)
	if err := values.Save(); err != nil {
		return fmt.Errorf("session: failed to clear id: %w", err)
	}
	return nil
}
