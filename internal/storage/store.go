// Package storage keeps per-session state in a shared keyed cache: the
// authenticated profile, the URL to return to after login, and arbitrary
// session attributes used by identity clients.
//
// Every key is derived from the session id as
//
//	[prefix ":"] sessionID [":" suffix]
//
// so several deployments can share one cache. An empty session id turns
// every operation into a no-op: a visitor without a session simply never
// has anything stored.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"authbridge/internal/auth"
	"authbridge/internal/cache"
	"authbridge/internal/logger"
)

const (
	separator       = ":"
	requestedURLKey = "requestedUrl"
)

type Config struct {
	// KeyPrefix namespaces all keys when not blank.
	KeyPrefix string

	// SessionTTL bounds requested URLs and session attributes.
	SessionTTL time.Duration

	// ProfileTTL is used by SaveProfile when the caller passes no ttl.
	ProfileTTL time.Duration

	// ClearRequestedURLOnRead deletes the requested URL once it was read.
	ClearRequestedURLOnRead bool
}

type Store struct {
	cache cache.Cache
	cfg   Config
}

func New(c cache.Cache, cfg Config) *Store {
	return &Store{cache: c, cfg: cfg}
}

// CacheKey derives the cache key for sessionID and optional suffix parts.
func (s *Store) CacheKey(sessionID string, suffix ...string) string {
	parts := make([]string, 0, len(suffix)+2)
	if strings.TrimSpace(s.cfg.KeyPrefix) != "" {
		parts = append(parts, s.cfg.KeyPrefix)
	}
	parts = append(parts, sessionID)
	parts = append(parts, suffix...)
	return strings.Join(parts, separator)
}

// GetProfile returns the stored profile or nil when there is none.
func (s *Store) GetProfile(ctx context.Context, sessionID string) (*auth.Profile, error) {
	if sessionID == "" {
		return nil, nil
	}

	data, ok, err := s.cache.Get(ctx, s.CacheKey(sessionID))
	if err != nil || !ok {
		return nil, err
	}

	var p auth.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("storage: failed to unmarshal profile: %w", err)
	}
	return &p, nil
}

// SaveProfile stores profile under sessionID. A nil profile removes any
// stored one. A ttl <= 0 falls back to the configured profile TTL.
func (s *Store) SaveProfile(ctx context.Context, sessionID string, profile *auth.Profile, ttl time.Duration) error {
	if sessionID == "" {
		return nil
	}
	if profile == nil {
		return s.RemoveProfile(ctx, sessionID)
	}
	if ttl <= 0 {
		ttl = s.cfg.ProfileTTL
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("storage: failed to marshal profile: %w", err)
	}
	return s.cache.Set(ctx, s.CacheKey(sessionID), data, ttl)
}

// RemoveProfile deletes the stored profile. It is idempotent.
func (s *Store) RemoveProfile(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.cache.Remove(ctx, s.CacheKey(sessionID))
}

func (s *Store) requestedURLKey(sessionID, clientName string) string {
	return s.CacheKey(sessionID, clientName, requestedURLKey)
}

// SaveRequestedURL remembers where to send the user once clientName has
// authenticated them. Save and read use the same client-scoped key.
func (s *Store) SaveRequestedURL(ctx context.Context, sessionID, clientName, url string) error {
	if sessionID == "" {
		return nil
	}
	key := s.requestedURLKey(sessionID, clientName)
	if url == "" {
		return s.cache.Remove(ctx, key)
	}
	return s.cache.Set(ctx, key, []byte(url), s.cfg.SessionTTL)
}

// GetRequestedURL returns the URL saved for clientName, or "".
func (s *Store) GetRequestedURL(ctx context.Context, sessionID, clientName string) (string, error) {
	if sessionID == "" {
		return "", nil
	}
	key := s.requestedURLKey(sessionID, clientName)

	data, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return "", err
	}

	if s.cfg.ClearRequestedURLOnRead {
		if err := s.cache.Remove(ctx, key); err != nil {
			logger.Warn("failed to clear requested url", map[string]any{
				"client": clientName,
				"error":  err.Error(),
			})
		}
	}
	return string(data), nil
}

// GetAttribute returns a session attribute, or "" when absent.
func (s *Store) GetAttribute(ctx context.Context, sessionID, key string) (string, error) {
	if sessionID == "" {
		return "", nil
	}
	data, ok, err := s.cache.Get(ctx, s.CacheKey(sessionID, key))
	if err != nil || !ok {
		return "", err
	}
	return string(data), nil
}

// SaveAttribute stores a session attribute; an empty value removes it.
func (s *Store) SaveAttribute(ctx context.Context, sessionID, key, value string) error {
	if sessionID == "" {
		return nil
	}
	if value == "" {
		return s.RemoveAttribute(ctx, sessionID, key)
	}
	return s.cache.Set(ctx, s.CacheKey(sessionID, key), []byte(value), s.cfg.SessionTTL)
}

func (s *Store) RemoveAttribute(ctx context.Context, sessionID, key string) error {
	if sessionID == "" {
		return nil
	}
	return s.cache.Remove(ctx, s.CacheKey(sessionID, key))
}
