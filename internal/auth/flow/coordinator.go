// Package flow drives authentication through the identity clients: it
// starts the redirect to a client, completes the callback, exposes the
// stored profile and logs users out.
//
// The callback moves through NEW, CREDENTIALS_PENDING, then either
// PROFILE_RESOLVED or ACTION_REQUIRED, and ends in DONE once the web layer
// has rendered the Outcome.
package flow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"authbridge/internal/auth"
	"authbridge/internal/auth/client"
	"authbridge/internal/auth/resolver"
	"authbridge/internal/logger"
	"authbridge/internal/metrics"
	"authbridge/internal/session"
	"authbridge/internal/storage"
	"authbridge/internal/webctx"
)

var (
	// ErrMissingClientConfiguration is returned when no identity client is
	// configured at all.
	ErrMissingClientConfiguration = errors.New("flow: no identity clients configured")

	// ErrStorage wraps failures of the session or profile store.
	ErrStorage = errors.New("flow: storage failure")

	errNoSession = errors.New("flow: no session id")
)

type Config struct {
	// DefaultSuccessURL is used after a callback when no requested URL
	// was saved.
	DefaultSuccessURL string

	// LogoutURLParameter names the query parameter with the post-logout
	// target. LogoutURLPattern must match that target in full or
	// DefaultLogoutURL is used instead.
	LogoutURLParameter string
	LogoutURLPattern   string
	DefaultLogoutURL   string

	// SuccessURLPattern must match an explicit login target in full or
	// DefaultSuccessURL is saved instead. The default accepts same-site
	// absolute paths only.
	SuccessURLPattern string

	// ProfileTTL bounds stored profiles. Zero uses the store default.
	ProfileTTL time.Duration
}

const defaultSuccessURLPattern = `/(?:[^/\\].*)?`

type Coordinator struct {
	cfg            Config
	logoutPattern  *regexp.Regexp
	successPattern *regexp.Regexp

	clients  client.Finder
	sessions *session.Resolver
	store    *storage.Store
	resolver resolver.Resolver
}

// New builds a Coordinator. clients may be nil; every operation needing a
// client then fails with ErrMissingClientConfiguration.
func New(cfg Config, clients client.Finder, sessions *session.Resolver, store *storage.Store) (*Coordinator, error) {
	if cfg.LogoutURLParameter == "" {
		cfg.LogoutURLParameter = "url"
	}
	if cfg.LogoutURLPattern == "" {
		cfg.LogoutURLPattern = "/.*"
	}
	if cfg.DefaultLogoutURL == "" {
		cfg.DefaultLogoutURL = "/"
	}
	if cfg.DefaultSuccessURL == "" {
		cfg.DefaultSuccessURL = "/"
	}
	if cfg.SuccessURLPattern == "" {
		cfg.SuccessURLPattern = defaultSuccessURLPattern
	}

	pattern, err := regexp.Compile("^(?:" + cfg.LogoutURLPattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("flow: invalid logout url pattern: %w", err)
	}
	successPattern, err := regexp.Compile("^(?:" + cfg.SuccessURLPattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("flow: invalid success url pattern: %w", err)
	}

	return &Coordinator{
		cfg:            cfg,
		logoutPattern:  pattern,
		successPattern: successPattern,
		clients:        clients,
		sessions:       sessions,
		store:          store,
	}, nil
}

// WithResolver links every resolved profile to an internal user before it
// is stored.
func (c *Coordinator) WithResolver(r resolver.Resolver) *Coordinator {
	c.resolver = r
	return c
}

func (c *Coordinator) configured() bool {
	if c.clients == nil {
		return false
	}
	if counted, ok := c.clients.(interface{ Len() int }); ok && counted.Len() == 0 {
		return false
	}
	return true
}

// WebContext returns the request's web context, building it once.
func (c *Coordinator) WebContext(scope *webctx.Scope) *webctx.Context {
	wc, _ := scope.WebContext(func() (*webctx.Context, error) {
		return webctx.NewContext(scope.Request, scope.Writer, c.store, func() string {
			return c.sessions.ResolveExisting(scope.Request.Header, scope.Session)
		}), nil
	})
	return wc
}

// existingSessionID never creates an id. A miss is not memoized so a later
// sessionID call in the same request can still create one.
func (c *Coordinator) existingSessionID(scope *webctx.Scope) string {
	id, _ := scope.SessionID(func() (string, error) {
		if id := c.sessions.ResolveExisting(scope.Request.Header, scope.Session); id != "" {
			return id, nil
		}
		return "", errNoSession
	})
	return id
}

func (c *Coordinator) sessionID(scope *webctx.Scope) (string, error) {
	id, err := scope.SessionID(func() (string, error) {
		return c.sessions.ResolveOrCreate(scope.Request.Header, scope.Session)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return id, nil
}

// RedirectAction remembers targetURL for clientName and returns where the
// browser must go to authenticate. An empty targetURL stands for the
// current request URL. A targetURL outside the success pattern is replaced
// by the default success URL.
func (c *Coordinator) RedirectAction(ctx context.Context, scope *webctx.Scope, clientName, targetURL string) (client.RedirectAction, error) {
	if !c.configured() {
		return client.RedirectAction{}, ErrMissingClientConfiguration
	}

	wc := c.WebContext(scope)

	cl, err := scope.Client(func() (client.Client, error) {
		return c.clients.Find(clientName)
	})
	if err != nil {
		return client.RedirectAction{}, err
	}

	sid, err := c.sessionID(scope)
	if err != nil {
		return client.RedirectAction{}, err
	}

	switch {
	case targetURL == "":
		targetURL = wc.FullRequestURL()
	case !c.successPattern.MatchString(targetURL):
		logger.Warn("login target rejected", map[string]any{
			"client": cl.Name(),
			"target": targetURL,
		})
		targetURL = c.cfg.DefaultSuccessURL
	}
	if err := c.store.SaveRequestedURL(ctx, sid, cl.Name(), targetURL); err != nil {
		return client.RedirectAction{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	action, err := cl.RedirectAction(ctx, wc)
	if err != nil {
		return client.RedirectAction{}, err
	}

	metrics.RecordLoginRedirect(cl.Name())
	logger.Debug("redirecting to identity client", map[string]any{
		"client": cl.Name(),
		"target": targetURL,
	})

	return action, nil
}

// Callback completes authentication for the client named in the request.
func (c *Coordinator) Callback(ctx context.Context, scope *webctx.Scope) (Outcome, error) {
	if !c.configured() {
		return Outcome{}, ErrMissingClientConfiguration
	}

	wc := c.WebContext(scope)

	cl, err := scope.Client(func() (client.Client, error) {
		return c.clients.FindFromContext(wc)
	})
	if err != nil {
		metrics.RecordCallbackOutcome("", OutcomeFailure.String())
		return Outcome{}, err
	}

	result, err := scope.Credentials(func() (client.CredentialsResult, error) {
		return extract(ctx, cl, wc)
	})
	if err != nil {
		metrics.RecordCallbackOutcome(cl.Name(), OutcomeFailure.String())
		return Outcome{}, err
	}

	if result.Action != nil {
		return c.actionOutcome(cl.Name(), result.Action), nil
	}

	profile, err := scope.Profile(func() (*auth.Profile, error) {
		if result.Credentials == nil {
			return nil, nil
		}
		return cl.Profile(ctx, result.Credentials, wc)
	})
	if err != nil {
		metrics.RecordCallbackOutcome(cl.Name(), OutcomeFailure.String())
		return Outcome{}, err
	}

	if profile != nil && c.resolver != nil {
		userID, err := c.resolver.Resolve(ctx, profile)
		if err != nil {
			metrics.RecordCallbackOutcome(cl.Name(), OutcomeFailure.String())
			return Outcome{}, fmt.Errorf("flow: resolve user: %w", err)
		}
		profile.UserID = userID
	}

	sid, err := c.sessionID(scope)
	if err != nil {
		return Outcome{}, err
	}

	if err := c.store.SaveProfile(ctx, sid, profile, c.cfg.ProfileTTL); err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	redirectURL, err := c.store.GetRequestedURL(ctx, sid, cl.Name())
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if redirectURL == "" {
		redirectURL = c.cfg.DefaultSuccessURL
	}

	metrics.RecordCallbackOutcome(cl.Name(), OutcomeProfile.String())
	logger.Info("callback completed", map[string]any{
		"client":        cl.Name(),
		"authenticated": profile != nil,
	})

	return Outcome{
		Kind:        OutcomeProfile,
		Profile:     profile,
		RedirectURL: redirectURL,
	}, nil
}

func (c *Coordinator) actionOutcome(clientName string, action *client.HTTPAction) Outcome {
	if !action.Supported() {
		msg := fmt.Sprintf("unsupported HTTP action: %d", action.Code)
		logger.Error(msg, map[string]any{"client": clientName})
		metrics.RecordCallbackOutcome(clientName, OutcomeFailure.String())
		return Outcome{
			Kind:    OutcomeFailure,
			Failure: &Failure{Kind: FailureUnsupportedAction, Message: msg},
		}
	}

	metrics.RecordCallbackOutcome(clientName, OutcomeActionRequired.String())
	logger.Debug("identity client requires an HTTP action", map[string]any{
		"client": clientName,
		"code":   action.Code,
	})
	return Outcome{Kind: OutcomeActionRequired, Action: action}
}

// extract asks an AlternateExtractor first and falls back to the regular
// extraction when the request did not use the alternate form.
func extract(ctx context.Context, cl client.Client, wc client.WebContext) (client.CredentialsResult, error) {
	if alt, ok := cl.(client.AlternateExtractor); ok {
		result, found, err := alt.ExtractAlternateCredentials(ctx, wc)
		if err != nil {
			return client.CredentialsResult{}, err
		}
		if found {
			return result, nil
		}
	}
	return cl.ExtractCredentials(ctx, wc)
}

// UserProfile returns the profile stored for the request's session, or nil.
// It never creates a session id.
func (c *Coordinator) UserProfile(ctx context.Context, scope *webctx.Scope) (*auth.Profile, error) {
	return scope.Profile(func() (*auth.Profile, error) {
		sid := c.existingSessionID(scope)
		if sid == "" {
			metrics.RecordProfileLookup(false)
			return nil, nil
		}

		profile, err := c.store.GetProfile(ctx, sid)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStorage, err)
		}
		metrics.RecordProfileLookup(profile != nil)
		return profile, nil
	})
}

// SignIn stores a profile the gateway authenticated by itself, such as a
// freshly registered account, creating the session id when needed.
func (c *Coordinator) SignIn(ctx context.Context, scope *webctx.Scope, profile *auth.Profile) error {
	sid, err := c.sessionID(scope)
	if err != nil {
		return err
	}
	if err := c.store.SaveProfile(ctx, sid, profile, c.cfg.ProfileTTL); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	// the slot may already hold a lookup from earlier in the request
	_, _ = scope.Profile(func() (*auth.Profile, error) { return profile, nil })
	return nil
}

func (c *Coordinator) DefaultSuccessURL() string {
	return c.cfg.DefaultSuccessURL
}

// Logout removes the stored profile and forgets the session id.
func (c *Coordinator) Logout(ctx context.Context, scope *webctx.Scope) error {
	if sid := c.existingSessionID(scope); sid != "" {
		if err := c.store.RemoveProfile(ctx, sid); err != nil {
			return fmt.Errorf("%w: %w", ErrStorage, err)
		}
	}
	if err := c.sessions.Clear(scope.Session); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	metrics.RecordLogout()
	return nil
}

// LogoutRedirectTarget returns the requested post-logout URL when it is a
// single value matching the allow-list, else the default logout URL.
func (c *Coordinator) LogoutRedirectTarget(query url.Values) string {
	values := query[c.cfg.LogoutURLParameter]
	if len(values) == 1 && c.logoutPattern.MatchString(values[0]) {
		return values[0]
	}
	return c.cfg.DefaultLogoutURL
}
