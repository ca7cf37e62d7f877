// Package client defines the contract between the callback flow and the
// identity clients that implement one authentication protocol each.
package client

import (
	"context"
	"net/http"
	"net/url"

	"authbridge/internal/auth"
)

// WebContext is the request as seen by an identity client.
type WebContext interface {
	RequestHeader(name string) string
	RequestMethod() string

	// RequestParameter returns the first value of a form or query
	// parameter. Query values win over form values.
	RequestParameter(name string) string
	RequestParameters() url.Values

	// Session attributes live in the shared store under the current
	// session id. Without a session id reads return "" and writes are
	// dropped.
	SessionAttribute(ctx context.Context, key string) (string, error)
	SetSessionAttribute(ctx context.Context, key, value string) error

	SetResponseHeader(name, value string)

	ServerName() string
	ServerPort() int
	Scheme() string
	FullRequestURL() string
}

// Credentials are whatever a client pulled out of the callback request.
type Credentials interface {
	ClientName() string
}

// HTTPAction asks the caller to answer with exactly this response instead
// of continuing the flow. It is a control signal, not an error.
type HTTPAction struct {
	Code   int
	Body   string
	Header http.Header
}

// Supported reports whether the web layer knows how to render the action.
func (a HTTPAction) Supported() bool {
	switch a.Code {
	case http.StatusUnauthorized, http.StatusTemporaryRedirect, http.StatusOK:
		return true
	}
	return false
}

func Unauthorized(challenge string) *HTTPAction {
	h := http.Header{}
	if challenge != "" {
		h.Set("WWW-Authenticate", challenge)
	}
	return &HTTPAction{Code: http.StatusUnauthorized, Header: h}
}

func TemporaryRedirect(location string) *HTTPAction {
	h := http.Header{}
	h.Set("Location", location)
	return &HTTPAction{Code: http.StatusTemporaryRedirect, Header: h}
}

func OK(contentType, body string) *HTTPAction {
	h := http.Header{}
	h.Set("Content-Type", contentType)
	return &HTTPAction{Code: http.StatusOK, Body: body, Header: h}
}

// CredentialsResult is the tagged outcome of credential extraction: either
// Credentials, an Action the caller must emit, or neither (the request
// carried nothing).
type CredentialsResult struct {
	Credentials Credentials
	Action      *HTTPAction
}

func Found(c Credentials) CredentialsResult {
	return CredentialsResult{Credentials: c}
}

func RequireAction(a *HTTPAction) CredentialsResult {
	return CredentialsResult{Action: a}
}

// RedirectAction tells the browser where to go to start authenticating.
type RedirectAction struct {
	Location string
}

// Client implements a single authentication mechanism.
type Client interface {
	// Name identifies the client in the registry and in callback URLs.
	Name() string

	// RedirectAction starts the authentication round trip.
	RedirectAction(ctx context.Context, wc WebContext) (RedirectAction, error)

	// ExtractCredentials reads the callback request.
	ExtractCredentials(ctx context.Context, wc WebContext) (CredentialsResult, error)

	// Profile turns credentials into a profile. A nil profile with a nil
	// error means the credentials did not identify anyone.
	Profile(ctx context.Context, creds Credentials, wc WebContext) (*auth.Profile, error)
}

// AlternateExtractor is implemented by clients that accept a second way of
// presenting credentials on the callback. The flow asks it first; ok false
// means the request did not use the alternate form.
type AlternateExtractor interface {
	ExtractAlternateCredentials(ctx context.Context, wc WebContext) (result CredentialsResult, ok bool, err error)
}

// CallbackURL appends the client name parameter to base.
func CallbackURL(base, param, name string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set(param, name)
	u.RawQuery = q.Encode()
	return u.String()
}
