package webctx

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// AttributeStore keeps session attributes keyed by session id.
type AttributeStore interface {
	GetAttribute(ctx context.Context, sessionID, key string) (string, error)
	SaveAttribute(ctx context.Context, sessionID, key, value string) error
}

// Context adapts an HTTP request/response pair to client.WebContext.
type Context struct {
	r         *http.Request
	w         http.ResponseWriter
	attrs     AttributeStore
	sessionID func() string

	params url.Values
}

// NewContext builds the web context. sessionID is consulted on every
// attribute access so an id created later in the request is picked up.
func NewContext(r *http.Request, w http.ResponseWriter, attrs AttributeStore, sessionID func() string) *Context {
	return &Context{r: r, w: w, attrs: attrs, sessionID: sessionID}
}

func (c *Context) Request() *http.Request {
	return c.r
}

func (c *Context) RequestHeader(name string) string {
	return c.r.Header.Get(name)
}

func (c *Context) RequestMethod() string {
	return c.r.Method
}

// RequestParameters merges form and query values; query values replace
// form values of the same name.
func (c *Context) RequestParameters() url.Values {
	if c.params != nil {
		return c.params
	}

	params := url.Values{}
	// ParseForm errors leave PostForm partially filled, which is fine here.
	_ = c.r.ParseForm()
	for k, v := range c.r.PostForm {
		params[k] = v
	}
	for k, v := range c.r.URL.Query() {
		params[k] = v
	}

	c.params = params
	return params
}

func (c *Context) RequestParameter(name string) string {
	return c.RequestParameters().Get(name)
}

func (c *Context) SessionAttribute(ctx context.Context, key string) (string, error) {
	sid := c.sessionID()
	if sid == "" {
		return "", nil
	}
	return c.attrs.GetAttribute(ctx, sid, key)
}

func (c *Context) SetSessionAttribute(ctx context.Context, key, value string) error {
	sid := c.sessionID()
	if sid == "" {
		return nil
	}
	return c.attrs.SaveAttribute(ctx, sid, key, value)
}

func (c *Context) SetResponseHeader(name, value string) {
	c.w.Header().Set(name, value)
}

func (c *Context) Scheme() string {
	if proto := c.r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	if c.r.TLS != nil {
		return "https"
	}
	return "http"
}

func (c *Context) ServerName() string {
	host, _, err := net.SplitHostPort(c.r.Host)
	if err != nil {
		return c.r.Host
	}
	return host
}

func (c *Context) ServerPort() int {
	_, port, err := net.SplitHostPort(c.r.Host)
	if err == nil {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	if c.Scheme() == "https" {
		return 443
	}
	return 80
}

func (c *Context) FullRequestURL() string {
	return c.Scheme() + "://" + c.r.Host + c.r.URL.RequestURI()
}
