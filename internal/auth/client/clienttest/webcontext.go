// Package clienttest provides an in-memory client.WebContext for tests.
package clienttest

import (
	"context"
	"net/http"
	"net/url"
)

type WebContext struct {
	Method         string
	Header         http.Header
	Params         url.Values
	Attributes     map[string]string
	ResponseHeader http.Header
	Host           string
	Port           int
	URL            string
}

func New() *WebContext {
	return &WebContext{
		Method:         http.MethodGet,
		Header:         http.Header{},
		Params:         url.Values{},
		Attributes:     map[string]string{},
		ResponseHeader: http.Header{},
		Host:           "localhost",
		Port:           8080,
		URL:            "http://localhost:8080/",
	}
}

func (w *WebContext) RequestHeader(name string) string   { return w.Header.Get(name) }
func (w *WebContext) RequestMethod() string              { return w.Method }
func (w *WebContext) RequestParameter(name string) string { return w.Params.Get(name) }
func (w *WebContext) RequestParameters() url.Values      { return w.Params }

func (w *WebContext) SessionAttribute(_ context.Context, key string) (string, error) {
	return w.Attributes[key], nil
}

func (w *WebContext) SetSessionAttribute(_ context.Context, key, value string) error {
	if value == "" {
		delete(w.Attributes, key)
		return nil
	}
	w.Attributes[key] = value
	return nil
}

func (w *WebContext) SetResponseHeader(name, value string) { w.ResponseHeader.Set(name, value) }
func (w *WebContext) ServerName() string                  { return w.Host }
func (w *WebContext) ServerPort() int                     { return w.Port }
func (w *WebContext) Scheme() string                      { return "http" }
func (w *WebContext) FullRequestURL() string              { return w.URL }
