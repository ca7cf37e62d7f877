package client

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownClient     = errors.New("client: unknown client")
	ErrMissingClientName = errors.New("client: missing client name")
)

// Finder looks up clients by name or from the callback request.
type Finder interface {
	Find(name string) (Client, error)
	FindFromContext(wc WebContext) (Client, error)
}

// Registry holds all configured identity clients. It performs no auth
// logic itself.
type Registry struct {
	param   string
	clients map[string]Client
}

// NewRegistry registers clients by name. param is the request parameter
// carrying the client name on callbacks. Client names must be unique.
func NewRegistry(param string, list ...Client) *Registry {
	m := make(map[string]Client, len(list))
	for _, c := range list {
		m[c.Name()] = c
	}
	return &Registry{param: param, clients: m}
}

// Find returns the client by name or ErrUnknownClient.
func (r *Registry) Find(name string) (Client, error) {
	c, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClient, name)
	}
	return c, nil
}

// FindFromContext uses the client name parameter of the request.
func (r *Registry) FindFromContext(wc WebContext) (Client, error) {
	name := wc.RequestParameter(r.param)
	if name == "" {
		return nil, fmt.Errorf("%w: parameter %q", ErrMissingClientName, r.param)
	}
	return r.Find(name)
}

func (r *Registry) Len() int {
	return len(r.clients)
}

// Names returns the registered client names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.clients))
	for n := range r.clients {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
