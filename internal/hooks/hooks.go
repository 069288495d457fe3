// Package hooks provides named extension points: ordered chains of pure
// functions that may rewrite a value before it is used. An empty chain is
// the identity.
package hooks

import (
	"sync"

	"github.com/afrigis/user-feedback/internal/model"
)

// Names of the extension points used by the feedback service.
const (
	LoadOnFrontend   = "load_on_frontend"
	LoadOnBackend    = "load_on_backend"
	Load             = "load"
	EmailAddress     = "email_address"
	EmailSubject     = "email_subject"
	EmailMessage     = "email_message"
	EmailCopyAddress = "email_copy_address"
	EmailCopySubject = "email_copy_subject"
	EmailCopyMessage = "email_copy_message"
	ScriptData       = "script_data"
)

// Filter transforms a value of type T.
type Filter[T any] func(T) T

// Chain is an ordered list of filters for one value type.
type Chain[T any] struct {
	mu      sync.RWMutex
	filters map[string][]Filter[T]
}

// NewChain creates an empty chain set.
func NewChain[T any]() *Chain[T] {
	return &Chain[T]{filters: make(map[string][]Filter[T])}
}

// Add appends f to the chain registered under name.
func (c *Chain[T]) Add(name string, f Filter[T]) {
	if f == nil {
		return
	}
	c.mu.Lock()
	c.filters[name] = append(c.filters[name], f)
	c.mu.Unlock()
}

// Apply runs every filter registered under name in registration order.
func (c *Chain[T]) Apply(name string, v T) T {
	c.mu.RLock()
	fs := c.filters[name]
	c.mu.RUnlock()
	for _, f := range fs {
		v = f(v)
	}
	return v
}

// Len reports how many filters are registered under name.
func (c *Chain[T]) Len(name string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.filters[name])
}

// Registry groups the chains for each value type the service filters.
type Registry struct {
	Bools   *Chain[bool]
	Strings *Chain[string]
	Script  *Chain[model.ScriptData]
}

// NewRegistry returns a registry with empty chains.
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewChain[bool](),
		Strings: NewChain[string](),
		Script:  NewChain[model.ScriptData](),
	}
}

// Const returns a filter that replaces any value with v.
func Const[T any](v T) Filter[T] {
	return func(T) T { return v }
}
