// Package session holds the identity currently authenticated against one
// client or request scope.
package session

import (
	"context"
	"sync"

	"github.com/chama-dev/chama/backend/internal/domain"
)

// Context is a single-slot holder for the authenticated identity. The zero
// value is an anonymous session ready for use.
type Context struct {
	mu      sync.RWMutex
	current *domain.Identity
}

func New() *Context {
	return &Context{}
}

// Login replaces whatever identity was held before. No prior Logout is needed.
func (c *Context) Login(identity domain.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	held := identity.Clone()
	c.current = &held
}

func (c *Context) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = nil
}

// CurrentIdentity returns a deep copy of the held identity, or false when
// anonymous.
func (c *Context) CurrentIdentity() (domain.Identity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return domain.Identity{}, false
	}
	return c.current.Clone(), true
}

type ctxKey struct{}

func WithContext(ctx context.Context, s *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached to ctx, or a fresh anonymous one.
func FromContext(ctx context.Context) *Context {
	if s, ok := ctx.Value(ctxKey{}).(*Context); ok && s != nil {
		return s
	}
	return New()
}
