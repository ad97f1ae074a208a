// Package cms provides read access to CMS field sets: the site-wide Option set and the
// per-post field groups configured by editors.
package cms

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"peptidology.com/storefront/internal/fields"
	"peptidology.com/storefront/internal/observability"
	"peptidology.com/storefront/internal/requestctx"
)

// ErrNotFound is returned when a field scope does not exist in the store.
var ErrNotFound = errors.New("cms: not found")

// Store reads field sets by scope.
type Store interface {
	Fields(ctx context.Context, scope fields.Scope) (fields.Set, error)
}

// StoreFunc adapts ordinary functions to Store.
type StoreFunc func(context.Context, fields.Scope) (fields.Set, error)

// Fields calls f.
func (f StoreFunc) Fields(ctx context.Context, scope fields.Scope) (fields.Set, error) {
	return f(ctx, scope)
}

// FieldsOrEmpty loads a scope and degrades to an empty set on any failure. Missing scopes
// are expected (most products carry no custom content) and are not logged; other errors
// are logged as warnings.
func FieldsOrEmpty(ctx context.Context, store Store, scope fields.Scope) fields.Set {
	if store == nil {
		return fields.Set{}
	}
	ctx, span := observability.StartSpan(ctx, "cms.Fields", attribute.String("cms.scope", string(scope)))
	set, err := store.Fields(ctx, scope)
	observability.EndSpan(span, ignoreNotFound(err))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			requestctx.Logger(ctx).Warn("cms: field load failed",
				zap.String("scope", string(scope)),
				zap.Error(err),
			)
		}
		return fields.Set{}
	}
	return set
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// Cached wraps a store with an in-memory TTL cache. A non-positive ttl returns the
// store unchanged so every request reads fresh values.
func Cached(store Store, ttl time.Duration) Store {
	if ttl <= 0 || store == nil {
		return store
	}
	return &cachedStore{
		next:  store,
		ttl:   ttl,
		now:   time.Now,
		items: map[fields.Scope]cacheEntry{},
	}
}

type cachedStore struct {
	next Store
	ttl  time.Duration
	now  func() time.Time

	mu    sync.RWMutex
	items map[fields.Scope]cacheEntry
}

type cacheEntry struct {
	set     fields.Set
	err     error
	expires time.Time
}

func (c *cachedStore) Fields(ctx context.Context, scope fields.Scope) (fields.Set, error) {
	now := c.now()
	c.mu.RLock()
	entry, ok := c.items[scope]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.set, entry.err
	}

	set, err := c.next.Fields(ctx, scope)
	if err != nil && !errors.Is(err, ErrNotFound) {
		// Transient failures are not cached.
		return set, err
	}
	c.mu.Lock()
	c.items[scope] = cacheEntry{set: set, err: err, expires: now.Add(c.ttl)}
	c.mu.Unlock()
	return set, err
}
