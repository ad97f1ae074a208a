// Package hooks provides ordered filter and action registries modelled on WordPress
// plugin hooks. Callbacks run by ascending priority; equal priorities run in the order
// they were added.
package hooks

import (
	"context"
	"sort"
	"sync"
)

// DefaultPriority is used when callers have no ordering preference.
const DefaultPriority = 10

// FilterFunc transforms a value. arg carries read-only request state.
type FilterFunc[T, A any] func(ctx context.Context, value T, arg A) T

// ActionFunc observes or mutates arg in place.
type ActionFunc[A any] func(ctx context.Context, arg A)

type entry[F any] struct {
	name     string
	priority int
	seq      int
	fn       F
}

type registry[F any] struct {
	mu      sync.RWMutex
	seq     int
	entries []entry[F]
}

func (r *registry[F]) add(name string, priority int, fn F) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.entries = append(r.entries, entry[F]{name: name, priority: priority, seq: r.seq, fn: fn})
	sort.SliceStable(r.entries, func(i, j int) bool {
		if r.entries[i].priority != r.entries[j].priority {
			return r.entries[i].priority < r.entries[j].priority
		}
		return r.entries[i].seq < r.entries[j].seq
	})
}

func (r *registry[F]) remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.entries[:0]
	removed := false
	for _, e := range r.entries {
		if e.name == name {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return removed
}

func (r *registry[F]) snapshot() []entry[F] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entry[F], len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *registry[F]) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.name
	}
	return out
}

// Filter is an ordered chain of value transforms.
type Filter[T, A any] struct {
	reg registry[FilterFunc[T, A]]
}

// Add registers fn under name at the given priority.
func (f *Filter[T, A]) Add(name string, priority int, fn FilterFunc[T, A]) {
	if fn == nil {
		return
	}
	f.reg.add(name, priority, fn)
}

// Remove drops every callback registered under name.
func (f *Filter[T, A]) Remove(name string) bool { return f.reg.remove(name) }

// Names lists registered callbacks in execution order.
func (f *Filter[T, A]) Names() []string { return f.reg.names() }

// Apply threads value through every callback and returns the result.
func (f *Filter[T, A]) Apply(ctx context.Context, value T, arg A) T {
	for _, e := range f.reg.snapshot() {
		value = e.fn(ctx, value, arg)
	}
	return value
}

// Action is an ordered list of side-effecting callbacks.
type Action[A any] struct {
	reg registry[ActionFunc[A]]
}

// Add registers fn under name at the given priority.
func (a *Action[A]) Add(name string, priority int, fn ActionFunc[A]) {
	if fn == nil {
		return
	}
	a.reg.add(name, priority, fn)
}

// Remove drops every callback registered under name.
func (a *Action[A]) Remove(name string) bool { return a.reg.remove(name) }

// Names lists registered callbacks in execution order.
func (a *Action[A]) Names() []string { return a.reg.names() }

// Do runs every callback with arg.
func (a *Action[A]) Do(ctx context.Context, arg A) {
	for _, e := range a.reg.snapshot() {
		e.fn(ctx, arg)
	}
}
