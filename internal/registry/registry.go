// Package registry implements the driver's object registry: every
// client-visible handle (Config, Context, Surface, Buffer, Image) is an
// entry here, typed and looked up under one mutex. Generalized from the
// teacher's SessionManager (one map, one mutex, a sweep-all-of-a-kind
// teardown) to a monotonic integer id space with a linear-scan lookup,
// since the registry is small (tens of live objects per instance, not
// thousands of sessions) and the fixed contract this is standing in for
// specifies linear scan explicitly.
package registry

import (
	"fmt"
	"sync"
)

// Type tags an Object with the kind of thing its Inner payload is.
type Type int

const (
	TypeConfig Type = iota + 1
	TypeContext
	TypeSurface
	TypeBuffer
	TypeImage
)

func (t Type) String() string {
	switch t {
	case TypeConfig:
		return "config"
	case TypeContext:
		return "context"
	case TypeSurface:
		return "surface"
	case TypeBuffer:
		return "buffer"
	case TypeImage:
		return "image"
	default:
		return "unknown"
	}
}

// InvalidID is the reserved id meaning "no object" (VA_INVALID_ID's role).
const InvalidID uint32 = 0

// Object is one registry entry. Inner holds the typed payload (a
// *driver.Config, *driver.Context, ...); callers type-assert after Lookup.
type Object struct {
	ID    uint32
	Type  Type
	Inner interface{}
}

// Registry is a typed handle table with mutex-protected allocation and
// lookup. All methods serialize on one mutex, matching the fixed contract's
// "creation mutex held across add, remove, and lookup's linear scans" rule.
// DeleteAllMatching runs its beforeDelete callback with the mutex released,
// so that callback may call other Registry methods.
type Registry struct {
	mu      sync.Mutex
	nextID  uint32
	objects []*Object
}

// New returns an empty registry. Id 0 is reserved as InvalidID, so the
// first allocated object gets id 1.
func New() *Registry {
	return &Registry{nextID: 1}
}

// Allocate assigns a monotonically increasing id, stores inner as the
// object's payload, and inserts it under the creation mutex.
func (r *Registry) Allocate(t Type, inner interface{}) *Object {
	r.mu.Lock()
	defer r.mu.Unlock()

	obj := &Object{ID: r.nextID, Type: t, Inner: inner}
	r.nextID++
	r.objects = append(r.objects, obj)
	return obj
}

// Lookup performs a linear scan under the creation mutex. Returns nil for
// InvalidID or any id with no live entry.
func (r *Registry) Lookup(id uint32) *Object {
	if id == InvalidID {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookupLocked(id)
}

func (r *Registry) lookupLocked(id uint32) *Object {
	for _, obj := range r.objects {
		if obj.ID == id {
			return obj
		}
	}
	return nil
}

// LookupTyped looks up id and verifies its Type matches want; any lookup
// that finds the wrong type fails, matching the registry's "distinct type"
// invariant (the caller reports the corresponding "invalid X" status).
func (r *Registry) LookupTyped(id uint32, want Type) (*Object, error) {
	obj := r.Lookup(id)
	if obj == nil {
		return nil, fmt.Errorf("invalid %s: id %d not found", want, id)
	}
	if obj.Type != want {
		return nil, fmt.Errorf("invalid %s: id %d is a %s", want, id, obj.Type)
	}
	return obj, nil
}

// LookupPtr is a convenience over Lookup that returns the inner payload
// directly, or nil if id is not found.
func (r *Registry) LookupPtr(id uint32) interface{} {
	obj := r.Lookup(id)
	if obj == nil {
		return nil
	}
	return obj.Inner
}

// LookupByInnerPointer performs the reverse lookup Image destruction needs
// to find its implicit Buffer: scan for the Object whose Inner is
// reference-equal to inner.
func (r *Registry) LookupByInnerPointer(inner interface{}) *Object {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, obj := range r.objects {
		if obj.Inner == inner {
			return obj
		}
	}
	return nil
}

// Delete removes and frees the entry for id. No-op on InvalidID or an id
// with no live entry.
func (r *Registry) Delete(id uint32) {
	if id == InvalidID {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, obj := range r.objects {
		if obj.ID == id {
			r.objects = append(r.objects[:i], r.objects[i+1:]...)
			return
		}
	}
}

// DeleteAllMatching removes every entry of the given type, calling
// beforeDelete on each (under the mutex released first) so Context entries
// can run their teardown -- which joins a resolve thread -- before being
// freed from the registry, mirroring the teacher's "collect under lock,
// tear down outside it" StopAllSessions shape.
func (r *Registry) DeleteAllMatching(t Type, beforeDelete func(*Object)) {
	r.mu.Lock()
	var matched []*Object
	for _, obj := range r.objects {
		if obj.Type == t {
			matched = append(matched, obj)
		}
	}
	r.mu.Unlock()

	for _, obj := range matched {
		if beforeDelete != nil {
			beforeDelete(obj)
		}
		r.Delete(obj.ID)
	}
}

// Len returns the number of live objects, used by diagnostics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objects)
}

// CountType returns the number of live objects of the given type, used by
// internal/driver to track per-kind counts (e.g. the live Surface count)
// without exposing the backing slice.
func (r *Registry) CountType(t Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, obj := range r.objects {
		if obj.Type == t {
			n++
		}
	}
	return n
}
