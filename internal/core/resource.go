package core

import (
	"errors"
	"fmt"
)

// CachedResource is one entry of a ResourceCache: the payload, the
// version token the remote store assigned to it, and its key. Values
// handed out by the cache are copies; mutating them never affects the
// cache.
type CachedResource[T any] struct {
	Key     ResourceKey[T]
	Version string
	Object  T
}

// Kind describes how a resource kind is identified. One Kind value is
// supplied per resource type when the composition root wires a
// Reflector.
type Kind[T any] struct {
	// Name is the kind name used in logs, metrics and the registry
	// (e.g. "cassandradatacenters").
	Name string
	// KeyOf extracts the identity of an item.
	KeyOf func(T) (ResourceKey[T], error)
	// VersionOf extracts the remote-assigned version token.
	VersionOf func(T) (string, error)
	// Copy returns a deep copy of an item. Events and reads carry
	// copies so that subscribers cannot corrupt cache state.
	Copy func(T) T
	// Encode converts an item into a JSON-compatible map for the
	// status service. Optional.
	Encode func(T) (map[string]any, error)
}

// Validate reports whether the mandatory extraction functions are set.
func (k Kind[T]) Validate() error {
	var errs []error
	if k.Name == "" {
		errs = append(errs, errors.New("kind name is required"))
	}
	if k.KeyOf == nil {
		errs = append(errs, fmt.Errorf("kind %q: KeyOf is required", k.Name))
	}
	if k.VersionOf == nil {
		errs = append(errs, fmt.Errorf("kind %q: VersionOf is required", k.Name))
	}
	if k.Copy == nil {
		errs = append(errs, fmt.Errorf("kind %q: Copy is required", k.Name))
	}
	return errors.Join(errs...)
}

// identify runs KeyOf and VersionOf on item, wrapping failures in
// ErrIdentity.
func (k Kind[T]) identify(item T) (ResourceKey[T], string, error) {
	key, err := k.KeyOf(item)
	if err != nil {
		return ResourceKey[T]{}, "", &ErrIdentity{Kind: k.Name, Err: err}
	}
	version, err := k.VersionOf(item)
	if err != nil {
		return ResourceKey[T]{}, "", &ErrIdentity{Kind: k.Name, Key: key.String(), Err: err}
	}
	return key, version, nil
}

// entry builds a cache entry holding a private copy of item.
func (k Kind[T]) entry(key ResourceKey[T], version string, item T) CachedResource[T] {
	return CachedResource[T]{Key: key, Version: version, Object: k.Copy(item)}
}

// copyEntry returns e with a deep-copied payload.
func (k Kind[T]) copyEntry(e CachedResource[T]) CachedResource[T] {
	e.Object = k.Copy(e.Object)
	return e
}
