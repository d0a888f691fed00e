package core

import (
	"context"
	"fmt"
)

// ResourceSummary identifies one cached entry without its payload.
type ResourceSummary struct {
	Namespace string
	Name      string
	Version   string
}

// ResourceDocument is a cached entry rendered as a JSON-compatible
// map.
type ResourceDocument struct {
	ResourceSummary
	Object map[string]any
}

// Notification is a ChangeEvent stripped of its payload type. Version
// is the version of New, or of Old for Deleted events.
type Notification struct {
	Kind string
	Type ChangeType
	ResourceSummary
}

// Informer is the kind-agnostic view of a Reflector used by the
// lifecycle manager, the registry and the status service. Typed access
// (Subscribe, Cache) goes through *Reflector[T].
type Informer interface {
	Kind() string
	State() ReflectorState
	HasSynced() bool
	WaitForSync(ctx context.Context) error
	Len() int
	Summaries(namespace string) []ResourceSummary
	Lookup(ctx context.Context, namespace, name string) (*ResourceDocument, bool, error)
	Notify(name string, handler func(Notification) error) (cancel func())
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ Informer = (*Reflector[any])(nil)

// HasSynced reports whether the first resync has completed.
func (r *Reflector[T]) HasSynced() bool { return r.cache.HasSynced() }

// WaitForSync blocks until the first resync has completed or ctx is
// done.
func (r *Reflector[T]) WaitForSync(ctx context.Context) error { return r.cache.WaitForSync(ctx) }

// Len returns the number of cached entries.
func (r *Reflector[T]) Len() int { return r.cache.Len() }

// Summaries lists the cached keys and versions, optionally restricted
// to one namespace.
func (r *Reflector[T]) Summaries(namespace string) []ResourceSummary {
	entries := r.cache.Entries()
	out := make([]ResourceSummary, 0, len(entries))
	for _, e := range entries {
		if namespace != "" && e.Key.Namespace != namespace {
			continue
		}
		out = append(out, ResourceSummary{
			Namespace: e.Key.Namespace,
			Name:      e.Key.Name,
			Version:   e.Version,
		})
	}
	return out
}

// Lookup returns the encoded entry for namespace/name, blocking on the
// readiness gate like ResourceCache.Get.
func (r *Reflector[T]) Lookup(ctx context.Context, namespace, name string) (*ResourceDocument, bool, error) {
	entry, ok, err := r.cache.Get(ctx, NewResourceKey[T](namespace, name))
	if err != nil || !ok {
		return nil, ok, err
	}

	doc := &ResourceDocument{
		ResourceSummary: ResourceSummary{
			Namespace: entry.Key.Namespace,
			Name:      entry.Key.Name,
			Version:   entry.Version,
		},
	}
	if r.kind.Encode != nil {
		obj, err := r.kind.Encode(entry.Object)
		if err != nil {
			return nil, false, fmt.Errorf("encode %s %s: %w", r.kind.Name, entry.Key, err)
		}
		doc.Object = obj
	}
	return doc, true, nil
}

// Notify subscribes handler to this kind's change events without
// exposing the payload. The current cache contents are replayed first,
// as with Subscribe.
func (r *Reflector[T]) Notify(name string, handler func(Notification) error) func() {
	sub := r.Subscribe(name, func(ev ChangeEvent[T]) error {
		// The cache already validated the version of every stored item.
		version, _ := r.kind.VersionOf(ev.Object())
		return handler(Notification{
			Kind: r.kind.Name,
			Type: ev.Type,
			ResourceSummary: ResourceSummary{
				Namespace: ev.Key.Namespace,
				Name:      ev.Key.Name,
				Version:   version,
			},
		})
	})
	return sub.Cancel
}
