package core

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// InformerFactory constructs the informer for one resource kind.
type InformerFactory func() (Informer, error)

// Registry maps resource kind names to informer factories. It is built
// once by the composition root and consulted when the enabled kinds
// are instantiated.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]InformerFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]InformerFactory)}
}

// Register adds a factory for kind. Registering the same kind twice is
// an error.
func (r *Registry) Register(kind string, factory InformerFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("resource kind %q already registered", kind)
	}
	r.factories[kind] = factory
	return nil
}

// Kinds returns the registered kind names in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Build instantiates the informers for kinds, in the given order. An
// empty list selects every registered kind.
func (r *Registry) Build(kinds []string) (*Informers, error) {
	if len(kinds) == 0 {
		kinds = r.Kinds()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	set := &Informers{byKind: make(map[string]Informer, len(kinds))}
	for _, kind := range kinds {
		if _, dup := set.byKind[kind]; dup {
			continue
		}
		factory, ok := r.factories[kind]
		if !ok {
			return nil, &ErrKindNotFound{Kind: kind}
		}
		inf, err := factory()
		if err != nil {
			return nil, fmt.Errorf("build %s informer: %w", kind, err)
		}
		set.byKind[kind] = inf
		set.ordered = append(set.ordered, inf)
	}
	return set, nil
}

// Informers is the set of running informers, one per enabled kind.
type Informers struct {
	ordered []Informer
	byKind  map[string]Informer
}

// All returns the informers in build order.
func (s *Informers) All() []Informer {
	return slices.Clone(s.ordered)
}

// Get returns the informer for kind.
func (s *Informers) Get(kind string) (Informer, error) {
	inf, ok := s.byKind[kind]
	if !ok {
		return nil, &ErrKindNotFound{Kind: kind}
	}
	return inf, nil
}

// HasSynced reports whether every informer completed its first resync.
func (s *Informers) HasSynced() bool {
	for _, inf := range s.ordered {
		if !inf.HasSynced() {
			return false
		}
	}
	return true
}

// WaitForSync blocks until every informer has synced or ctx is done.
func (s *Informers) WaitForSync(ctx context.Context) error {
	for _, inf := range s.ordered {
		if err := inf.WaitForSync(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ReflectorFor returns the typed reflector for kind. It fails if the
// kind is not enabled or its payload type is not T.
func ReflectorFor[T any](s *Informers, kind string) (*Reflector[T], error) {
	inf, err := s.Get(kind)
	if err != nil {
		return nil, err
	}
	r, ok := inf.(*Reflector[T])
	if !ok {
		var zero T
		return nil, fmt.Errorf("resource kind %q does not carry %T payloads", kind, zero)
	}
	return r, nil
}
