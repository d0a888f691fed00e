package core

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// ResourceCache is the in-memory mirror of one resource kind. It owns
// every mutation of the mirror and decides which change events to
// emit.
//
// A single writer (the kind's Reflector) calls Sync and Apply; Get,
// Entries and Len are safe from any goroutine. Each single-key
// mutation is published before the next one is applied, and outside
// the read lock, so handlers may read the cache with Peek, Entries and
// Len and observe the state as of the event they are handling. Get on
// the handler's own cache blocks during the initial Sync, because the
// readiness gate opens only after every initial event was published.
type ResourceCache[T any] struct {
	kind     Kind[T]
	events   *EventChannel[T]
	observer Observer

	// dispatchMu serialises mutate+publish steps against
	// subscribe-with-replay.
	dispatchMu sync.Mutex

	mu    sync.RWMutex
	items map[ResourceKey[T]]CachedResource[T]

	synced   chan struct{}
	syncOnce sync.Once
}

// NewResourceCache returns an empty cache publishing to events.
func NewResourceCache[T any](kind Kind[T], events *EventChannel[T], observer Observer) *ResourceCache[T] {
	if observer == nil {
		observer = NopObserver{}
	}
	return &ResourceCache[T]{
		kind:     kind,
		events:   events,
		observer: observer,
		items:    make(map[ResourceKey[T]]CachedResource[T]),
		synced:   make(chan struct{}),
	}
}

// Kind returns the name of the cached resource kind.
func (c *ResourceCache[T]) Kind() string {
	return c.kind.Name
}

type snapshotItem[T any] struct {
	key     ResourceKey[T]
	version string
	item    T
}

// Sync reconciles the cache against a complete snapshot of the remote
// store. Keys missing from the snapshot are removed with a Deleted
// event; new keys are inserted with an Added event; present keys are
// replaced, with a Modified event only when the version token changed.
// The first successful Sync opens the readiness gate.
//
// Identity extraction runs over the whole snapshot before anything is
// mutated, so an ErrIdentity leaves the cache untouched.
func (c *ResourceCache[T]) Sync(items []T) error {
	snapshot := make([]snapshotItem[T], 0, len(items))
	index := make(map[ResourceKey[T]]int, len(items))
	for _, item := range items {
		key, version, err := c.kind.identify(item)
		if err != nil {
			return err
		}
		si := snapshotItem[T]{key: key, version: version, item: item}
		if i, dup := index[key]; dup {
			snapshot[i] = si
			continue
		}
		index[key] = len(snapshot)
		snapshot = append(snapshot, si)
	}

	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	c.mu.RLock()
	var removed []ResourceKey[T]
	for key := range c.items {
		if _, ok := index[key]; !ok {
			removed = append(removed, key)
		}
	}
	c.mu.RUnlock()
	slices.SortFunc(removed, compareKeys[T])

	for _, key := range removed {
		if prev, ok := c.remove(key); ok {
			c.events.Publish(ChangeEvent[T]{Type: ChangeDeleted, Key: key, Old: prev.Object})
		}
	}

	for _, si := range snapshot {
		prev, existed := c.upsert(si.key, si.version, si.item)
		switch {
		case !existed:
			c.events.Publish(ChangeEvent[T]{Type: ChangeAdded, Key: si.key, New: c.kind.Copy(si.item)})
		case prev.Version != si.version:
			c.events.Publish(ChangeEvent[T]{Type: ChangeModified, Key: si.key, Old: prev.Object, New: c.kind.Copy(si.item)})
		}
	}

	c.observer.ObserveCacheSize(c.kind.Name, c.Len())
	c.syncOnce.Do(func() { close(c.synced) })
	return nil
}

// Apply applies one incremental change from the watch stream. Added
// and Modified upsert the key and always emit an event; the event type
// follows cache presence, so a Modified for an unknown key is emitted
// as Added and an Added for a known key as Modified carrying the
// previous value. Deleted removes the key, tolerating absence, and
// emits the last cached value or, if absent, the stream's value.
func (c *ResourceCache[T]) Apply(t ChangeType, item T) error {
	key, version, err := c.kind.identify(item)
	if err != nil {
		return err
	}

	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	switch t {
	case ChangeAdded, ChangeModified:
		prev, existed := c.upsert(key, version, item)
		if existed {
			c.events.Publish(ChangeEvent[T]{Type: ChangeModified, Key: key, Old: prev.Object, New: c.kind.Copy(item)})
		} else {
			c.events.Publish(ChangeEvent[T]{Type: ChangeAdded, Key: key, New: c.kind.Copy(item)})
		}
	case ChangeDeleted:
		last, existed := c.remove(key)
		if !existed {
			last = CachedResource[T]{Object: c.kind.Copy(item)}
		}
		c.events.Publish(ChangeEvent[T]{Type: ChangeDeleted, Key: key, Old: last.Object})
	default:
		return fmt.Errorf("%s: unsupported change type %q", c.kind.Name, t)
	}

	c.observer.ObserveCacheSize(c.kind.Name, c.Len())
	return nil
}

// upsert stores a private copy of item and returns the replaced
// entry, whose payload is no longer referenced by the cache.
func (c *ResourceCache[T]) upsert(key ResourceKey[T], version string, item T) (CachedResource[T], bool) {
	entry := c.kind.entry(key, version, item)

	c.mu.Lock()
	defer c.mu.Unlock()

	prev, existed := c.items[key]
	c.items[key] = entry
	return prev, existed
}

func (c *ResourceCache[T]) remove(key ResourceKey[T]) (CachedResource[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, existed := c.items[key]
	if existed {
		delete(c.items, key)
	}
	return prev, existed
}

// Get returns a copy of the entry for key. It blocks until the first
// Sync completed or ctx is done, in which case ErrNotSynced is
// returned. Handlers of this cache must use Peek instead.
func (c *ResourceCache[T]) Get(ctx context.Context, key ResourceKey[T]) (CachedResource[T], bool, error) {
	if err := c.WaitForSync(ctx); err != nil {
		return CachedResource[T]{}, false, err
	}

	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return CachedResource[T]{}, false, nil
	}
	return c.kind.copyEntry(entry), true, nil
}

// Peek returns a copy of the entry for key without waiting for the
// readiness gate. Before the first Sync completed a miss does not mean
// the resource is absent remotely.
func (c *ResourceCache[T]) Peek(key ResourceKey[T]) (CachedResource[T], bool) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return CachedResource[T]{}, false
	}
	return c.kind.copyEntry(entry), true
}

// Entries returns a point-in-time copy of every entry, ordered by key.
func (c *ResourceCache[T]) Entries() []CachedResource[T] {
	c.mu.RLock()
	out := make([]CachedResource[T], 0, len(c.items))
	for _, entry := range c.items {
		out = append(out, c.kind.copyEntry(entry))
	}
	c.mu.RUnlock()

	slices.SortFunc(out, func(a, b CachedResource[T]) int {
		return compareKeys(a.Key, b.Key)
	})
	return out
}

// Len returns the number of cached entries.
func (c *ResourceCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// HasSynced reports whether the first Sync has completed.
func (c *ResourceCache[T]) HasSynced() bool {
	select {
	case <-c.synced:
		return true
	default:
		return false
	}
}

// WaitForSync blocks until the first Sync has completed or ctx is
// done.
func (c *ResourceCache[T]) WaitForSync(ctx context.Context) error {
	select {
	case <-c.synced:
		return nil
	case <-ctx.Done():
		return &ErrNotSynced{Kind: c.kind.Name, Err: ctx.Err()}
	}
}

// Subscribe registers handler on the cache's event channel after
// replaying every current entry to it as an Added event. No change is
// applied between the replay and the registration, so the subscriber
// sees each transition exactly once.
//
// Handlers must not call Subscribe themselves.
func (c *ResourceCache[T]) Subscribe(name string, handler Handler[T]) *Subscription[T] {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	entries := c.Entries()
	initial := make([]ChangeEvent[T], 0, len(entries))
	for _, e := range entries {
		initial = append(initial, ChangeEvent[T]{Type: ChangeAdded, Key: e.Key, New: e.Object})
	}
	return c.events.SubscribeWithReplay(name, handler, initial)
}
