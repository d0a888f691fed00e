package core

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

type testObj struct {
	Namespace string
	Name      string
	Version   string
	Data      map[string]string
}

func obj(ns, name, version string) *testObj {
	return &testObj{Namespace: ns, Name: name, Version: version, Data: map[string]string{}}
}

func (o *testObj) with(k, v string) *testObj {
	o.Data[k] = v
	return o
}

var testKind = Kind[*testObj]{
	Name: "testobjs",
	KeyOf: func(o *testObj) (ResourceKey[*testObj], error) {
		if o.Name == "" {
			return ResourceKey[*testObj]{}, errors.New("missing name")
		}
		return NewResourceKey[*testObj](o.Namespace, o.Name), nil
	},
	VersionOf: func(o *testObj) (string, error) {
		if o.Version == "" {
			return "", errors.New("missing version")
		}
		return o.Version, nil
	},
	Copy: func(o *testObj) *testObj {
		c := *o
		c.Data = maps.Clone(o.Data)
		return &c
	},
	Encode: func(o *testObj) (map[string]any, error) {
		m := map[string]any{"name": o.Name, "namespace": o.Namespace}
		for k, v := range o.Data {
			m[k] = v
		}
		return m, nil
	},
}

func key(ns, name string) ResourceKey[*testObj] {
	return NewResourceKey[*testObj](ns, name)
}

// eventLog records events delivered to a handler.
type eventLog struct {
	mu     sync.Mutex
	events []ChangeEvent[*testObj]
}

func (l *eventLog) handle(ev ChangeEvent[*testObj]) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	return nil
}

func (l *eventLog) snapshot() []ChangeEvent[*testObj] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.events)
}

func (l *eventLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func newTestCache(t *testing.T) (*ResourceCache[*testObj], *eventLog) {
	t.Helper()
	ch := NewEventChannel[*testObj](testKind.Name, nil)
	log := &eventLog{}
	ch.Subscribe("test", log.handle)
	return NewResourceCache(testKind, ch, nil), log
}

// fakeStore is an in-memory ResourceStore with scripted failures.
type fakeStore struct {
	mu        sync.Mutex
	items     map[ResourceKey[*testObj]]*testObj
	version   int
	pageSize  int
	listErrs  []error
	watchErrs []error
	lists     int

	watchers chan *fakeWatcher
}

func newFakeStore(items ...*testObj) *fakeStore {
	s := &fakeStore{
		items:    make(map[ResourceKey[*testObj]]*testObj),
		watchers: make(chan *fakeWatcher, 16),
	}
	for _, o := range items {
		s.items[key(o.Namespace, o.Name)] = o
	}
	s.version = len(items)
	return s
}

func (s *fakeStore) put(o *testObj) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	s.items[key(o.Namespace, o.Name)] = o
}

func (s *fakeStore) listCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists
}

func (s *fakeStore) List(ctx context.Context, token string) (*ListResult[*testObj], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.lists++
	if len(s.listErrs) > 0 {
		err := s.listErrs[0]
		s.listErrs = s.listErrs[1:]
		return nil, err
	}

	keys := slices.SortedFunc(maps.Keys(s.items), compareKeys[*testObj])
	offset := 0
	if token != "" {
		offset, _ = strconv.Atoi(token)
	}
	end := len(keys)
	if s.pageSize > 0 && offset+s.pageSize < end {
		end = offset + s.pageSize
	}

	res := &ListResult[*testObj]{ResourceVersion: strconv.Itoa(s.version)}
	for _, k := range keys[offset:end] {
		res.Items = append(res.Items, testKind.Copy(s.items[k]))
	}
	if end < len(keys) {
		res.Continue = strconv.Itoa(end)
	}
	return res, nil
}

func (s *fakeStore) Watch(ctx context.Context, since string) (Watcher[*testObj], error) {
	s.mu.Lock()
	if len(s.watchErrs) > 0 {
		err := s.watchErrs[0]
		s.watchErrs = s.watchErrs[1:]
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	w := &fakeWatcher{since: since, ch: make(chan WatchEvent[*testObj], 16)}
	s.watchers <- w
	return w, nil
}

type fakeWatcher struct {
	since string
	ch    chan WatchEvent[*testObj]
	once  sync.Once

	mu      sync.Mutex
	err     error
	stopped bool
}

func (w *fakeWatcher) ResultChan() <-chan WatchEvent[*testObj] { return w.ch }

func (w *fakeWatcher) Stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
	w.once.Do(func() { close(w.ch) })
}

func (w *fakeWatcher) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *fakeWatcher) send(t WatchEventType, o *testObj) {
	w.ch <- WatchEvent[*testObj]{Type: t, Object: o}
}

func (w *fakeWatcher) sendError(err error) {
	w.ch <- WatchEvent[*testObj]{Type: WatchEventError, Err: err}
}

// end closes the stream as the remote side would; a nil err is a read
// timeout.
func (w *fakeWatcher) end(err error) {
	w.mu.Lock()
	w.err = err
	w.mu.Unlock()
	w.once.Do(func() { close(w.ch) })
}

func (w *fakeWatcher) isStopped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopped
}

var testBackoff = wait.Backoff{Duration: time.Millisecond, Factor: 1, Steps: 1}

func newTestReflector(t *testing.T, store ResourceStore[*testObj]) (*Reflector[*testObj], *eventLog) {
	t.Helper()
	r, err := NewReflector(testKind, store, WithBackoff(testBackoff))
	if err != nil {
		t.Fatalf("NewReflector: %v", err)
	}
	log := &eventLog{}
	r.Subscribe("test", log.handle)
	return r, log
}

// runReflector starts r in the background and returns a channel that
// receives Run's result.
func runReflector(ctx context.Context, r *Reflector[*testObj]) <-chan error {
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	return done
}

func nextWatcher(t *testing.T, s *fakeStore) *fakeWatcher {
	t.Helper()
	select {
	case w := <-s.watchers:
		return w
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch to open")
		return nil
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func waitResult(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reflector to return")
		return nil
	}
}

func eventTypes(events []ChangeEvent[*testObj]) []ChangeType {
	out := make([]ChangeType, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Type)
	}
	return out
}
