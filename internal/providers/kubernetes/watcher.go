package kubernetes

import (
	"fmt"
	"sync"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/watch"

	"github.com/otterscale/cassandra-operator/internal/core"
)

// watcher adapts a client-go watch.Interface to core.Watcher. The
// API server ends a watch by closing the result channel once
// TimeoutSeconds elapses, which surfaces here as a close with a nil
// Err.
type watcher[T any] struct {
	kind   string
	source watch.Interface
	out    chan core.WatchEvent[T]
	done   chan struct{}
	once   sync.Once

	mu  sync.Mutex
	err error
}

var _ core.Watcher[any] = (*watcher[any])(nil)

func newWatcher[T any](kind string, source watch.Interface) *watcher[T] {
	w := &watcher[T]{
		kind:   kind,
		source: source,
		out:    make(chan core.WatchEvent[T]),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *watcher[T]) ResultChan() <-chan core.WatchEvent[T] { return w.out }

func (w *watcher[T]) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *watcher[T]) Stop() {
	w.once.Do(func() {
		close(w.done)
		w.source.Stop()
	})
}

func (w *watcher[T]) run() {
	defer close(w.out)

	for {
		var (
			ev watch.Event
			ok bool
		)
		select {
		case <-w.done:
			return
		case ev, ok = <-w.source.ResultChan():
			if !ok {
				return
			}
		}

		out, err := w.translate(ev)
		if err != nil {
			w.mu.Lock()
			w.err = err
			w.mu.Unlock()
			w.source.Stop()
			return
		}

		select {
		case w.out <- out:
		case <-w.done:
			return
		}
	}
}

func (w *watcher[T]) translate(ev watch.Event) (core.WatchEvent[T], error) {
	if ev.Type == watch.Error {
		return core.WatchEvent[T]{
			Type: core.WatchEventError,
			Err:  classify(w.kind+" watch", apierrors.FromObject(ev.Object)),
		}, nil
	}

	var t core.WatchEventType
	switch ev.Type {
	case watch.Added:
		t = core.WatchEventAdded
	case watch.Modified:
		t = core.WatchEventModified
	case watch.Deleted:
		t = core.WatchEventDeleted
	case watch.Bookmark:
		t = core.WatchEventBookmark
	default:
		return core.WatchEvent[T]{Type: core.WatchEventType(ev.Type)}, nil
	}

	obj, ok := any(ev.Object).(T)
	if !ok {
		var zero T
		return core.WatchEvent[T]{}, fmt.Errorf("%s watch: unexpected object %T, want %T", w.kind, ev.Object, zero)
	}
	return core.WatchEvent[T]{Type: t, Object: obj}, nil
}
