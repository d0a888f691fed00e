package kubernetes

import (
	"context"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/dynamic"
	"k8s.io/utils/ptr"

	"github.com/otterscale/cassandra-operator/internal/core"
)

// StoreOptions tunes the list and watch calls of a Store.
type StoreOptions struct {
	// Namespace restricts the store to one namespace; empty means all.
	Namespace string
	// PageSize is the Limit of each list call; zero disables paging.
	PageSize int64
	// WatchTimeout is the server-side timeout of each watch call. The
	// effective timeout is jittered up to twice this value so that
	// loops of different kinds do not resync in lockstep.
	WatchTimeout time.Duration
}

type (
	listPage[T any] func(ctx context.Context, opts metav1.ListOptions) ([]T, metav1.ListMeta, error)
	openWatch       func(ctx context.Context, opts metav1.ListOptions) (watch.Interface, error)
)

// Store is a core.ResourceStore backed by the Kubernetes API.
type Store[T any] struct {
	kind  string
	opts  StoreOptions
	list  listPage[T]
	watch openWatch
}

var _ core.ResourceStore[any] = (*Store[any])(nil)

func newStore[T any](kind string, opts StoreOptions, list listPage[T], watch openWatch) *Store[T] {
	return &Store[T]{kind: kind, opts: opts, list: list, watch: watch}
}

// List returns one page of the kind's objects.
func (s *Store[T]) List(ctx context.Context, continueToken string) (*core.ListResult[T], error) {
	items, meta, err := s.list(ctx, metav1.ListOptions{
		Limit:    s.opts.PageSize,
		Continue: continueToken,
	})
	if err != nil {
		return nil, classify(s.kind+" list", err)
	}
	return &core.ListResult[T]{
		Items:           items,
		Continue:        meta.Continue,
		ResourceVersion: meta.ResourceVersion,
	}, nil
}

// Watch opens a watch starting after sinceVersion with bookmarks
// enabled.
func (s *Store[T]) Watch(ctx context.Context, sinceVersion string) (core.Watcher[T], error) {
	opts := metav1.ListOptions{
		ResourceVersion:     sinceVersion,
		AllowWatchBookmarks: true,
	}
	if s.opts.WatchTimeout > 0 {
		timeout := wait.Jitter(s.opts.WatchTimeout, 1.0)
		opts.TimeoutSeconds = ptr.To(int64(timeout.Seconds()))
	}

	w, err := s.watch(ctx, opts)
	if err != nil {
		return nil, classify(s.kind+" watch", err)
	}
	return newWatcher[T](s.kind, w), nil
}

// NewDynamicStore returns a store for a custom resource served through
// the dynamic client.
func NewDynamicStore(client dynamic.Interface, kind string, gvr schema.GroupVersionResource, opts StoreOptions) *Store[*unstructured.Unstructured] {
	ri := client.Resource(gvr).Namespace(opts.Namespace)
	return newStore[*unstructured.Unstructured](kind, opts,
		func(ctx context.Context, lo metav1.ListOptions) ([]*unstructured.Unstructured, metav1.ListMeta, error) {
			list, err := ri.List(ctx, lo)
			if err != nil {
				return nil, metav1.ListMeta{}, err
			}
			items := make([]*unstructured.Unstructured, 0, len(list.Items))
			for i := range list.Items {
				items = append(items, &list.Items[i])
			}
			return items, metav1.ListMeta{
				ResourceVersion: list.GetResourceVersion(),
				Continue:        list.GetContinue(),
			}, nil
		},
		ri.Watch,
	)
}
