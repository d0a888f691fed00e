package core

import "context"

// WatchEventType represents the type of a resource watch event.
// This is a domain-level type that decouples the core layer from
// k8s.io/apimachinery/pkg/watch.EventType.
type WatchEventType string

const (
	WatchEventAdded    WatchEventType = "ADDED"
	WatchEventModified WatchEventType = "MODIFIED"
	WatchEventDeleted  WatchEventType = "DELETED"
	WatchEventBookmark WatchEventType = "BOOKMARK"
	WatchEventError    WatchEventType = "ERROR"
)

// WatchEvent represents a single message from a watch stream. Object
// is set for ADDED, MODIFIED, DELETED and BOOKMARK; Err carries the
// decoded error payload of an ERROR message.
type WatchEvent[T any] struct {
	Type   WatchEventType
	Object T
	Err    error
}

// Watcher provides a channel of WatchEvents and a way to stop the
// underlying watch.
type Watcher[T any] interface {
	// ResultChan returns a channel that receives watch events.
	// The channel is closed when the watch ends or Stop is called.
	ResultChan() <-chan WatchEvent[T]
	// Stop terminates the watch and closes the result channel.
	Stop()
	// Err reports why the stream ended once ResultChan is closed. A
	// nil error means the remote side closed the stream normally
	// (read timeout); anything else is a transport failure.
	Err() error
}

// ListResult is one page of a paginated list call.
type ListResult[T any] struct {
	Items []T
	// Continue is the continuation token for the next page; empty on
	// the last page.
	Continue string
	// ResourceVersion is the list's version marker, used to start the
	// subsequent watch.
	ResourceVersion string
}

// ResourceStore is the remote authoritative store for one resource
// kind. Implementations live in the providers layer.
type ResourceStore[T any] interface {
	// List returns one page of items. An empty continueToken requests
	// the first page.
	List(ctx context.Context, continueToken string) (*ListResult[T], error)
	// Watch opens a change stream starting after sinceVersion.
	Watch(ctx context.Context, sinceVersion string) (Watcher[T], error)
}
