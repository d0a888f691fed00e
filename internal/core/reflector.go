package core

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/apimachinery/pkg/util/wait"
)

// ReflectorState is the phase of a Reflector's control loop.
type ReflectorState string

const (
	StateSyncing  ReflectorState = "SYNCING"
	StateWatching ReflectorState = "WATCHING"
	StateStopped  ReflectorState = "STOPPED"
)

// tracerName is the instrumentation scope for reflector spans.
const tracerName = "github.com/otterscale/cassandra-operator/internal/core"

// DefaultBackoff paces resyncs after transient failures. Steps is
// small so the delay stops growing quickly; once exhausted Step keeps
// returning the capped duration.
var DefaultBackoff = wait.Backoff{
	Duration: 500 * time.Millisecond,
	Factor:   2,
	Jitter:   0.1,
	Steps:    8,
	Cap:      30 * time.Second,
}

// ReflectorOption configures a Reflector.
type ReflectorOption func(*reflectorOptions)

type reflectorOptions struct {
	observer Observer
	backoff  wait.Backoff
	log      *slog.Logger
}

// WithObserver configures the instrumentation sink.
func WithObserver(o Observer) ReflectorOption {
	return func(opts *reflectorOptions) { opts.observer = o }
}

// WithBackoff configures the delay between resyncs after transient
// failures.
func WithBackoff(b wait.Backoff) ReflectorOption {
	return func(opts *reflectorOptions) { opts.backoff = b }
}

// WithReflectorLogger configures a structured logger. Defaults to
// slog.Default with "component" and "kind" attributes.
func WithReflectorLogger(log *slog.Logger) ReflectorOption {
	return func(opts *reflectorOptions) { opts.log = log }
}

// Reflector keeps a ResourceCache synchronized with a ResourceStore by
// alternating between a full paginated list (SYNCING) and an
// incremental watch starting at the list's version (WATCHING). Any
// recoverable interruption of the watch sends it back to SYNCING; the
// full resync is what guarantees convergence, the watch only lowers
// latency.
//
// A Reflector runs once. After Run returns, or after Stop, it stays
// STOPPED.
type Reflector[T any] struct {
	kind     Kind[T]
	store    ResourceStore[T]
	events   *EventChannel[T]
	cache    *ResourceCache[T]
	observer Observer
	backoff  wait.Backoff
	log      *slog.Logger
	tracer   trace.Tracer

	state       atomic.Value // ReflectorState
	lastVersion atomic.Value // string

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

// NewReflector returns a Reflector for kind backed by store. The
// reflector owns a fresh EventChannel and ResourceCache.
func NewReflector[T any](kind Kind[T], store ResourceStore[T], opts ...ReflectorOption) (*Reflector[T], error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("reflector: resource store is required")
	}

	o := reflectorOptions{backoff: DefaultBackoff}
	for _, opt := range opts {
		opt(&o)
	}
	if o.observer == nil {
		o.observer = NopObserver{}
	}
	if o.log == nil {
		o.log = slog.Default().With("component", "reflector", "kind", kind.Name)
	}

	events := NewEventChannel[T](kind.Name, o.observer)
	r := &Reflector[T]{
		kind:     kind,
		store:    store,
		events:   events,
		cache:    NewResourceCache(kind, events, o.observer),
		observer: o.observer,
		backoff:  o.backoff,
		log:      o.log,
		tracer:   otel.Tracer(tracerName),
	}
	r.state.Store(StateSyncing)
	r.lastVersion.Store("")
	return r, nil
}

// Kind returns the resource kind name.
func (r *Reflector[T]) Kind() string { return r.kind.Name }

// Cache returns the reflector's cache for typed reads.
func (r *Reflector[T]) Cache() *ResourceCache[T] { return r.cache }

// State returns the current loop phase.
func (r *Reflector[T]) State() ReflectorState {
	return r.state.Load().(ReflectorState)
}

// LastSyncResourceVersion returns the version marker of the latest
// successful resync.
func (r *Reflector[T]) LastSyncResourceVersion() string {
	return r.lastVersion.Load().(string)
}

// Subscribe registers a handler for this kind's change events,
// replaying the current cache contents first.
func (r *Reflector[T]) Subscribe(name string, handler Handler[T]) *Subscription[T] {
	return r.cache.Subscribe(name, handler)
}

// Start runs the loop until ctx is cancelled, Stop is called, or a
// fatal error occurs. It satisfies transport.Listener.
func (r *Reflector[T]) Start(ctx context.Context) error {
	return r.Run(ctx)
}

// Stop marks the reflector as stopped and cancels any in-flight list
// or watch call. Run returns nil shortly after.
func (r *Reflector[T]) Stop(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopped = true
	if r.cancel != nil {
		r.cancel()
	}
	return nil
}

// Run executes the SYNCING -> WATCHING -> SYNCING ... loop. It returns
// nil on shutdown and an *ErrFatalWatch when the remote store fails in
// a way a resync cannot recover from.
func (r *Reflector[T]) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	defer func() {
		cancel()
		r.mu.Lock()
		r.stopped = true
		r.mu.Unlock()
		r.setState(StateStopped)
	}()

	r.log.Info("starting")
	backoff := r.backoff

	for {
		if r.stopping(ctx) {
			r.log.Info("stopped")
			return nil
		}

		r.setState(StateSyncing)
		version, err := r.resync(ctx)
		if err != nil {
			if r.stopping(ctx) {
				r.log.Info("stopped")
				return nil
			}
			if !IsTransient(err) {
				return &ErrFatalWatch{Kind: r.kind.Name, Phase: "resync", Err: err}
			}
			r.observer.ObserveWatchRestart(r.kind.Name, "list-error")
			delay := backoff.Step()
			r.log.Warn("resync failed, retrying", "error", err, "delay", delay)
			sleep(ctx, delay)
			continue
		}
		r.lastVersion.Store(version)

		r.setState(StateWatching)
		out, err := r.watch(ctx, version)
		if err != nil {
			if r.stopping(ctx) {
				r.log.Info("stopped")
				return nil
			}
			return &ErrFatalWatch{Kind: r.kind.Name, Phase: "watch", Err: err}
		}
		if out.reason == reasonShutdown {
			continue
		}

		r.observer.ObserveWatchRestart(r.kind.Name, out.reason)
		if out.healthy {
			backoff = r.backoff
			r.log.Debug("watch ended, resyncing", "reason", out.reason, "events", out.events)
			continue
		}

		delay := backoff.Step()
		r.log.Warn("watch interrupted, resyncing", "reason", out.reason, "error", out.err, "delay", delay)
		sleep(ctx, delay)
	}
}

// resync lists every page from the store and reconciles the cache
// against the result. It returns the list's version marker.
func (r *Reflector[T]) resync(ctx context.Context) (string, error) {
	ctx, span := r.tracer.Start(ctx, "Reflector.resync",
		trace.WithAttributes(attribute.String("cassandra.resource.kind", r.kind.Name)),
	)
	defer span.End()

	start := time.Now()
	items, version, err := r.listAll(ctx)
	if err == nil {
		err = r.cache.Sync(items)
	}
	elapsed := time.Since(start)
	r.observer.ObserveResync(r.kind.Name, len(items), elapsed, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(
		attribute.Int("cassandra.resync.items", len(items)),
		attribute.String("cassandra.resync.version", version),
	)
	r.log.Debug("resync completed", "items", len(items), "version", version, "elapsed", elapsed)
	return version, nil
}

// listAll follows continuation tokens until the last page. The version
// marker of the first page identifies the snapshot; later pages of the
// same list report the same marker.
func (r *Reflector[T]) listAll(ctx context.Context) ([]T, string, error) {
	var (
		items   []T
		version string
		token   string
	)
	for {
		page, err := r.store.List(ctx, token)
		if err != nil {
			return nil, "", err
		}
		items = append(items, page.Items...)
		if version == "" {
			version = page.ResourceVersion
		}
		if page.Continue == "" {
			return items, version, nil
		}
		token = page.Continue
	}
}

// Reasons a watch returns to SYNCING.
const (
	reasonShutdown    = "shutdown"
	reasonTimeout     = "timeout"
	reasonErrorEvent  = "error-event"
	reasonOpenFailed  = "open-failed"
	reasonStreamError = "stream-error"
	reasonUnknownType = "unknown-event"
)

type watchOutcome struct {
	reason  string
	healthy bool
	events  int
	err     error
}

// watch consumes one watch stream. A nil error means the loop should
// resync; a non-nil error is fatal.
func (r *Reflector[T]) watch(ctx context.Context, version string) (watchOutcome, error) {
	w, err := r.store.Watch(ctx, version)
	if err != nil {
		if IsTransient(err) {
			return watchOutcome{reason: reasonOpenFailed, err: err}, nil
		}
		return watchOutcome{}, err
	}
	defer w.Stop()

	out := watchOutcome{}
	for {
		select {
		case <-ctx.Done():
			out.reason = reasonShutdown
			return out, nil

		case ev, ok := <-w.ResultChan():
			if !ok {
				err := w.Err()
				switch {
				case err == nil:
					out.reason = reasonTimeout
					out.healthy = true
					return out, nil
				case IsTransient(err):
					out.reason = reasonStreamError
					out.healthy = out.events > 0
					out.err = err
					return out, nil
				default:
					return out, err
				}
			}

			switch ev.Type {
			case WatchEventAdded:
				err = r.cache.Apply(ChangeAdded, ev.Object)
			case WatchEventModified:
				err = r.cache.Apply(ChangeModified, ev.Object)
			case WatchEventDeleted:
				err = r.cache.Apply(ChangeDeleted, ev.Object)
			case WatchEventBookmark:
				continue
			case WatchEventError:
				out.reason = reasonErrorEvent
				out.healthy = out.events > 0
				out.err = ev.Err
				return out, nil
			default:
				out.reason = reasonUnknownType
				out.err = errors.New("unknown watch event type " + string(ev.Type))
				return out, nil
			}
			if err != nil {
				return out, err
			}
			out.events++
		}
	}
}

func (r *Reflector[T]) stopping(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

func (r *Reflector[T]) setState(s ReflectorState) {
	if prev := r.state.Swap(s); prev != s {
		r.log.Debug("state changed", "from", prev, "to", s)
	}
	r.observer.ObserveState(r.kind.Name, s)
}

// sleep waits for d or until ctx is done. It reports whether the full
// delay elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
