package transport

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeListener struct {
	startErr error
	started  atomic.Bool
	stopped  atomic.Bool
}

func (l *fakeListener) Start(ctx context.Context) error {
	l.started.Store(true)
	if l.startErr != nil {
		return l.startErr
	}
	<-ctx.Done()
	return nil
}

func (l *fakeListener) Stop(context.Context) error {
	l.stopped.Store(true)
	return nil
}

func TestServe_StopsAllOnCancel(t *testing.T) {
	t.Parallel()

	a, b := &fakeListener{}, &fakeListener{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, a, b) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
	if !a.stopped.Load() || !b.stopped.Load() {
		t.Fatal("not every listener was stopped")
	}
}

func TestServe_FailureCancelsOthers(t *testing.T) {
	t.Parallel()

	boom := errors.New("fatal loop failure")
	failing := &kindListener{fakeListener: fakeListener{startErr: boom}, kind: "statefulsets"}
	healthy := &fakeListener{}

	done := make(chan error, 1)
	go func() { done <- Serve(context.Background(), failing, healthy) }()

	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Fatalf("Serve() = %v, want %v", err, boom)
		}
		var le *ListenerError
		if !errors.As(err, &le) || le.Name != "statefulsets" {
			t.Fatalf("Serve() = %v, want a ListenerError naming statefulsets", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after a listener failed")
	}
	if !healthy.stopped.Load() {
		t.Fatal("healthy listener was not stopped")
	}
}

type kindListener struct {
	fakeListener
	kind string
}

func (l *kindListener) Kind() string { return l.kind }

type namedListener struct {
	fakeListener
}

func (*namedListener) Name() string { return "status-server" }

func TestNameOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		li   Listener
		want string
	}{
		{name: "named", li: &namedListener{}, want: "status-server"},
		{name: "resource loop", li: &kindListener{kind: "cassandradatacenters"}, want: "cassandradatacenters"},
		{name: "fallback to type", li: &fakeListener{}, want: "*transport.fakeListener"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := NameOf(tc.li); got != tc.want {
				t.Fatalf("NameOf() = %q, want %q", got, tc.want)
			}
		})
	}
}
