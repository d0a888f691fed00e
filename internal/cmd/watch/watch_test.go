package watch

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/otterscale/cassandra-operator/internal/core"
	"github.com/otterscale/cassandra-operator/internal/providers/kubernetes"
)

// syncBuffer guards a bytes.Buffer written by the event handler.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	cs := fake.NewSimpleClientset(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Namespace: "db", Name: "cassandra-yaml", ResourceVersion: "4"},
	})
	k := kubernetes.NewForClients(dynamicfake.NewSimpleDynamicClient(runtime.NewScheme()), cs)
	reg, err := kubernetes.NewRegistry(k, kubernetes.RegistryOptions{Backoff: core.DefaultBackoff})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return NewWatcher(reg)
}

func TestWatcher_PrintsEvents(t *testing.T) {
	t.Parallel()

	w := newTestWatcher(t)
	out := &syncBuffer{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, kubernetes.KindConfigMaps, out) }()

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(out.String(), "cassandra-yaml") {
		if time.Now().After(deadline) {
			t.Fatalf("no event printed, output %q", out.String())
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "TYPE") {
		t.Fatalf("output = %q", out.String())
	}
	fields := strings.Fields(lines[1])
	want := []string{"Added", "db", "cassandra-yaml", "4"}
	if strings.Join(fields, " ") != strings.Join(want, " ") {
		t.Fatalf("event line = %q, want fields %v", lines[1], want)
	}
}

func TestWatcher_UnknownKind(t *testing.T) {
	t.Parallel()

	w := newTestWatcher(t)
	if err := w.Run(context.Background(), "pods", &bytes.Buffer{}); err == nil {
		t.Fatal("Run(pods) succeeded, want ErrKindNotFound")
	}
}
