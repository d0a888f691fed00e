package cmd

import (
	"io"
	"strings"
	"testing"

	"k8s.io/apimachinery/pkg/runtime"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/otterscale/cassandra-operator/internal/cmd/watch"
	"github.com/otterscale/cassandra-operator/internal/config"
	"github.com/otterscale/cassandra-operator/internal/core"
	"github.com/otterscale/cassandra-operator/internal/providers/kubernetes"
)

func TestWatchCommand_MissingKindListsKinds(t *testing.T) {
	t.Parallel()

	k := kubernetes.NewForClients(dynamicfake.NewSimpleDynamicClient(runtime.NewScheme()), fake.NewSimpleClientset())
	reg, err := kubernetes.NewRegistry(k, kubernetes.RegistryOptions{Backoff: core.DefaultBackoff})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	conf, err := config.New()
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}
	c, err := NewWatchCommand(conf, func() (*watch.Watcher, func(), error) {
		return watch.NewWatcher(reg), func() {}, nil
	})
	if err != nil {
		t.Fatalf("NewWatchCommand: %v", err)
	}
	c.SetArgs([]string{})
	c.SetOut(io.Discard)
	c.SetErr(io.Discard)

	err = c.Execute()
	if err == nil {
		t.Fatal("Execute() without --kind succeeded, want error")
	}
	for _, kind := range reg.Kinds() {
		if !strings.Contains(err.Error(), kind) {
			t.Fatalf("error %q does not list kind %q", err, kind)
		}
	}
}
