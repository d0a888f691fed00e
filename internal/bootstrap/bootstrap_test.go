package bootstrap

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/otterscale/cassandra-operator/internal/providers/kubernetes"
	"github.com/otterscale/cassandra-operator/manifests"
)

const crdYAML = `---
apiVersion: apiextensions.k8s.io/v1
kind: CustomResourceDefinition
metadata:
  name: widgets.example.com
spec:
  group: example.com
---
apiVersion: apiextensions.k8s.io/v1
kind: CustomResourceDefinition
metadata:
  name: gadgets.example.com
spec:
  group: example.com
`

// fakeAPIServer records SSA patches and reports a CRD as Established
// after it has been read establishAfter times.
type fakeAPIServer struct {
	mu             sync.Mutex
	patched        []string
	fieldManagers  []string
	gets           map[string]int
	establishAfter int
}

func (s *fakeAPIServer) install(client *dynamicfake.FakeDynamicClient) {
	client.PrependReactor("patch", "customresourcedefinitions", func(action k8stesting.Action) (bool, runtime.Object, error) {
		patch := action.(k8stesting.PatchAction)
		s.mu.Lock()
		defer s.mu.Unlock()
		if patch.GetPatchType() != types.ApplyPatchType {
			return true, nil, nil
		}
		s.patched = append(s.patched, patch.GetName())
		return true, &unstructured.Unstructured{}, nil
	})
	client.PrependReactor("get", "customresourcedefinitions", func(action k8stesting.Action) (bool, runtime.Object, error) {
		name := action.(k8stesting.GetAction).GetName()
		s.mu.Lock()
		defer s.mu.Unlock()
		s.gets[name]++

		obj := &unstructured.Unstructured{Object: map[string]any{}}
		obj.SetName(name)
		if s.gets[name] > s.establishAfter {
			_ = unstructured.SetNestedSlice(obj.Object, []any{
				map[string]any{"type": "Established", "status": "True"},
			}, "status", "conditions")
		}
		return true, obj, nil
	})
}

func newTestBootstrapper(t *testing.T, files fstest.MapFS, server *fakeAPIServer) *Bootstrapper {
	t.Helper()
	client := dynamicfake.NewSimpleDynamicClient(runtime.NewScheme())
	server.install(client)
	return &Bootstrapper{
		dynamic:      client,
		files:        files,
		dir:          "crds",
		log:          slog.Default(),
		pollInterval: 10 * time.Millisecond,
		pollTimeout:  time.Second,
	}
}

func TestBootstrapper_AppliesAndWaits(t *testing.T) {
	t.Parallel()

	server := &fakeAPIServer{gets: map[string]int{}, establishAfter: 2}
	b := newTestBootstrapper(t, fstest.MapFS{
		"crds/10-widgets.yaml": {Data: []byte(crdYAML)},
	}, server)

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if diff := cmp.Diff([]string{"widgets.example.com", "gadgets.example.com"}, server.patched); diff != "" {
		t.Fatalf("patched CRDs mismatch (-want +got):\n%s", diff)
	}
	for name, n := range server.gets {
		if n != 3 {
			t.Fatalf("CRD %s polled %d times, want 3", name, n)
		}
	}
}

func TestBootstrapper_TimesOutWhenNotEstablished(t *testing.T) {
	t.Parallel()

	server := &fakeAPIServer{gets: map[string]int{}, establishAfter: 1 << 30}
	b := newTestBootstrapper(t, fstest.MapFS{
		"crds/widgets.yaml": {Data: []byte(crdYAML)},
	}, server)
	b.pollTimeout = 50 * time.Millisecond

	if err := b.Run(context.Background()); err == nil {
		t.Fatal("Run succeeded although the CRD never became established")
	}
}

func TestBootstrapper_RejectsOtherKinds(t *testing.T) {
	t.Parallel()

	server := &fakeAPIServer{gets: map[string]int{}}
	b := newTestBootstrapper(t, fstest.MapFS{
		"crds/cm.yaml": {Data: []byte("apiVersion: v1\nkind: ConfigMap\nmetadata:\n  name: x\n")},
	}, server)

	if err := b.Run(context.Background()); err == nil {
		t.Fatal("Run applied a non-CRD manifest")
	}
	if len(server.patched) != 0 {
		t.Fatalf("patched = %v, want nothing", server.patched)
	}
}

func TestEmbeddedCRDsMatchTrackedKinds(t *testing.T) {
	t.Parallel()

	want := map[string]bool{
		kubernetes.ClusterGVR.Resource + "." + kubernetes.Group:    true,
		kubernetes.DatacenterGVR.Resource + "." + kubernetes.Group: true,
		kubernetes.BackupGVR.Resource + "." + kubernetes.Group:     true,
	}

	entries, err := manifests.CRDs.ReadDir("crds")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	got := map[string]bool{}
	for _, e := range entries {
		data, err := manifests.CRDs.ReadFile("crds/" + e.Name())
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		objs, err := parseMultiDoc(data)
		if err != nil {
			t.Fatalf("parse %s: %v", e.Name(), err)
		}
		for _, obj := range objs {
			versions, _, _ := unstructured.NestedSlice(obj.Object, "spec", "versions")
			if len(versions) != 1 || versions[0].(map[string]any)["name"] != kubernetes.Version {
				t.Fatalf("CRD %s does not serve exactly %s", obj.GetName(), kubernetes.Version)
			}
			got[obj.GetName()] = true
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("embedded CRDs mismatch (-want +got):\n%s", diff)
	}
}
