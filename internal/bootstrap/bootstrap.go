// Package bootstrap installs the operator's CustomResourceDefinitions
// with Server-Side Apply and waits until the API server serves them,
// so that the custom resource loops can list on their first attempt.
//
// Re-running bootstrap on a cluster that already has the CRDs is a
// no-op, or a controlled schema update.
package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"
	"time"

	"k8s.io/client-go/dynamic"

	"github.com/otterscale/cassandra-operator/internal/providers/kubernetes"
	"github.com/otterscale/cassandra-operator/manifests"
)

// fieldManager is the SSA field manager identifier used for every
// applied CRD.
const fieldManager = "cassandra-operator"

const (
	defaultPollInterval = 2 * time.Second
	defaultPollTimeout  = time.Minute
)

// Bootstrapper applies the embedded CRDs to the cluster.
type Bootstrapper struct {
	dynamic dynamic.Interface
	files   fs.FS
	dir     string
	log     *slog.Logger

	pollInterval time.Duration
	pollTimeout  time.Duration
}

// New returns a Bootstrapper applying manifests.CRDs.
func New(k *kubernetes.Kubernetes) *Bootstrapper {
	return &Bootstrapper{
		dynamic:      k.Dynamic,
		files:        manifests.CRDs,
		dir:          "crds",
		log:          slog.Default().With("component", "bootstrap"),
		pollInterval: defaultPollInterval,
		pollTimeout:  defaultPollTimeout,
	}
}

// Run applies every embedded CRD file in lexicographic order and
// blocks until all of them are Established.
func (b *Bootstrapper) Run(ctx context.Context) error {
	b.log.Info("installing custom resource definitions")

	entries, err := fs.ReadDir(b.files, b.dir)
	if err != nil {
		return fmt.Errorf("read embedded manifests directory: %w", err)
	}
	slices.SortFunc(entries, func(x, y fs.DirEntry) int {
		return strings.Compare(x.Name(), y.Name())
	})

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		data, err := fs.ReadFile(b.files, path.Join(b.dir, name))
		if err != nil {
			return fmt.Errorf("read manifest %s: %w", name, err)
		}

		applied, err := b.applyManifest(ctx, data)
		if err != nil {
			return fmt.Errorf("apply manifest %s: %w", name, err)
		}
		names = append(names, applied...)
	}

	if err := b.waitForCRDs(ctx, names); err != nil {
		return err
	}
	b.log.Info("custom resource definitions installed", "count", len(names))
	return nil
}

