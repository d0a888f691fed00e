package controller

import (
	"context"
	"log/slog"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/otterscale/cassandra-operator/internal/core"
	"github.com/otterscale/cassandra-operator/internal/providers/kubernetes"
)

// PhasePending is the phase of a backup request that has not started.
// A request without a phase is pending too.
const PhasePending = "Pending"

// BackupController counts pending backup requests per namespace.
type BackupController struct {
	gauges Gauges
	log    *slog.Logger

	backups *core.ResourceCache[*unstructured.Unstructured]
}

func NewBackupController(gauges Gauges, log *slog.Logger) *BackupController {
	if log == nil {
		log = slog.Default()
	}
	return &BackupController{gauges: gauges, log: log.With("controller", "backups")}
}

func (c *BackupController) Name() string { return "backups" }

func (c *BackupController) Setup(_ context.Context, informers *core.Informers) ([]func(), error) {
	backups, err := core.ReflectorFor[*unstructured.Unstructured](informers, kubernetes.KindBackups)
	if err != nil {
		return nil, err
	}
	c.backups = backups.Cache()
	return []func(){backups.Subscribe(c.Name(), c.onBackup).Cancel}, nil
}

// onBackup recounts the namespace of the changed request. The cache
// already reflects the change when the handler runs.
func (c *BackupController) onBackup(ev core.ChangeEvent[*unstructured.Unstructured]) error {
	ns := ev.Key.Namespace
	n := 0
	for _, entry := range c.backups.Entries() {
		if entry.Key.Namespace == ns && IsPending(entry.Object) {
			n++
		}
	}
	c.gauges.SetBackupsPending(ns, n)
	c.log.Debug("pending backups recounted", "namespace", ns, "pending", n, "trigger", ev.Key.Name)
	return nil
}

// IsPending reports whether a backup request has not reached any
// phase beyond Pending.
func IsPending(backup *unstructured.Unstructured) bool {
	phase, _, _ := unstructured.NestedString(backup.Object, "spec", "phase")
	return phase == "" || strings.EqualFold(phase, PhasePending)
}
