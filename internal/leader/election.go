// Package leader gates the controllers behind a Lease so that only one
// operator replica reconciles at a time. Informers and the read API
// keep running on every replica.
package leader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	coordinationv1 "k8s.io/client-go/kubernetes/typed/coordination/v1"
	"k8s.io/client-go/tools/leaderelection"
	"k8s.io/client-go/tools/leaderelection/resourcelock"
)

const serviceAccountNamespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

// Elector runs Kubernetes Lease leader election.
type Elector struct {
	namespace string
	leaseName string
	identity  string

	leaseDuration time.Duration
	renewDeadline time.Duration
	retryPeriod   time.Duration

	isLeader atomic.Bool

	client coordinationv1.CoordinationV1Interface
}

type Config struct {
	// Namespace where the Lease object lives. If empty, it is detected
	// from POD_NAMESPACE or the mounted service account.
	Namespace string
	// LeaseName is the name of the Lease object.
	LeaseName string
	// Identity is the unique identity of this replica. If empty,
	// POD_NAME is used, falling back to the hostname plus a random suffix.
	Identity string

	LeaseDuration time.Duration
	RenewDeadline time.Duration
	RetryPeriod   time.Duration
}

func NewElector(client coordinationv1.CoordinationV1Interface, cfg Config) (*Elector, error) {
	ns := cfg.Namespace
	if ns == "" {
		ns = detectNamespace()
	}
	if ns == "" {
		return nil, errors.New("unable to detect leader election namespace; set POD_NAMESPACE or --leader-namespace")
	}
	if cfg.LeaseName == "" {
		return nil, errors.New("leader election lease name is empty")
	}

	identity := cfg.Identity
	if identity == "" {
		identity = detectIdentity()
	}

	e := &Elector{
		namespace:     ns,
		leaseName:     cfg.LeaseName,
		identity:      identity,
		leaseDuration: cfg.LeaseDuration,
		renewDeadline: cfg.RenewDeadline,
		retryPeriod:   cfg.RetryPeriod,
		client:        client,
	}
	if e.leaseDuration == 0 {
		e.leaseDuration = 15 * time.Second
	}
	if e.renewDeadline == 0 {
		e.renewDeadline = 10 * time.Second
	}
	if e.retryPeriod == 0 {
		e.retryPeriod = 2 * time.Second
	}
	return e, nil
}

func (e *Elector) IsLeader() bool {
	return e.isLeader.Load()
}

func (e *Elector) Identity() string {
	return e.identity
}

// Holder returns the identity currently recorded in the Lease.
func (e *Elector) Holder(ctx context.Context) (string, error) {
	lease, err := e.client.Leases(e.namespace).Get(ctx, e.leaseName, metav1.GetOptions{})
	if err != nil {
		return "", err
	}
	if lease.Spec.HolderIdentity == nil || strings.TrimSpace(*lease.Spec.HolderIdentity) == "" {
		return "", errors.New("lease has no holder identity yet")
	}
	return strings.TrimSpace(*lease.Spec.HolderIdentity), nil
}

// Run blocks until ctx is done or leadership is lost. The returned
// error is only for lock creation failures.
func (e *Elector) Run(ctx context.Context, onStartedLeading func(context.Context), onStoppedLeading func()) error {
	lock := &resourcelock.LeaseLock{
		LeaseMeta: metav1.ObjectMeta{
			Name:      e.leaseName,
			Namespace: e.namespace,
		},
		Client: e.client,
		LockConfig: resourcelock.ResourceLockConfig{
			Identity: e.identity,
		},
	}

	lec := leaderelection.LeaderElectionConfig{
		Lock:          lock,
		LeaseDuration: e.leaseDuration,
		RenewDeadline: e.renewDeadline,
		RetryPeriod:   e.retryPeriod,
		Callbacks: leaderelection.LeaderCallbacks{
			OnStartedLeading: func(c context.Context) {
				e.isLeader.Store(true)
				slog.Info("acquired leadership", "lease", e.leaseName, "identity", e.identity)
				onStartedLeading(c)
			},
			OnStoppedLeading: func() {
				e.isLeader.Store(false)
				slog.Info("released leadership", "lease", e.leaseName, "identity", e.identity)
				onStoppedLeading()
			},
			OnNewLeader: func(identity string) {
				if identity != e.identity {
					slog.Info("observed leader", "lease", e.leaseName, "leader", identity)
				}
			},
		},
		ReleaseOnCancel: true,
		Name:            e.leaseName,
	}

	le, err := leaderelection.NewLeaderElector(lec)
	if err != nil {
		return fmt.Errorf("create leader elector: %w", err)
	}

	le.Run(ctx) // blocks
	return nil
}

func detectNamespace() string {
	if ns := strings.TrimSpace(os.Getenv("POD_NAMESPACE")); ns != "" {
		return ns
	}
	if b, err := os.ReadFile(serviceAccountNamespaceFile); err == nil {
		return strings.TrimSpace(string(b))
	}
	return ""
}

func detectIdentity() string {
	if n := strings.TrimSpace(os.Getenv("POD_NAME")); n != "" {
		return n
	}
	suffix := uuid.NewString()[:8]
	if h, err := os.Hostname(); err == nil && strings.TrimSpace(h) != "" {
		return strings.TrimSpace(h) + "-" + suffix
	}
	return suffix
}
