package controller

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	appsv1 "k8s.io/api/apps/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/utils/ptr"

	"github.com/otterscale/cassandra-operator/internal/core"
	"github.com/otterscale/cassandra-operator/internal/providers/kubernetes"
)

// DatacenterLabel names the datacenter a StatefulSet belongs to. A
// StatefulSet without it is matched through the datacenters'
// spec.statefulSetName, which defaults to the datacenter's name.
const DatacenterLabel = kubernetes.Group + "/datacenter"

type (
	datacenterCache  = core.ResourceCache[*unstructured.Unstructured]
	statefulSetCache = core.ResourceCache[*appsv1.StatefulSet]
)

// DatacenterController tracks desired and ready Cassandra nodes per
// datacenter by joining datacenter resources with their StatefulSets.
type DatacenterController struct {
	gauges Gauges
	log    *slog.Logger

	// mu orders gauge writes against datacenter deletion.
	mu sync.Mutex

	ctx          context.Context
	datacenters  *datacenterCache
	statefulSets *statefulSetCache
}

func NewDatacenterController(gauges Gauges, log *slog.Logger) *DatacenterController {
	if log == nil {
		log = slog.Default()
	}
	return &DatacenterController{gauges: gauges, log: log.With("controller", "datacenters")}
}

func (c *DatacenterController) Name() string { return "datacenters" }

func (c *DatacenterController) Setup(ctx context.Context, informers *core.Informers) ([]func(), error) {
	dcs, err := core.ReflectorFor[*unstructured.Unstructured](informers, kubernetes.KindDatacenters)
	if err != nil {
		return nil, err
	}
	sts, err := core.ReflectorFor[*appsv1.StatefulSet](informers, kubernetes.KindStatefulSets)
	if err != nil {
		return nil, err
	}

	c.ctx = ctx
	c.datacenters = dcs.Cache()
	c.statefulSets = sts.Cache()

	return []func(){
		dcs.Subscribe(c.Name(), c.onDatacenter).Cancel,
		sts.Subscribe(c.Name(), c.onStatefulSet).Cancel,
	}, nil
}

func (c *DatacenterController) onDatacenter(ev core.ChangeEvent[*unstructured.Unstructured]) error {
	if ev.Type == core.ChangeDeleted {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.gauges.DeleteDatacenterReplicas(ev.Key.Name, ev.Key.Namespace)
		return nil
	}
	return c.record(ev.New)
}

func (c *DatacenterController) onStatefulSet(ev core.ChangeEvent[*appsv1.StatefulSet]) error {
	owners, err := c.owners(ev.Object())
	if err != nil {
		return err
	}
	for _, dc := range owners {
		if err := c.record(dc); err != nil {
			return err
		}
	}
	return nil
}

// owners returns the datacenters backed by sts. The DatacenterLabel
// wins; otherwise every datacenter in the namespace whose StatefulSet
// name resolves to sts matches.
func (c *DatacenterController) owners(sts *appsv1.StatefulSet) ([]*unstructured.Unstructured, error) {
	if name, ok := sts.GetLabels()[DatacenterLabel]; ok && name != "" {
		entry, found := c.datacenters.Peek(core.NewResourceKey[*unstructured.Unstructured](sts.GetNamespace(), name))
		if !found {
			return nil, nil
		}
		return []*unstructured.Unstructured{entry.Object}, nil
	}

	var out []*unstructured.Unstructured
	for _, entry := range c.datacenters.Entries() {
		if entry.Key.Namespace != sts.GetNamespace() {
			continue
		}
		name, err := statefulSetName(entry.Object)
		if err != nil {
			return nil, err
		}
		if name == sts.GetName() {
			out = append(out, entry.Object)
		}
	}
	return out, nil
}

// statefulSetName is spec.statefulSetName, defaulting to the
// datacenter's own name.
func statefulSetName(dc *unstructured.Unstructured) (string, error) {
	name, _, err := unstructured.NestedString(dc.Object, "spec", "statefulSetName")
	if err != nil {
		return "", fmt.Errorf("datacenter %s/%s: %w", dc.GetNamespace(), dc.GetName(), err)
	}
	if name == "" {
		name = dc.GetName()
	}
	return name, nil
}

// desiredSize returns spec.size when set. Values outside the int32
// range are rejected.
func desiredSize(dc *unstructured.Unstructured) (int32, bool, error) {
	size, ok, err := unstructured.NestedInt64(dc.Object, "spec", "size")
	if err != nil {
		return 0, false, fmt.Errorf("datacenter %s/%s: %w", dc.GetNamespace(), dc.GetName(), err)
	}
	if !ok {
		return 0, false, nil
	}
	if size < 0 || size > math.MaxInt32 {
		return 0, false, fmt.Errorf("datacenter %s/%s: spec.size %d out of range", dc.GetNamespace(), dc.GetName(), size)
	}
	return int32(size), true, nil
}

// record looks up the StatefulSet of dc and publishes its replica
// gauges. The desired count comes from spec.size, falling back to the
// StatefulSet's spec.replicas. Nothing is recorded once dc has left the
// cache, so a late StatefulSet event cannot revive a deleted series.
func (c *DatacenterController) record(dc *unstructured.Unstructured) error {
	stsName, err := statefulSetName(dc)
	if err != nil {
		return err
	}

	entry, found, err := c.statefulSets.Get(c.ctx, core.NewResourceKey[*appsv1.StatefulSet](dc.GetNamespace(), stsName))
	if err != nil {
		return err
	}

	var desired, ready int32
	if found {
		desired = ptr.Deref(entry.Object.Spec.Replicas, 1)
		ready = entry.Object.Status.ReadyReplicas
	}
	size, ok, err := desiredSize(dc)
	if err != nil {
		return err
	}
	if ok {
		desired = size
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.datacenters.Peek(core.NewResourceKey[*unstructured.Unstructured](dc.GetNamespace(), dc.GetName())); !ok {
		return nil
	}
	c.gauges.SetDatacenterReplicas(dc.GetName(), dc.GetNamespace(), desired, ready)
	c.log.Debug("datacenter replicas recorded",
		"namespace", dc.GetNamespace(),
		"datacenter", dc.GetName(),
		"statefulset", stsName,
		"desired", desired,
		"ready", ready,
	)
	return nil
}
