package kubernetes

import (
	"context"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// NewStatefulSetStore returns a store for the StatefulSets that back
// Cassandra datacenters.
func NewStatefulSetStore(cs kubernetes.Interface, opts StoreOptions) *Store[*appsv1.StatefulSet] {
	c := cs.AppsV1().StatefulSets(opts.Namespace)
	return newStore[*appsv1.StatefulSet](KindStatefulSets, opts,
		func(ctx context.Context, lo metav1.ListOptions) ([]*appsv1.StatefulSet, metav1.ListMeta, error) {
			list, err := c.List(ctx, lo)
			if err != nil {
				return nil, metav1.ListMeta{}, err
			}
			return pointers(list.Items), list.ListMeta, nil
		},
		c.Watch,
	)
}

// NewConfigMapStore returns a store for the ConfigMaps holding
// rendered Cassandra configuration.
func NewConfigMapStore(cs kubernetes.Interface, opts StoreOptions) *Store[*corev1.ConfigMap] {
	c := cs.CoreV1().ConfigMaps(opts.Namespace)
	return newStore[*corev1.ConfigMap](KindConfigMaps, opts,
		func(ctx context.Context, lo metav1.ListOptions) ([]*corev1.ConfigMap, metav1.ListMeta, error) {
			list, err := c.List(ctx, lo)
			if err != nil {
				return nil, metav1.ListMeta{}, err
			}
			return pointers(list.Items), list.ListMeta, nil
		},
		c.Watch,
	)
}

// NewSecretStore returns a store for Secrets referenced by clusters.
func NewSecretStore(cs kubernetes.Interface, opts StoreOptions) *Store[*corev1.Secret] {
	c := cs.CoreV1().Secrets(opts.Namespace)
	return newStore[*corev1.Secret](KindSecrets, opts,
		func(ctx context.Context, lo metav1.ListOptions) ([]*corev1.Secret, metav1.ListMeta, error) {
			list, err := c.List(ctx, lo)
			if err != nil {
				return nil, metav1.ListMeta{}, err
			}
			return pointers(list.Items), list.ListMeta, nil
		},
		c.Watch,
	)
}

func pointers[T any](items []T) []*T {
	out := make([]*T, 0, len(items))
	for i := range items {
		out = append(out, &items[i])
	}
	return out
}
