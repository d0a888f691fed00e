package kubernetes

import (
	"errors"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/otterscale/cassandra-operator/internal/core"
)

// Kind names, as used in configuration, logs and metrics.
const (
	KindClusters     = "cassandraclusters"
	KindDatacenters  = "cassandradatacenters"
	KindBackups      = "cassandrabackups"
	KindStatefulSets = "statefulsets"
	KindConfigMaps   = "configmaps"
	KindSecrets      = "secrets"
)

// Group and version of the operator's custom resources.
const (
	Group   = "cassandra.otterscale.io"
	Version = "v1alpha1"
)

var (
	ClusterGVR    = schema.GroupVersionResource{Group: Group, Version: Version, Resource: KindClusters}
	DatacenterGVR = schema.GroupVersionResource{Group: Group, Version: Version, Resource: KindDatacenters}
	BackupGVR     = schema.GroupVersionResource{Group: Group, Version: Version, Resource: KindBackups}
)

var (
	errMissingName    = errors.New("metadata.name is empty")
	errMissingVersion = errors.New("metadata.resourceVersion is empty")
)

// UnstructuredKind identifies custom resources by metadata.
func UnstructuredKind(name string) core.Kind[*unstructured.Unstructured] {
	return core.Kind[*unstructured.Unstructured]{
		Name:      name,
		KeyOf:     keyOf[*unstructured.Unstructured],
		VersionOf: versionOf[*unstructured.Unstructured],
		Copy:      (*unstructured.Unstructured).DeepCopy,
		Encode: func(u *unstructured.Unstructured) (map[string]any, error) {
			return runtime.DeepCopyJSON(u.Object), nil
		},
	}
}

// typedObject is a generated API type such as *appsv1.StatefulSet.
type typedObject[T any] interface {
	metav1.Object
	runtime.Object
	DeepCopy() T
}

// TypedKind identifies built-in API objects by metadata.
func TypedKind[T typedObject[T]](name string) core.Kind[T] {
	return core.Kind[T]{
		Name:      name,
		KeyOf:     keyOf[T],
		VersionOf: versionOf[T],
		Copy:      func(o T) T { return o.DeepCopy() },
		Encode: func(o T) (map[string]any, error) {
			return runtime.DefaultUnstructuredConverter.ToUnstructured(o)
		},
	}
}

var (
	StatefulSetKind = TypedKind[*appsv1.StatefulSet](KindStatefulSets)
	ConfigMapKind   = TypedKind[*corev1.ConfigMap](KindConfigMaps)
	SecretKind      = withoutSecretData(TypedKind[*corev1.Secret](KindSecrets))
)

// withoutSecretData keeps secret values out of encoded documents; only
// the keys are reported.
func withoutSecretData(k core.Kind[*corev1.Secret]) core.Kind[*corev1.Secret] {
	k.Encode = func(s *corev1.Secret) (map[string]any, error) {
		redacted := s.DeepCopy()
		redacted.StringData = nil
		for key := range redacted.Data {
			redacted.Data[key] = nil
		}
		return runtime.DefaultUnstructuredConverter.ToUnstructured(redacted)
	}
	return k
}

func keyOf[T metav1.Object](o T) (core.ResourceKey[T], error) {
	if o.GetName() == "" {
		return core.ResourceKey[T]{}, errMissingName
	}
	return core.NewResourceKey[T](o.GetNamespace(), o.GetName()), nil
}

func versionOf[T metav1.Object](o T) (string, error) {
	rv := o.GetResourceVersion()
	if rv == "" {
		return "", errMissingVersion
	}
	return rv, nil
}
