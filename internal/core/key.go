package core

import "cmp"

// ResourceKey addresses a cached resource of kind T by namespace and
// name. The type parameter only tags which cache the key belongs to;
// the key never holds a T. Cluster-scoped resources use an empty
// namespace.
type ResourceKey[T any] struct {
	Namespace string
	Name      string
}

// NewResourceKey returns the key for namespace/name.
func NewResourceKey[T any](namespace, name string) ResourceKey[T] {
	return ResourceKey[T]{Namespace: namespace, Name: name}
}

// String renders the key in the conventional "namespace/name" form, or
// just the name for cluster-scoped resources.
func (k ResourceKey[T]) String() string {
	if k.Namespace == "" {
		return k.Name
	}
	return k.Namespace + "/" + k.Name
}

// compareKeys orders keys by namespace, then name.
func compareKeys[T any](a, b ResourceKey[T]) int {
	if c := cmp.Compare(a.Namespace, b.Namespace); c != 0 {
		return c
	}
	return cmp.Compare(a.Name, b.Name)
}
