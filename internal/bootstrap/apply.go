package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/wait"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"k8s.io/utils/ptr"
)

// crdGVR is the GroupVersionResource for apiextensions.k8s.io/v1
// CustomResourceDefinitions.
var crdGVR = schema.GroupVersionResource{
	Group:    "apiextensions.k8s.io",
	Version:  "v1",
	Resource: "customresourcedefinitions",
}

// applyManifest parses a multi-document YAML byte slice and applies
// every CRD in it via Server-Side Apply. Any other kind is rejected.
// It returns the names of the applied CRDs.
func (b *Bootstrapper) applyManifest(ctx context.Context, data []byte) ([]string, error) {
	objects, err := parseMultiDoc(data)
	if err != nil {
		return nil, fmt.Errorf("parse multi-doc YAML: %w", err)
	}

	names := make([]string, 0, len(objects))
	for _, obj := range objects {
		if obj.GetKind() != "CustomResourceDefinition" {
			return nil, fmt.Errorf("unexpected %s %q in CRD manifests", obj.GetKind(), obj.GetName())
		}
		if err := b.applyObject(ctx, obj); err != nil {
			return nil, fmt.Errorf("apply CRD %s: %w", obj.GetName(), err)
		}
		b.log.Info("applied CRD", "name", obj.GetName())
		names = append(names, obj.GetName())
	}
	return names, nil
}

// applyObject performs a forced Server-Side Apply of one
// cluster-scoped CRD.
func (b *Bootstrapper) applyObject(ctx context.Context, obj *unstructured.Unstructured) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal object: %w", err)
	}

	_, err = b.dynamic.Resource(crdGVR).Patch(ctx, obj.GetName(), types.ApplyPatchType, data, metav1.PatchOptions{
		FieldManager: fieldManager,
		Force:        ptr.To(true),
	})
	return err
}

// waitForCRDs blocks until every named CRD has the Established
// condition set to True.
func (b *Bootstrapper) waitForCRDs(ctx context.Context, names []string) error {
	for _, name := range names {
		b.log.Info("waiting for CRD to be established", "name", name)

		err := wait.PollUntilContextTimeout(ctx, b.pollInterval, b.pollTimeout, true,
			func(ctx context.Context) (bool, error) {
				obj, err := b.dynamic.Resource(crdGVR).Get(ctx, name, metav1.GetOptions{})
				if err != nil {
					return false, nil // retry until the timeout
				}
				return isCRDEstablished(obj), nil
			},
		)
		if err != nil {
			return fmt.Errorf("CRD %s did not become established: %w", name, err)
		}
		b.log.Info("CRD established", "name", name)
	}
	return nil
}

// isCRDEstablished inspects the CRD status conditions for
// type=Established, status=True.
func isCRDEstablished(obj *unstructured.Unstructured) bool {
	conditions, found, err := unstructured.NestedSlice(obj.Object, "status", "conditions")
	if err != nil || !found {
		return false
	}
	for _, c := range conditions {
		m, ok := c.(map[string]any)
		if !ok {
			continue
		}
		if m["type"] == "Established" && m["status"] == "True" {
			return true
		}
	}
	return false
}

// parseMultiDoc splits a multi-document YAML byte slice into
// individual unstructured objects, skipping empty documents.
func parseMultiDoc(data []byte) ([]*unstructured.Unstructured, error) {
	var objects []*unstructured.Unstructured

	decoder := utilyaml.NewYAMLOrJSONDecoder(bytes.NewReader(data), 4096)
	for {
		obj := &unstructured.Unstructured{}
		if err := decoder.Decode(obj); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if obj.GetKind() == "" {
			continue
		}
		objects = append(objects, obj)
	}
	return objects, nil
}
