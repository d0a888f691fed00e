package handler

// lastAppliedAnnotation is written by kubectl apply and duplicates the
// whole object.
const lastAppliedAnnotation = "kubectl.kubernetes.io/last-applied-configuration"

// cleanObject strips bookkeeping metadata from an encoded resource
// before it is returned by GetResource: metadata.managedFields and the
// last-applied annotation. Empty annotation maps are removed.
func cleanObject(obj map[string]any) {
	metadata, ok := obj["metadata"].(map[string]any)
	if !ok {
		return
	}
	delete(metadata, "managedFields")

	annotations, ok := metadata["annotations"].(map[string]any)
	if !ok {
		return
	}
	delete(annotations, lastAppliedAnnotation)
	if len(annotations) == 0 {
		delete(metadata, "annotations")
	}
}
