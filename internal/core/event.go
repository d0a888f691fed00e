package core

// ChangeType classifies a ChangeEvent.
type ChangeType string

const (
	ChangeAdded    ChangeType = "Added"
	ChangeModified ChangeType = "Modified"
	ChangeDeleted  ChangeType = "Deleted"
)

// ChangeEvent is a change to a cached resource, emitted by the
// ResourceCache and delivered through an EventChannel.
//
//   - Added:    New is the inserted value, Old is the zero value.
//   - Modified: Old is the value cached immediately before, New the
//     replacement.
//   - Deleted:  Old is the last known value, New is the zero value.
//
// Old and New are copies owned by the event.
type ChangeEvent[T any] struct {
	Type ChangeType
	Key  ResourceKey[T]
	Old  T
	New  T
}

// Object returns the payload most relevant to the event: New for Added
// and Modified, Old for Deleted.
func (e ChangeEvent[T]) Object() T {
	if e.Type == ChangeDeleted {
		return e.Old
	}
	return e.New
}
