package handler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCleanObject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   map[string]any
		want map[string]any
	}{
		{
			name: "managed fields removed",
			in: map[string]any{"metadata": map[string]any{
				"name":          "dc1",
				"managedFields": []any{"f1"},
			}},
			want: map[string]any{"metadata": map[string]any{"name": "dc1"}},
		},
		{
			name: "last applied removed, others kept",
			in: map[string]any{"metadata": map[string]any{
				"annotations": map[string]any{
					lastAppliedAnnotation: `{"spec":{}}`,
					"team":                "db",
				},
			}},
			want: map[string]any{"metadata": map[string]any{
				"annotations": map[string]any{"team": "db"},
			}},
		},
		{
			name: "empty annotations dropped",
			in: map[string]any{"metadata": map[string]any{
				"annotations": map[string]any{lastAppliedAnnotation: "{}"},
			}},
			want: map[string]any{"metadata": map[string]any{}},
		},
		{
			name: "no metadata",
			in:   map[string]any{"spec": map[string]any{"size": int64(3)}},
			want: map[string]any{"spec": map[string]any{"size": int64(3)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cleanObject(tt.in)
			if diff := cmp.Diff(tt.want, tt.in); diff != "" {
				t.Fatalf("cleanObject mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
