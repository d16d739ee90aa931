package auditlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	oldFields := map[string]any{
		"party_size": float64(4),
		"time":       "19:00",
		"notes":      "Fensterplatz",
		"fixed":      true,
	}
	newFields := map[string]any{
		"party_size": float64(6),
		"time":       "19:00",
		"occasion":   "Geburtstag",
		"fixed":      true,
	}

	changes := Diff(oldFields, newFields)

	assert.Equal(t, []FieldChange{
		{Field: "notes", Kind: ChangeRemoved, Old: "Fensterplatz"},
		{Field: "occasion", Kind: ChangeAdded, New: "Geburtstag"},
		{Field: "party_size", Kind: ChangeUpdated, Old: "4", New: "6"},
	}, changes)
}

func TestDiffNilMaps(t *testing.T) {
	assert.Empty(t, Diff(nil, nil))

	changes := Diff(nil, map[string]any{"time": "18:00"})
	assert.Equal(t, []FieldChange{{Field: "time", Kind: ChangeAdded, New: "18:00"}}, changes)

	changes = Diff(map[string]any{"time": "18:00"}, nil)
	assert.Equal(t, []FieldChange{{Field: "time", Kind: ChangeRemoved, Old: "18:00"}}, changes)
}

func TestDiffIsDeterministic(t *testing.T) {
	oldFields := map[string]any{"a": "1", "b": "2", "c": "3"}
	newFields := map[string]any{"a": "9", "b": "8", "c": "7"}

	first := Diff(oldFields, newFields)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Diff(oldFields, newFields))
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "Huber", "Huber"},
		{"bool true", true, "ja"},
		{"bool false", false, "nein"},
		{"integer number", float64(42), "42"},
		{"fractional number", 2.5, "2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}
