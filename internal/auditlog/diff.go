// Package auditlog renders audit entries for the admin log view. Audit
// records arrive as old/new field maps; the diff is a single pass over
// the union of keys.
package auditlog

import (
	"fmt"
	"sort"
)

// ChangeKind classifies one field change.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
	ChangeUpdated ChangeKind = "updated"
)

// FieldChange is one changed field of an audit entry.
type FieldChange struct {
	Field string     `json:"field"`
	Kind  ChangeKind `json:"kind"`
	Old   string     `json:"old,omitempty"`
	New   string     `json:"new,omitempty"`
}

// Diff compares the old and new field maps of an audit entry and
// returns the changes ordered by field name. Nil maps are treated as
// empty; unchanged fields are omitted.
func Diff(oldFields, newFields map[string]any) []FieldChange {
	keys := make(map[string]struct{}, len(oldFields)+len(newFields))
	for k := range oldFields {
		keys[k] = struct{}{}
	}
	for k := range newFields {
		keys[k] = struct{}{}
	}

	fields := make([]string, 0, len(keys))
	for k := range keys {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	var changes []FieldChange
	for _, field := range fields {
		oldVal, hadOld := oldFields[field]
		newVal, hasNew := newFields[field]

		switch {
		case !hadOld:
			changes = append(changes, FieldChange{Field: field, Kind: ChangeAdded, New: FormatValue(newVal)})
		case !hasNew:
			changes = append(changes, FieldChange{Field: field, Kind: ChangeRemoved, Old: FormatValue(oldVal)})
		default:
			oldStr, newStr := FormatValue(oldVal), FormatValue(newVal)
			if oldStr != newStr {
				changes = append(changes, FieldChange{Field: field, Kind: ChangeUpdated, Old: oldStr, New: newStr})
			}
		}
	}
	return changes
}

// FormatValue renders an audit field value for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "ja"
		}
		return "nein"
	case float64:
		// JSON numbers decode as float64; render integers without decimals.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
