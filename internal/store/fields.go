package store

import (
	"bytes"
	"encoding/json"
)

// FieldOp enumerates the mutation operators supported by Tx.Update.
type FieldOp int

const (
	// OpSet replaces the field value.
	OpSet FieldOp = iota
	// OpIncrement adds an integer delta to a numeric field, treating a
	// missing field as zero.
	OpIncrement
	// OpArrayUnion appends the given values to an array field, skipping
	// values already present (structural equality).
	OpArrayUnion
	// OpArrayRemove removes every array element structurally equal to one
	// of the given values.
	OpArrayRemove
)

// FieldUpdate describes one field-level mutation inside a transaction.
type FieldUpdate struct {
	Field string
	Op    FieldOp
	Value any
}

// Set builds a plain field assignment.
func Set(field string, v any) FieldUpdate {
	return FieldUpdate{Field: field, Op: OpSet, Value: v}
}

// Increment builds an integer increment (negative deltas decrement).
func Increment(field string, delta int64) FieldUpdate {
	return FieldUpdate{Field: field, Op: OpIncrement, Value: delta}
}

// ArrayUnion builds a set-union mutation over an array field.
func ArrayUnion(field string, values ...any) FieldUpdate {
	return FieldUpdate{Field: field, Op: OpArrayUnion, Value: values}
}

// ArrayRemove builds a set-difference mutation over an array field.
func ArrayRemove(field string, values ...any) FieldUpdate {
	return FieldUpdate{Field: field, Op: OpArrayRemove, Value: values}
}

// applyUpdates applies the field updates to a copy of doc and returns it.
// The input document is never mutated.
func applyUpdates(doc Doc, updates []FieldUpdate) Doc {
	out := cloneDoc(doc)
	if out == nil {
		out = Doc{}
	}
	for _, u := range updates {
		switch u.Op {
		case OpSet:
			out[u.Field] = cloneValue(u.Value)
		case OpIncrement:
			out[u.Field] = AsInt64(out[u.Field]) + AsInt64(u.Value)
		case OpArrayUnion:
			arr := asArray(out[u.Field])
			for _, v := range u.Value.([]any) {
				if !containsValue(arr, v) {
					arr = append(arr, cloneValue(v))
				}
			}
			out[u.Field] = arr
		case OpArrayRemove:
			arr := asArray(out[u.Field])
			kept := make([]any, 0, len(arr))
			for _, el := range arr {
				if !containsValue(u.Value.([]any), el) {
					kept = append(kept, el)
				}
			}
			out[u.Field] = kept
		}
	}
	return out
}

// AsInt64 coerces the numeric representations a JSON round-trip can produce
// into an int64.  Non-numeric and missing values coerce to zero; documents
// are validated by the model layer, this keeps the operator total.
func AsInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	}
	return 0
}

func asArray(v any) []any {
	if arr, ok := v.([]any); ok {
		return arr
	}
	return nil
}

// sameValue reports structural equality via canonical JSON encoding, which
// is order-stable for map keys.  It is the equality used by array union and
// remove, matching how guest entries are compared.
func sameValue(a, b any) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

func containsValue(arr []any, v any) bool {
	for _, el := range arr {
		if sameValue(el, v) {
			return true
		}
	}
	return false
}

// cloneDoc deep-copies a document so snapshots handed to transaction bodies
// cannot alias committed state.
func cloneDoc(d Doc) Doc {
	if d == nil {
		return nil
	}
	out := make(Doc, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Doc:
		return cloneDoc(t)
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = cloneValue(el)
		}
		return out
	default:
		return v
	}
}
