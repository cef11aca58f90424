// Package model defines the typed records of the application (Event,
// Booking, User, FriendRequest, Suggestion) together with an explicit
// mapping layer to and from the schemaless document shape used by the
// store.  Documents are validated on read; stored shape is never trusted
// blindly, since a JSON round-trip erases Go types.
package model

import (
	"time"

	"github.com/eventbook/eventbook/internal/store"
)

// asString coerces a document value to string, returning "" for anything
// that is not a string.
func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asInt coerces the numeric shapes a JSON round-trip can produce.
func asInt(v any) int {
	return int(store.AsInt64(v))
}

// asStringSlice coerces an array field into its string elements, dropping
// anything of another type.
func asStringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		if s, ok := el.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// asTime parses an RFC3339 timestamp field; the zero time is returned for
// missing or malformed values.
func asTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// timeDoc encodes a timestamp for storage; the zero time encodes as nil so
// optional fields stay absent.
func timeDoc(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
