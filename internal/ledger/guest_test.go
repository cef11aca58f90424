package ledger

import (
	"reflect"
	"testing"
)

func TestNormalizeGuestNames(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil input", nil, []string{}},
		{"trims whitespace", []string{"  Jane  "}, []string{"Jane"}},
		{"drops empties", []string{"", "   ", "Bob"}, []string{"Bob"}},
		{"dedup keeps first casing", []string{"Jane", "jane", "JANE"}, []string{"Jane"}},
		{"lowercase first wins", []string{"jane", "Jane"}, []string{"jane"}},
		{"preserves order", []string{"Carol", "Bob", "carol"}, []string{"Carol", "Bob"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeGuestNames(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
