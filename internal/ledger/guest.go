package ledger

import "strings"

// NormalizeGuestNames prepares raw guest-name input for reservation: each
// name is whitespace-trimmed, empty strings are dropped, and duplicates are
// removed case-insensitively while the first-seen casing is preserved.
// ["Jane", "jane "] therefore normalizes to ["Jane"].
func NormalizeGuestNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}
