package reconcile

import (
	"strings"

	"catalog-sync/feature/ers"
)

// DedupKey is the normalized code of an entry, or its trimmed id when it has no code.
func DedupKey(e ers.PriceEntry) string {
	if code := normalizeCode(e.Code); code != "" {
		return code
	}
	return strings.TrimSpace(e.ID)
}

// Dedup keeps the first entry of every dedup key, in input order.
// Entries without any key are kept as they are.
func Dedup(entries []ers.PriceEntry) ([]ers.PriceEntry, int) {
	seen := make(map[string]struct{}, len(entries))
	unique := make([]ers.PriceEntry, 0, len(entries))
	dropped := 0

	for _, e := range entries {
		key := DedupKey(e)
		if key != "" {
			if _, ok := seen[key]; ok {
				dropped++
				continue
			}
			seen[key] = struct{}{}
		}
		unique = append(unique, e)
	}
	return unique, dropped
}

func normalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
