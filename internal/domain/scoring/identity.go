package scoring

import (
	"strings"

	"github.com/wielerspel/peloton-api/internal/domain/result"
)

// NormalizeIdentity collapses a rider name into its canonical identifier:
// lower case, runs of whitespace replaced by single hyphens.
func NormalizeIdentity(name string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	return strings.Join(fields, "-")
}

// IdentityCandidates returns the match keys for a scraped row, in priority
// order: explicit name identifier, normalized short name, normalized full
// name. Empty and sentinel values are dropped.
func IdentityCandidates(row result.RiderRow) []string {
	out := make([]string, 0, 3)
	for _, raw := range []string{row.NameID, row.ShortName, row.Rider} {
		key := NormalizeIdentity(raw)
		if key == "" || key == "-" {
			continue
		}
		out = append(out, key)
	}
	return out
}

// CanonicalID resolves a row to its single canonical identifier, or "" when
// the row carries no usable identity and must be discarded.
func CanonicalID(row result.RiderRow) string {
	candidates := IdentityCandidates(row)
	if len(candidates) == 0 {
		return ""
	}
	return candidates[0]
}

// MatchesRider reports whether a scraped row refers to the rider with the
// given canonical identifier. Any one candidate key matching is accepted.
func MatchesRider(row result.RiderRow, riderID string) bool {
	target := NormalizeIdentity(riderID)
	if target == "" {
		return false
	}
	for _, candidate := range IdentityCandidates(row) {
		if candidate == target {
			return true
		}
	}
	return false
}
