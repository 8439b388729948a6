package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/oslobeats/concierge/pkg/models"
)

// Fingerprint derives the deterministic cache key for a query: a digest of
// the normalized query text, the sorted context pairs, and the sorted active
// responder set. Two semantically identical queries (differing only in case
// or whitespace) produce the same fingerprint.
func Fingerprint(q models.Query, responders []string) string {
	h := sha256.New()
	h.Write([]byte(Normalize(q.Text)))
	h.Write([]byte{0})

	keys := make([]string, 0, len(q.Context))
	for k := range q.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(Normalize(k)))
		h.Write([]byte{'='})
		h.Write([]byte(Normalize(q.Context[k])))
		h.Write([]byte{0})
	}

	active := make([]string, len(responders))
	copy(active, responders)
	sort.Strings(active)
	h.Write([]byte(strings.Join(active, ",")))

	return hex.EncodeToString(h.Sum(nil))
}

// Normalize case-folds, trims, and collapses internal whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}
