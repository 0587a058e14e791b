package models

import (
	"strconv"
	"strings"
)

// PairSeparator joins the two user handles of a canonical pair key. User handles may not contain it.
const PairSeparator = "#"

// ValidUserID reports whether id can take part in a pair key
func ValidUserID(id string) bool {
	return id != "" && !strings.Contains(id, PairSeparator)
}

// CanonicalPair orders two user handles so that (a, b) and (b, a) resolve to the same pair
func CanonicalPair(a, b string) (low, high string) {
	if a <= b {
		return a, b
	}
	return b, a
}

// PairKey returns the canonical, order-independent key for two users: "<len(low)>:<low>#<high>".
// The length prefix keeps the key unambiguous even for handles that contain the separator.
func PairKey(a, b string) string {
	low, high := CanonicalPair(a, b)
	return strconv.Itoa(len(low)) + ":" + low + PairSeparator + high
}

// SplitPairKey is the inverse of PairKey
func SplitPairKey(key string) (low, high string, ok bool) {
	size, rest, ok := strings.Cut(key, ":")
	if !ok {
		return "", "", false
	}
	n, err := strconv.Atoi(size)
	if err != nil || n < 0 || len(rest) < n+len(PairSeparator) || rest[n:n+len(PairSeparator)] != PairSeparator {
		return "", "", false
	}
	return rest[:n], rest[n+len(PairSeparator):], true
}
