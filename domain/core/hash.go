package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// BatchFingerprint is the hash of a canonically serialized scored batch.
// Two runs over identical inputs and configuration must produce equal
// fingerprints regardless of scoring parallelism.
type BatchFingerprint Hash

func (h BatchFingerprint) String() string { return Hash(h).String() }

// ComputeBatchFingerprint hashes a set of per-pair canonical lines.
// Lines are sorted before hashing so goroutine completion order is irrelevant.
func ComputeBatchFingerprint(lines []string) BatchFingerprint {
	sorted := make([]string, len(lines))
	copy(sorted, lines)
	sort.Strings(sorted)
	return BatchFingerprint(NewHash([]byte(strings.Join(sorted, "\n"))))
}

// CanonicalFloat renders a float for fingerprinting with fixed precision
func CanonicalFloat(v float64) string {
	return fmt.Sprintf("%.12g", v)
}
