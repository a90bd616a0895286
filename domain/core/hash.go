package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// FingerprintPrefix marks a content fingerprint produced by NewFingerprint
const FingerprintPrefix = "sha256:"

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

// Fingerprint is an opaque content fingerprint of the raw input that produced a
// target descriptor. It is threaded through a run for traceability only.
type Fingerprint string

// NewFingerprint returns "sha256:" followed by the hex digest of data
func NewFingerprint(data []byte) Fingerprint {
	return Fingerprint(FingerprintPrefix + NewHash(data).String())
}

func (f Fingerprint) String() string { return string(f) }

// IsEmpty checks if the fingerprint is empty
func (f Fingerprint) IsEmpty() bool { return f == "" }

// StableU32 hashes the "|"-joined string form of parts with SHA-256 and returns
// the first four digest bytes as a big-endian uint32.
//
// The result is identical on every platform and process. Every derived seed in
// the system goes through this function; never replace it with a salted or
// non-cryptographic string hash.
func StableU32(parts ...any) uint32 {
	strs := make([]string, len(parts))
	for i, p := range parts {
		strs[i] = fmt.Sprint(p)
	}
	sum := sha256.Sum256([]byte(strings.Join(strs, "|")))
	return binary.BigEndian.Uint32(sum[:4])
}

// ConfigHash is a stable digest of a flattened configuration
type ConfigHash Hash

func (h ConfigHash) String() string { return Hash(h).String() }

// ComputeConfigHash hashes key/value pairs in sorted key order
func ComputeConfigHash(values map[string]any) ConfigHash {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString("=")
		data.WriteString(fmt.Sprintf("%v", values[key]))
		data.WriteString(";")
	}

	return ConfigHash(NewHash([]byte(data.String())))
}
