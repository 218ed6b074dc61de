// Package hash implements the 20-byte SHA-1 object identity used throughout
// gitcore: computing the hash of a byte payload and parsing/printing its
// 40-character hex textual form.
package hash

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Size is the length in bytes of a Hash.
const Size = sha1.Size

// Hash is a 20-byte SHA-1 digest. The zero value is not a valid hash; use
// IsZero to test for it explicitly.
type Hash [Size]byte

// Zero is the all-zero hash (Hash's zero value), used as a sentinel for
// "no value".
var Zero Hash

// Compute returns the SHA-1 digest of data.
func Compute(data []byte) Hash {
	return Hash(sha1.Sum(data))
}

// ParseHex decodes a 40-character lowercase hex string into a Hash. It
// rejects strings of the wrong length or containing non-hex characters.
func ParseHex(s string) (Hash, error) {
	if len(s) != Size*2 {
		return Hash{}, fmt.Errorf("hash: invalid hex length %d, want %d", len(s), Size*2)
	}
	var h Hash
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return Hash{}, fmt.Errorf("hash: invalid hex string %q: %w", s, err)
	}
	return h, nil
}

// String returns the 40-character lowercase hex form of h.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the all-zero hash.
func (h Hash) IsZero() bool {
	return h == Zero
}

// Less reports whether h sorts before other by raw byte value.
func (h Hash) Less(other Hash) bool {
	for i := range h {
		if h[i] != other[i] {
			return h[i] < other[i]
		}
	}
	return false
}
