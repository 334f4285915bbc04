package domain

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// Version is the optimistic concurrency token of a row. The store bumps it on
// every successful update; clients only ever see its opaque encoded form.
type Version uint64

// String encodes the version as base64 of its eight big-endian bytes.
func (v Version) String() string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return base64.StdEncoding.EncodeToString(b[:])
}

// ParseVersion decodes a token produced by Version.String.
func ParseVersion(s string) (Version, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return 0, fmt.Errorf("decode version: %w", err)
	}
	if len(b) != 8 {
		return 0, fmt.Errorf("decode version: want 8 bytes, got %d", len(b))
	}
	return Version(binary.BigEndian.Uint64(b)), nil
}
