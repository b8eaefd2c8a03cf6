// Package digest implements modman's content fingerprint: SHA-256 truncated
// to 224 bits (28 bytes), used to detect drift between what modman installed
// and what is actually on disk.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// Size is the length of a Digest in bytes (224 bits).
const Size = 28

// bufSize is the streaming copy buffer: tens of KiB, per the digest
// primitive's single-pass read-hash-write design.
const bufSize = 32 * 1024

// Digest is a content fingerprint. The zero value represents no digest and
// must never be mistaken for the hash of empty content.
type Digest [Size]byte

// Equal reports whether two digests are byte-identical.
func (d Digest) Equal(other Digest) bool {
	return d == other
}

// String renders the digest as lowercase, fixed 56-character hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Parse reads a 56-character hex digest, as persisted in the profile.
func Parse(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("invalid digest %q: %w", s, err)
	}
	if len(b) != Size {
		return d, fmt.Errorf("invalid digest %q: want %d bytes, got %d", s, Size, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// newHasher returns a full SHA-256 hash; sum truncates to Size bytes.
func newHasher() hash.Hash {
	return sha256.New()
}

func sum(h hash.Hash) Digest {
	var d Digest
	copy(d[:], h.Sum(nil)[:Size])
	return d
}

// HashBytes streams r through the digest primitive in a single pass.
func HashBytes(r io.Reader) (Digest, error) {
	h := newHasher()
	buf := make([]byte, bufSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return Digest{}, err
	}
	return sum(h), nil
}

// HashFile opens path and streams its content through the digest primitive.
func HashFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()
	return HashBytes(f)
}

// CopyAndHash copies src to dst while computing the digest of the bytes
// copied, in a single pass. Used everywhere a file is written and its
// content fingerprint is needed at the same time: backup staging and
// target installation (by both activation and update).
func CopyAndHash(dst io.Writer, src io.Reader) (Digest, error) {
	h := newHasher()
	w := io.MultiWriter(dst, h)
	buf := make([]byte, bufSize)
	if _, err := io.CopyBuffer(w, src, buf); err != nil {
		return Digest{}, err
	}
	return sum(h), nil
}
