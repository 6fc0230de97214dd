// Package hash computes the two content digests used for duplicate
// detection: a cheap short hash over a bounded prefix of the file and an
// expensive full hash over every byte.
//
// The short hash is a pre-filter. It may collide for distinct files (same
// leading bytes, same length) and equality must never be treated as proof
// of duplication; the full hash adjudicates collisions definitively.
package hash

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// ShortHashWindow is the number of leading bytes sampled by the short hash.
const ShortHashWindow = 64 * 1024

// Size is the length in bytes of both digests.
const Size = sha256.Size

// Short digests the first ShortHashWindow bytes of r together with the
// total size of the source. Reading at most the window keeps the cost
// independent of file size.
func Short(r io.Reader, size int64) ([]byte, error) {
	h := sha256.New()
	if _, err := io.Copy(h, io.LimitReader(r, ShortHashWindow)); err != nil {
		return nil, fmt.Errorf("reading sample window: %w", err)
	}
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(size))
	h.Write(length[:])
	return h.Sum(nil), nil
}

// ShortFile computes the short hash for the file at path.
func ShortFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return Short(f, stat.Size())
}

// Full digests every byte of r. No partial digest is ever returned; a read
// failure part way through yields only the error.
func Full(r io.Reader) ([]byte, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	return h.Sum(nil), nil
}

// FullFile computes the full hash for the file at path.
func FullFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return Full(f)
}
