// Package keyhash derives the stable 64-bit key hash nanolog uses to route
// entries to segments and to build filenames. The hash must be identical
// across platforms and process restarts, which rules out Go's built-in map
// hash (randomized per-process) and FNV's weaker avalanche behavior; XXH64
// with a fixed seed gives both speed and a portable, documented result.
package keyhash

import "github.com/cespare/xxhash/v2"

// Sum64 returns the XXH64 hash (seed 0) of key. Two equal byte slices, on
// any platform or process, always produce the same value.
func Sum64(key []byte) uint64 {
	return xxhash.Sum64(key)
}

// Sanitize reduces a raw key to the cosmetic, filesystem-safe fragment used
// in segment filenames. It keeps only ASCII letters, digits, underscore and
// hyphen, and truncates to maxSanitizedLen bytes. The result is never used
// to identify a key, only to make directory listings human-readable; the
// hash from Sum64 is authoritative.
func Sanitize(key []byte) string {
	out := make([]byte, 0, min(len(key), maxSanitizedLen))
	for _, b := range key {
		if len(out) >= maxSanitizedLen {
			break
		}
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9', b == '_', b == '-':
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		return "key"
	}
	return string(out)
}

// maxSanitizedLen bounds the cosmetic portion of a segment filename.
const maxSanitizedLen = 20
