// Package segname builds and parses nanolog segment filenames.
//
// Filename format: <sanitized_key>-<key_hash>-<seq4>.log
//
// Where:
//   - sanitized_key: up to 20 bytes of [A-Za-z0-9_-] derived from the raw
//     key, purely cosmetic and present so a directory listing is legible.
//   - key_hash: the 16-hex-digit, zero-padded XXH64 hash of the raw key
//     (see pkg/keyhash). This is the authoritative identifier; two
//     segments with the same hash belong to the same key regardless of
//     what the sanitized fragment says.
//   - seq4: a zero-padded, at-least-4-digit sequence number, monotonically
//     increasing per key, assigned at segment creation time.
//   - .log: fixed extension.
//
// Example: orders-7a1c9e3f2b6d4e10-0007.log
package segname

import (
	"fmt"
	"strconv"
	"strings"
)

// Extension is the fixed suffix every segment file carries.
const Extension = ".log"

// minSeqDigits is the zero-padding width applied to the sequence number.
// Sequences beyond 9999 simply widen the field; sorting stays correct
// because Build always pads to at least this width and Parse/ParseSequence
// return numeric values, so callers compare numbers, not field width.
const minSeqDigits = 4

// Build returns the filename for the given sanitized key fragment, key
// hash, and per-key sequence number.
func Build(sanitizedKey string, keyHash, sequence uint64) string {
	return fmt.Sprintf("%s-%016x-%0*d%s", sanitizedKey, keyHash, minSeqDigits, sequence, Extension)
}

// ParseKeyHash extracts the key hash component from a segment filename. It
// returns an error if the filename does not carry the expected number of
// hyphen-delimited fields.
func ParseKeyHash(filename string) (uint64, error) {
	fields, err := split(filename)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(fields[1], 16, 64)
}

// ParseSequence extracts the sequence number component from a segment filename.
func ParseSequence(filename string) (uint64, error) {
	fields, err := split(filename)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(fields[2], 10, 64)
}

// Parse extracts both the key hash and sequence number in one pass.
func Parse(filename string) (keyHash, sequence uint64, err error) {
	fields, err := split(filename)
	if err != nil {
		return 0, 0, err
	}
	keyHash, err = strconv.ParseUint(fields[1], 16, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("segname: invalid key hash in %q: %w", filename, err)
	}
	sequence, err = strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("segname: invalid sequence in %q: %w", filename, err)
	}
	return keyHash, sequence, nil
}

// split breaks a segment filename into [sanitizedKey, hashHex, seqDigits],
// trimming the extension first.
func split(filename string) ([]string, error) {
	trimmed := strings.TrimSuffix(filename, Extension)
	if trimmed == filename {
		return nil, fmt.Errorf("segname: %q is missing the %s extension", filename, Extension)
	}

	fields := strings.Split(trimmed, "-")
	if len(fields) < 3 {
		return nil, fmt.Errorf("segname: %q does not match <key>-<hash>-<seq>%s", filename, Extension)
	}

	// The sanitized key fragment may itself contain hyphens, but hash and
	// sequence are always the last two fields.
	n := len(fields)
	return []string{strings.Join(fields[:n-2], "-"), fields[n-2], fields[n-1]}, nil
}
