// Package framing implements the on-disk binary layout nanolog segments use:
// a fixed segment header written once per file, and a repeating record
// frame written once per append. Every multi-byte integer is little-endian,
// matching the encoding/binary pattern used throughout the pack for
// hand-rolled log formats rather than a general-purpose serialization
// library.
package framing

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	nlerrors "github.com/iamNilotpal/nanolog/pkg/errors"
)

// SegmentSignature is the literal 8-byte marker at the start of every
// segment file.
var SegmentSignature = [8]byte{'N', 'A', 'N', 'O', '-', 'L', 'O', 'G'}

// RecordSignature is the literal 6-byte marker at the start of every record frame.
var RecordSignature = [6]byte{'N', 'A', 'N', 'O', 'R', 'C'}

// MaxHeaderLen is the largest header length the 2-byte header-length field
// can encode.
const MaxHeaderLen = 65535

// fixedSegmentHeaderLen is the signature+sequence+expiration+keylen portion
// of the segment header, before the variable-length key bytes.
const fixedSegmentHeaderLen = 8 + 8 + 8 + 8

// SegmentHeader is the decoded form of a segment file's fixed leading block.
type SegmentHeader struct {
	Sequence   uint64
	Expiration uint64
	Key        []byte
}

// Len returns the total on-disk size of the header, fixed portion plus the
// key bytes.
func (h SegmentHeader) Len() int {
	return fixedSegmentHeaderLen + len(h.Key)
}

// WriteSegmentHeader writes the segment signature, sequence number,
// expiration timestamp, key length and key bytes to w, in that order.
func WriteSegmentHeader(w io.Writer, h SegmentHeader) error {
	buf := make([]byte, fixedSegmentHeaderLen)
	copy(buf[0:8], SegmentSignature[:])
	binary.LittleEndian.PutUint64(buf[8:16], h.Sequence)
	binary.LittleEndian.PutUint64(buf[16:24], h.Expiration)
	binary.LittleEndian.PutUint64(buf[24:32], uint64(len(h.Key)))

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("framing: write segment header: %w", err)
	}
	if len(h.Key) > 0 {
		if _, err := w.Write(h.Key); err != nil {
			return fmt.Errorf("framing: write segment header key: %w", err)
		}
	}
	return nil
}

// ReadSegmentHeader reads and validates a segment header from r. A missing
// or mismatched signature is reported as CorruptedData, since a segment
// header is required to exist in any file this package is asked to open.
func ReadSegmentHeader(r io.Reader, path string) (SegmentHeader, error) {
	buf := make([]byte, fixedSegmentHeaderLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return SegmentHeader{}, nlerrors.NewCorruptedDataError(err, path, 0)
	}
	if !signatureMatches(buf[0:8], SegmentSignature[:]) {
		return SegmentHeader{}, nlerrors.NewCorruptedDataError(nil, path, 0)
	}

	sequence := binary.LittleEndian.Uint64(buf[8:16])
	expiration := binary.LittleEndian.Uint64(buf[16:24])
	keyLen := binary.LittleEndian.Uint64(buf[24:32])

	var key []byte
	if keyLen > 0 {
		key = make([]byte, keyLen)
		if _, err := io.ReadFull(r, key); err != nil {
			return SegmentHeader{}, nlerrors.NewCorruptedDataError(err, path, fixedSegmentHeaderLen)
		}
	}

	return SegmentHeader{Sequence: sequence, Expiration: expiration, Key: key}, nil
}

// RecordFrame is the decoded form of one on-disk record.
type RecordFrame struct {
	Header  []byte
	Content []byte
}

// WriteRecordFrame writes the record signature, header length, header
// bytes, content length, and content bytes to w. Callers must have already
// rejected headers longer than MaxHeaderLen.
func WriteRecordFrame(w io.Writer, f RecordFrame) error {
	if len(f.Header) > MaxHeaderLen {
		return nlerrors.NewHeaderTooLargeError(len(f.Header))
	}

	prefix := make([]byte, 6+2)
	copy(prefix[0:6], RecordSignature[:])
	binary.LittleEndian.PutUint16(prefix[6:8], uint16(len(f.Header)))
	if _, err := w.Write(prefix); err != nil {
		return fmt.Errorf("framing: write record prefix: %w", err)
	}

	if len(f.Header) > 0 {
		if _, err := w.Write(f.Header); err != nil {
			return fmt.Errorf("framing: write record header: %w", err)
		}
	}

	contentLen := make([]byte, 8)
	binary.LittleEndian.PutUint64(contentLen, uint64(len(f.Content)))
	if _, err := w.Write(contentLen); err != nil {
		return fmt.Errorf("framing: write content length: %w", err)
	}

	if len(f.Content) > 0 {
		if _, err := w.Write(f.Content); err != nil {
			return fmt.Errorf("framing: write record content: %w", err)
		}
	}

	return nil
}

// ReadRecordFrame reads one record frame from r.
//
// When strict is false (tolerant scan, used by enumeration), a signature
// mismatch at the start of the frame, or a short read or read error
// anywhere within it, returns (RecordFrame{},
// false, nil): the caller should stop scanning without treating this as an
// error. When strict is true (targeted read-by-reference), the same
// condition returns a CorruptedData error, since a valid EntryRef is only
// ever handed out for a fully-flushed frame.
func ReadRecordFrame(r *bufio.Reader, path string, offset int, strict bool) (RecordFrame, bool, error) {
	sig := make([]byte, 6)
	n, err := io.ReadFull(r, sig)
	if err != nil || !signatureMatches(sig[:n], RecordSignature[:]) {
		if strict {
			return RecordFrame{}, false, nlerrors.NewCorruptedDataError(err, path, offset)
		}
		return RecordFrame{}, false, nil
	}

	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if strict {
			return RecordFrame{}, false, nlerrors.NewCorruptedDataError(err, path, offset)
		}
		return RecordFrame{}, false, nil
	}
	headerLen := binary.LittleEndian.Uint16(lenBuf[:])

	var header []byte
	if headerLen > 0 {
		header = make([]byte, headerLen)
		if _, err := io.ReadFull(r, header); err != nil {
			if strict {
				return RecordFrame{}, false, nlerrors.NewCorruptedDataError(err, path, offset)
			}
			return RecordFrame{}, false, nil
		}
	}

	var contentLenBuf [8]byte
	if _, err := io.ReadFull(r, contentLenBuf[:]); err != nil {
		if strict {
			return RecordFrame{}, false, nlerrors.NewCorruptedDataError(err, path, offset)
		}
		return RecordFrame{}, false, nil
	}
	contentLen := binary.LittleEndian.Uint64(contentLenBuf[:])

	var content []byte
	if contentLen > 0 {
		content = make([]byte, contentLen)
		if _, err := io.ReadFull(r, content); err != nil {
			if strict {
				return RecordFrame{}, false, nlerrors.NewCorruptedDataError(err, path, offset)
			}
			return RecordFrame{}, false, nil
		}
	}

	return RecordFrame{Header: header, Content: content}, true, nil
}

func signatureMatches(got, want []byte) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
