package framing_test

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/iamNilotpal/nanolog/internal/framing"
	nlerrors "github.com/iamNilotpal/nanolog/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	header := framing.SegmentHeader{Sequence: 7, Expiration: 1700000000, Key: []byte("orders")}

	require.NoError(t, framing.WriteSegmentHeader(&buf, header))
	assert.Equal(t, 32+len(header.Key), buf.Len())

	got, err := framing.ReadSegmentHeader(&buf, "test.log")
	require.NoError(t, err)
	assert.Equal(t, header.Sequence, got.Sequence)
	assert.Equal(t, header.Expiration, got.Expiration)
	assert.Equal(t, header.Key, got.Key)
}

func TestReadSegmentHeaderRejectsBadSignature(t *testing.T) {
	buf := bytes.NewBufferString("NOT-A-VALID-HEADER-BYTES-HERE!!!") // 32 bytes: a full fixed header
	_, err := framing.ReadSegmentHeader(buf, "test.log")
	require.Error(t, err)

	se, ok := nlerrors.AsStorageError(err)
	require.True(t, ok)
	assert.Equal(t, nlerrors.ErrorCodeCorruptedData, se.Code())
}

func TestRecordFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	frame := framing.RecordFrame{Header: []byte("h"), Content: []byte("hello")}
	require.NoError(t, framing.WriteRecordFrame(&buf, frame))

	got, ok, err := framing.ReadRecordFrame(bufio.NewReader(&buf), "test.log", 0, true)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, frame.Header, got.Header)
	assert.Equal(t, frame.Content, got.Content)
}

func TestRecordFrameEmptyContentRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	frame := framing.RecordFrame{Content: []byte{}}
	require.NoError(t, framing.WriteRecordFrame(&buf, frame))

	got, ok, err := framing.ReadRecordFrame(bufio.NewReader(&buf), "test.log", 0, true)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, got.Content)
}

func TestWriteRecordFrameRejectsOversizedHeader(t *testing.T) {
	var buf bytes.Buffer
	big := make([]byte, framing.MaxHeaderLen+1)
	err := framing.WriteRecordFrame(&buf, framing.RecordFrame{Header: big, Content: []byte("x")})
	require.Error(t, err)
	assert.ErrorIs(t, err, nlerrors.ErrHeaderTooLarge)
}

func TestReadRecordFrameTolerantOnTruncatedTail(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, framing.WriteRecordFrame(&buf, framing.RecordFrame{Content: []byte("full record")}))

	truncated := buf.Bytes()[:buf.Len()-4] // cut off the last few content bytes, mid-frame
	_, ok, err := framing.ReadRecordFrame(bufio.NewReader(bytes.NewReader(truncated)), "test.log", 0, false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReadRecordFrameStrictErrorsOnTruncatedTail(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, framing.WriteRecordFrame(&buf, framing.RecordFrame{Content: []byte("full record")}))

	truncated := buf.Bytes()[:buf.Len()-4]
	_, _, err := framing.ReadRecordFrame(bufio.NewReader(bytes.NewReader(truncated)), "test.log", 0, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, nlerrors.ErrCorruptedData)
}

func TestReadRecordFrameTolerantOnMissingSignature(t *testing.T) {
	_, ok, err := framing.ReadRecordFrame(bufio.NewReader(bytes.NewReader(nil)), "test.log", 0, false)
	require.NoError(t, err)
	assert.False(t, ok)
}
