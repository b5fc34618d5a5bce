package segment_test

import (
	"testing"
	"time"

	"github.com/iamNilotpal/nanolog/internal/framing"
	"github.com/iamNilotpal/nanolog/internal/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWritesHeaderAndAppendReturnsZeroOffsetFirst(t *testing.T) {
	dir := t.TempDir()

	h, err := segment.Create(segment.Config{
		Directory:    dir,
		SanitizedKey: "orders",
		Key:          []byte("orders"),
		KeyHash:      42,
		Sequence:     1,
		Expiration:   uint64(time.Now().Add(time.Hour).Unix()),
	})
	require.NoError(t, err)
	defer h.Close()

	offset, err := h.Append(framing.RecordFrame{Content: []byte("first")})
	require.NoError(t, err)
	assert.Equal(t, int64(0), offset)

	offset2, err := h.Append(framing.RecordFrame{Content: []byte("second")})
	require.NoError(t, err)
	assert.Greater(t, offset2, offset)
}

func TestExpiredReportsPastExpiration(t *testing.T) {
	dir := t.TempDir()

	h, err := segment.Create(segment.Config{
		Directory:    dir,
		SanitizedKey: "k",
		Key:          []byte("k"),
		KeyHash:      1,
		Sequence:     1,
		Expiration:   uint64(time.Now().Add(-time.Hour).Unix()),
	})
	require.NoError(t, err)
	defer h.Close()

	assert.True(t, h.Expired(time.Now()))
}

func TestOpenForReadDecodesHeaderWrittenByCreate(t *testing.T) {
	dir := t.TempDir()

	h, err := segment.Create(segment.Config{
		Directory:    dir,
		SanitizedKey: "sessions",
		Key:          []byte("sessions"),
		KeyHash:      7,
		Sequence:     3,
		Expiration:   1234,
	})
	require.NoError(t, err)
	path := h.Path()
	require.NoError(t, h.Close())

	file, header, err := segment.OpenForRead(path)
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, uint64(3), header.Sequence)
	assert.Equal(t, uint64(1234), header.Expiration)
	assert.Equal(t, []byte("sessions"), header.Key)
}
