package table_test

import (
	"testing"
	"time"

	"github.com/iamNilotpal/nanolog/internal/table"
	"github.com/iamNilotpal/nanolog/pkg/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(t *testing.T, segmentDuration time.Duration) *table.Table {
	t.Helper()
	return table.New(table.Config{
		Directory: t.TempDir(),
		Options:   options.Options{EntryRetention: segmentDuration, SegmentsPerRetentionPeriod: 1},
	})
}

func TestAppendCreatesOneActiveSegmentPerKey(t *testing.T) {
	tbl := newTable(t, time.Hour)

	_, err := tbl.Append(1, "orders", []byte("orders"), nil, []byte("a"), false)
	require.NoError(t, err)
	_, err = tbl.Append(1, "orders", []byte("orders"), nil, []byte("b"), false)
	require.NoError(t, err)
	_, err = tbl.Append(2, "payments", []byte("payments"), nil, []byte("c"), false)
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.ActiveCount())
}

func TestAppendReusesActiveSegmentWhileUnexpired(t *testing.T) {
	tbl := newTable(t, time.Hour)

	first, err := tbl.Append(1, "k", []byte("k"), nil, []byte("a"), false)
	require.NoError(t, err)
	second, err := tbl.Append(1, "k", []byte("k"), nil, []byte("b"), false)
	require.NoError(t, err)

	assert.Equal(t, first.Sequence, second.Sequence)
	assert.Equal(t, 1, tbl.ActiveCount())
}

func TestAppendRotatesToNewSequenceOnceSegmentExpires(t *testing.T) {
	// Segment duration floors at one second, so this test is necessarily slow.
	tbl := newTable(t, time.Second)

	first, err := tbl.Append(1, "k", []byte("k"), nil, []byte("a"), false)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	second, err := tbl.Append(1, "k", []byte("k"), nil, []byte("b"), false)
	require.NoError(t, err)

	assert.Greater(t, second.Sequence, first.Sequence)
	assert.Equal(t, 1, tbl.ActiveCount())
}

func TestCloseIsIdempotentAndDropsActiveSegments(t *testing.T) {
	tbl := newTable(t, time.Hour)

	_, err := tbl.Append(1, "k", []byte("k"), nil, []byte("a"), false)
	require.NoError(t, err)
	require.Equal(t, 1, tbl.ActiveCount())

	require.NoError(t, tbl.Close())
	require.NoError(t, tbl.Close())

	_, err = tbl.Append(1, "k", []byte("k"), nil, []byte("a"), false)
	assert.Error(t, err)
}

func TestSyncAllSucceedsWithNoActiveSegments(t *testing.T) {
	tbl := newTable(t, time.Hour)
	assert.NoError(t, tbl.SyncAll())
}
