package nanolog_test

import (
	"testing"
	"time"

	"github.com/iamNilotpal/nanolog/pkg/nanolog"
	"github.com/iamNilotpal/nanolog/pkg/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openWal(t *testing.T, opts ...options.OptionFunc) *nanolog.Wal {
	t.Helper()
	dir := t.TempDir()
	full := append([]options.OptionFunc{options.WithDirectory(dir)}, opts...)
	w, err := nanolog.Open("nanolog-test", full...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestBasicAppendAndReadRoundTrip(t *testing.T) {
	w := openWal(t)

	ref, err := w.LogEntry([]byte("orders"), []byte("trace-1"), []byte("order created"))
	require.NoError(t, err)

	content, err := w.ReadEntryAt(ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("order created"), content)
}

func TestMultipleRecordsPerKeyShareOneActiveSegment(t *testing.T) {
	w := openWal(t, options.WithEntryRetention(time.Hour), options.WithSegmentsPerRetentionPeriod(1))

	for i := 0; i < 5; i++ {
		_, err := w.LogEntry([]byte("orders"), nil, []byte("record"))
		require.NoError(t, err)
	}

	assert.Equal(t, 1, w.ActiveSegmentCount())

	records, err := w.EnumerateRecords([]byte("orders"))
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestSegmentRotatesAfterDurationElapses(t *testing.T) {
	w := openWal(t, options.WithEntryRetention(time.Second), options.WithSegmentsPerRetentionPeriod(1))

	first, err := w.LogEntry([]byte("orders"), nil, []byte("before"))
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	second, err := w.LogEntry([]byte("orders"), nil, []byte("after"))
	require.NoError(t, err)

	assert.Greater(t, second.Sequence, first.Sequence)
	assert.Equal(t, 1, w.ActiveSegmentCount())
}

func TestRecordsSurviveProcessRestart(t *testing.T) {
	dir := t.TempDir()

	w1, err := nanolog.Open("nanolog-test", options.WithDirectory(dir))
	require.NoError(t, err)

	ref, err := w1.LogEntry([]byte("orders"), nil, []byte("persisted"))
	require.NoError(t, err)
	require.NoError(t, w1.Close())

	w2, err := nanolog.Open("nanolog-test", options.WithDirectory(dir))
	require.NoError(t, err)
	defer w2.Close()

	content, err := w2.ReadEntryAt(ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), content)

	next, err := w2.LogEntry([]byte("orders"), nil, []byte("after restart"))
	require.NoError(t, err)
	assert.Greater(t, next.Sequence, ref.Sequence)
}

func TestDurableAppendsArePersistedEvenAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	w1, err := nanolog.Open("nanolog-test", options.WithDirectory(dir))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		_, err := w1.AppendEntry([]byte("orders"), nil, []byte("durable record"), true)
		require.NoError(t, err)
	}
	require.NoError(t, w1.Close())

	w2, err := nanolog.Open("nanolog-test", options.WithDirectory(dir))
	require.NoError(t, err)
	defer w2.Close()

	records, err := w2.EnumerateRecords([]byte("orders"))
	require.NoError(t, err)
	assert.Len(t, records, 20)
}

func TestCompactRemovesExpiredSegments(t *testing.T) {
	w := openWal(t, options.WithEntryRetention(time.Second), options.WithSegmentsPerRetentionPeriod(1))

	_, err := w.LogEntry([]byte("orders"), nil, []byte("will expire"))
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	deleted, err := w.Compact()
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	keys, err := w.EnumerateKeys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestEmptyContentRoundTrips(t *testing.T) {
	w := openWal(t)

	ref, err := w.LogEntry([]byte("k"), nil, []byte{})
	require.NoError(t, err)

	content, err := w.ReadEntryAt(ref)
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestHeaderAtMaxSizeSucceedsOneByteOverFails(t *testing.T) {
	w := openWal(t)

	maxHeader := make([]byte, 65535)
	_, err := w.AppendEntry([]byte("k"), maxHeader, []byte("v"), false)
	require.NoError(t, err)

	tooLarge := make([]byte, 65536)
	_, err = w.AppendEntry([]byte("k"), tooLarge, []byte("v"), false)
	require.Error(t, err)
}

func TestDestroyRemovesAllSegmentFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := nanolog.Open("nanolog-test", options.WithDirectory(dir))
	require.NoError(t, err)

	_, err = w.LogEntry([]byte("orders"), nil, []byte("v"))
	require.NoError(t, err)

	require.NoError(t, w.Destroy())
	assert.NoDirExists(t, dir)
}
