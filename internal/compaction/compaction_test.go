package compaction_test

import (
	"testing"
	"time"

	"github.com/iamNilotpal/nanolog/internal/compaction"
	"github.com/iamNilotpal/nanolog/internal/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepDeletesOnlyExpiredSegments(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	expired, err := segment.Create(segment.Config{
		Directory: dir, SanitizedKey: "old", Key: []byte("old"),
		KeyHash: 1, Sequence: 1, Expiration: uint64(now.Add(-time.Hour).Unix()),
	})
	require.NoError(t, err)
	require.NoError(t, expired.Close())

	live, err := segment.Create(segment.Config{
		Directory: dir, SanitizedKey: "fresh", Key: []byte("fresh"),
		KeyHash: 2, Sequence: 1, Expiration: uint64(now.Add(time.Hour).Unix()),
	})
	require.NoError(t, err)
	require.NoError(t, live.Close())

	deleted, err := compaction.Sweep(compaction.Config{Directory: dir}, now)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, _, err = segment.OpenForRead(live.Path())
	assert.NoError(t, err)

	_, _, err = segment.OpenForRead(expired.Path())
	assert.Error(t, err)
}

func TestSweepReturnsZeroOnEmptyDirectory(t *testing.T) {
	deleted, err := compaction.Sweep(compaction.Config{Directory: t.TempDir()}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}
