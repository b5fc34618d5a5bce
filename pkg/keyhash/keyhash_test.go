package keyhash_test

import (
	"testing"

	"github.com/iamNilotpal/nanolog/pkg/keyhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum64IsDeterministic(t *testing.T) {
	a := keyhash.Sum64([]byte("orders"))
	b := keyhash.Sum64([]byte("orders"))
	require.Equal(t, a, b)

	c := keyhash.Sum64([]byte("payments"))
	assert.NotEqual(t, a, c)
}

func TestSanitizeFiltersAndTruncates(t *testing.T) {
	got := keyhash.Sanitize([]byte("user:123/profile picture.png"))
	assert.LessOrEqual(t, len(got), 20)
	for _, b := range []byte(got) {
		valid := (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_' || b == '-'
		assert.True(t, valid, "unexpected byte %q in sanitized output", b)
	}
}

func TestSanitizeEmptyFallsBackToPlaceholder(t *testing.T) {
	got := keyhash.Sanitize([]byte("###///"))
	assert.Equal(t, "key", got)
}
