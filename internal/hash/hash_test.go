package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("p")
	require.NoError(t, err)
	assert.NotEqual(t, "p", h)

	assert.True(t, CheckPassword(h, "p"))
	assert.False(t, CheckPassword(h, "q"))
	assert.False(t, CheckPassword("not-a-hash", "p"))
}
