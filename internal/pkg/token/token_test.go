package token

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tok := New()
	assert.Len(t, tok, 32)

	_, err := hex.DecodeString(tok)
	require.NoError(t, err)
}

func TestNewUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tok := New()
		require.False(t, seen[tok], "token collision after %d generations", i)
		seen[tok] = true
	}
}
