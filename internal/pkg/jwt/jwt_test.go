package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	tok, err := Sign(time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseGarbage(t *testing.T) {
	_, err := Parse("not-a-token")
	assert.Error(t, err)

	_, err = Parse("")
	assert.Error(t, err)
}

func TestParseExpired(t *testing.T) {
	tok, err := Sign(-time.Minute)
	require.NoError(t, err)

	_, err = Parse(tok)
	assert.Error(t, err)
}
