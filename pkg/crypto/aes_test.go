package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestCipher_RoundTrip(t *testing.T) {
	c, err := NewCipher(testKey)
	require.NoError(t, err)
	require.NotNil(t, c)

	sealed, err := c.Seal("L1234-56789")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "L1234")

	again, err := c.Seal("L1234-56789")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")

	opened, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "L1234-56789", opened)
}

func TestCipher_NilPassThrough(t *testing.T) {
	c, err := NewCipher("")
	require.NoError(t, err)
	assert.Nil(t, c)

	sealed, err := c.Seal("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", sealed)

	opened, err := c.Open("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", opened)
}

func TestCipher_Errors(t *testing.T) {
	_, err := NewCipher("abcd")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = NewCipher(strings.Repeat("z", 64))
	assert.Error(t, err)

	c, err := NewCipher(testKey)
	require.NoError(t, err)

	_, err = c.Open("AAAA")
	assert.ErrorIs(t, err, ErrCiphertextTooShort)

	_, err = c.Open("%%%")
	assert.Error(t, err)
}
