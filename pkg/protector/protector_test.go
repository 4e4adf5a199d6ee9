package protector

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestProtector(t *testing.T) Protector {
	t.Helper()
	p, err := NewFromHex(testKey)
	require.NoError(t, err)
	return p
}

func TestProtector_RoundTrip(t *testing.T) {
	p := newTestProtector(t)

	for _, id := range []uint{1, 42, 1 << 40} {
		token, err := p.ProtectID("product", id)
		require.NoError(t, err)
		assert.NotContains(t, token, "=")

		got, err := p.UnprotectID("product", token)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestProtector_TokensAreRandomized(t *testing.T) {
	p := newTestProtector(t)

	a, err := p.ProtectID("category", 7)
	require.NoError(t, err)
	b, err := p.ProtectID("category", 7)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestProtector_UnprotectErrors(t *testing.T) {
	p := newTestProtector(t)
	valid, err := p.ProtectID("product", 9)
	require.NoError(t, err)

	tampered := []byte(valid)
	if tampered[len(tampered)-1] == 'A' {
		tampered[len(tampered)-1] = 'B'
	} else {
		tampered[len(tampered)-1] = 'A'
	}

	t.Run("tampered token", func(t *testing.T) {
		_, err := p.UnprotectID("product", string(tampered))
		assert.ErrorIs(t, err, ErrDecrypt)
	})

	t.Run("wrong purpose", func(t *testing.T) {
		_, err := p.UnprotectID("category", valid)
		assert.ErrorIs(t, err, ErrDecrypt)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := p.UnprotectID("product", "AAAA")
		assert.ErrorIs(t, err, ErrDecrypt)
	})

	t.Run("not base64", func(t *testing.T) {
		_, err := p.UnprotectID("product", "not*a*token")
		var corrupt base64.CorruptInputError
		assert.True(t, errors.As(err, &corrupt))
	})
}

func TestNewFromHex(t *testing.T) {
	t.Run("empty key", func(t *testing.T) {
		_, err := NewFromHex("")
		var keyErr *KeyError
		require.True(t, errors.As(err, &keyErr))
		assert.True(t, strings.Contains(keyErr.Error(), "empty"))
	})

	t.Run("not hex", func(t *testing.T) {
		_, err := NewFromHex("zz")
		var invalid hex.InvalidByteError
		assert.True(t, errors.As(err, &invalid))
	})

	t.Run("wrong size", func(t *testing.T) {
		_, err := NewFromHex("0011")
		assert.Error(t, err)
	})
}
