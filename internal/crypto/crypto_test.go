package crypto

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEncryptor(t *testing.T) {
	assert.Nil(t, NewEncryptor(""))
	assert.NotNil(t, NewEncryptor("strong-passphrase-123"))
}

func TestSealOpen(t *testing.T) {
	enc := NewEncryptor("test-passphrase")

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"state envelope", []byte(`{"version":1,"subscriptions":{"u1":{"products":{"Toys":{"max_price":null}}}}}`)},
		{"empty", []byte{}},
		{"unicode", []byte("🔟 Toys ✅")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := enc.Seal(tt.plaintext)
			require.NoError(t, err)
			assert.True(t, IsSealed(sealed))
			if len(tt.plaintext) > 0 {
				assert.False(t, bytes.Contains(sealed, tt.plaintext))
			}

			opened, err := enc.Open(sealed)
			require.NoError(t, err)
			assert.Equal(t, string(tt.plaintext), string(opened))
		})
	}
}

func TestSeal_NonDeterministic(t *testing.T) {
	enc := NewEncryptor("test-passphrase")
	a, err := enc.Seal([]byte("same"))
	require.NoError(t, err)
	b, err := enc.Seal([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNilEncryptor(t *testing.T) {
	var enc *Encryptor
	data := []byte(`{"version":1}`)

	sealed, err := enc.Seal(data)
	require.NoError(t, err)
	assert.Equal(t, data, sealed)

	opened, err := enc.Open(data)
	require.NoError(t, err)
	assert.Equal(t, data, opened)

	sealed, err = NewEncryptor("key").Seal(data)
	require.NoError(t, err)
	_, err = enc.Open(sealed)
	assert.True(t, errors.Is(err, ErrDecrypt))
}

func TestOpen_PlaintextPassesThrough(t *testing.T) {
	data := []byte(`{"version":1,"subscriptions":{}}`)
	opened, err := NewEncryptor("key").Open(data)
	require.NoError(t, err)
	assert.Equal(t, data, opened)
}

func TestOpen_WrongKey(t *testing.T) {
	sealed, err := NewEncryptor("right").Seal([]byte("secret"))
	require.NoError(t, err)

	_, err = NewEncryptor("wrong").Open(sealed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecrypt))
}

func TestOpen_Malformed(t *testing.T) {
	enc := NewEncryptor("key")

	tests := []struct {
		name string
		data []byte
	}{
		{"not base64", append(append([]byte{}, sealedPrefix...), "!!!"...)},
		{"too short", append(append([]byte{}, sealedPrefix...), "AAAA"...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := enc.Open(tt.data)
			assert.True(t, errors.Is(err, ErrDecrypt))
		})
	}
}
