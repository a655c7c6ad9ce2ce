package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEncryptor(t *testing.T) *AESEncryptor {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	enc, err := NewAESEncryptor(key)
	require.NoError(t, err)
	return enc
}

func TestKeyEncoding(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	assert.Len(t, key, keySize)

	other, err := GenerateKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)

	decoded, err := DecodeKeyBase64(EncodeKeyBase64(key))
	require.NoError(t, err)
	assert.Equal(t, key, decoded)

	_, err = DecodeKeyBase64(base64.StdEncoding.EncodeToString([]byte("sixteen byte key")))
	assert.ErrorContains(t, err, "got 16 bytes")

	_, err = DecodeKeyBase64("not base64!")
	assert.ErrorContains(t, err, "invalid base64")
}

func TestNewAESEncryptor_KeySize(t *testing.T) {
	for _, n := range []int{0, 16, 24, 31, 33} {
		_, err := NewAESEncryptor(make([]byte, n))
		assert.ErrorIs(t, err, ErrKeySize, "%d byte key", n)
	}
	_, err := NewAESEncryptor(nil)
	assert.ErrorIs(t, err, ErrKeySize)
}

func TestEncryptDecrypt(t *testing.T) {
	enc := newTestEncryptor(t)

	records := map[string]string{
		"cart":    `{"state":{"items":[{"id":"p1","price":150000,"quantity":2}]},"version":0}`,
		"token":   `{"state":{"token":"eyJhbGciOiJIUzI1NiJ9.e30.sig"},"version":0}`,
		"empty":   "",
		"unicode": "Adé Ọ̀bí",
	}

	for name, plain := range records {
		t.Run(name, func(t *testing.T) {
			sealed, err := enc.Encrypt([]byte(plain))
			require.NoError(t, err)
			if plain != "" {
				assert.NotContains(t, string(sealed), plain)
			}

			opened, err := enc.Decrypt(sealed)
			require.NoError(t, err)
			assert.Equal(t, plain, string(opened))
		})
	}
}

func TestEncrypt_FreshNonce(t *testing.T) {
	enc := newTestEncryptor(t)

	a, err := enc.Encrypt([]byte("auth-token"))
	require.NoError(t, err)
	b, err := enc.Encrypt([]byte("auth-token"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecrypt_Rejects(t *testing.T) {
	enc := newTestEncryptor(t)
	sealed, err := enc.Encrypt([]byte("auth-token"))
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		_, err := newTestEncryptor(t).Decrypt(sealed)
		assert.Error(t, err)
	})

	t.Run("not base64", func(t *testing.T) {
		_, err := enc.Decrypt([]byte(`{"state":{"isDark":true}}`))
		assert.ErrorContains(t, err, "decode")
	})

	t.Run("too short", func(t *testing.T) {
		short := base64.StdEncoding.EncodeToString([]byte("tiny"))
		_, err := enc.Decrypt([]byte(short))
		assert.ErrorIs(t, err, ErrCiphertextTooShort)
	})

	t.Run("tampered", func(t *testing.T) {
		raw, err := base64.StdEncoding.DecodeString(string(sealed))
		require.NoError(t, err)
		raw[len(raw)-1] ^= 0xff
		_, err = enc.Decrypt([]byte(base64.StdEncoding.EncodeToString(raw)))
		assert.Error(t, err)
	})
}
