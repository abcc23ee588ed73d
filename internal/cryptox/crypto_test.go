package cryptox

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/dmitrijs2005/regsync/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allCiphers() []Cipher {
	return []Cipher{AESGCM{}, SecretBox{}}
}

func TestRoundTrip(t *testing.T) {
	inputs := [][]byte{
		{},
		[]byte("x"),
		[]byte("SQLite format 3\x00 registry payload"),
		bytes.Repeat([]byte{0xAB}, 64*1024),
	}

	for _, c := range allCiphers() {
		t.Run(c.Name(), func(t *testing.T) {
			key, err := c.GenerateKey()
			require.NoError(t, err)

			for _, in := range inputs {
				ct, err := c.Encrypt(in, key)
				require.NoError(t, err)
				assert.NotEqual(t, in, ct)

				pt, err := c.Decrypt(ct, key)
				require.NoError(t, err)
				assert.True(t, bytes.Equal(in, pt), "round trip mismatch for %d bytes", len(in))
			}
		})
	}
}

func TestEncrypt_IsRandomized(t *testing.T) {
	for _, c := range allCiphers() {
		t.Run(c.Name(), func(t *testing.T) {
			key, err := c.GenerateKey()
			require.NoError(t, err)

			a, err := c.Encrypt([]byte("same"), key)
			require.NoError(t, err)
			b, err := c.Encrypt([]byte("same"), key)
			require.NoError(t, err)

			assert.NotEqual(t, a, b, "fresh nonce per call")
		})
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	for _, c := range allCiphers() {
		t.Run(c.Name(), func(t *testing.T) {
			k1, err := c.GenerateKey()
			require.NoError(t, err)
			k2, err := c.GenerateKey()
			require.NoError(t, err)

			ct, err := c.Encrypt([]byte("secret registry"), k1)
			require.NoError(t, err)

			pt, err := c.Decrypt(ct, k2)
			require.ErrorIs(t, err, common.ErrDecryption)
			assert.Nil(t, pt)
		})
	}
}

func TestDecrypt_TamperedAndTruncated(t *testing.T) {
	for _, c := range allCiphers() {
		t.Run(c.Name(), func(t *testing.T) {
			key, err := c.GenerateKey()
			require.NoError(t, err)

			ct, err := c.Encrypt([]byte("payload"), key)
			require.NoError(t, err)

			tampered := append([]byte(nil), ct...)
			tampered[len(tampered)-1] ^= 0x01
			_, err = c.Decrypt(tampered, key)
			require.ErrorIs(t, err, common.ErrDecryption)

			_, err = c.Decrypt(ct[:5], key)
			require.ErrorIs(t, err, common.ErrDecryption)
		})
	}
}

func TestCiphers_AreNotInterchangeable(t *testing.T) {
	key, err := AESGCM{}.GenerateKey()
	require.NoError(t, err)

	ct, err := AESGCM{}.Encrypt([]byte("payload"), key)
	require.NoError(t, err)

	_, err = SecretBox{}.Decrypt(ct, key)
	require.ErrorIs(t, err, common.ErrDecryption)
}

func TestDecodeKey(t *testing.T) {
	raw := bytes.Repeat([]byte{7}, KeySize)

	got, err := DecodeKey(EncodeKey(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	got, err = DecodeKey(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err, "standard alphabet is accepted")
	assert.Equal(t, raw, got)

	_, err = DecodeKey("%%%not-base64%%%")
	require.ErrorIs(t, err, common.ErrInvalidKey)

	_, err = DecodeKey(EncodeKey([]byte("short")))
	require.ErrorIs(t, err, common.ErrInvalidKey)
}

func TestEncrypt_InvalidKey(t *testing.T) {
	for _, c := range allCiphers() {
		_, err := c.Encrypt([]byte("x"), "bad")
		require.ErrorIs(t, err, common.ErrInvalidKey, c.Name())
	}
}

func TestNew(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	assert.Equal(t, KindAESGCM, c.Name())

	c, err = New(KindSecretBox)
	require.NoError(t, err)
	assert.Equal(t, KindSecretBox, c.Name())

	_, err = New("rot13")
	require.Error(t, err)
}

func TestFingerprint_StableAndShort(t *testing.T) {
	key, err := AESGCM{}.GenerateKey()
	require.NoError(t, err)

	assert.Equal(t, Fingerprint(key), Fingerprint(key))
	assert.Len(t, Fingerprint(key), 12)
	assert.NotContains(t, key, Fingerprint(key))
}
