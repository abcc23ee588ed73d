package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/dmitrijs2005/regsync/internal/common"
)

// AESGCM seals blobs with AES-256-GCM and a random 12-byte nonce.
type AESGCM struct{}

func (AESGCM) Name() string { return KindAESGCM }

func (AESGCM) GenerateKey() (string, error) { return generateKey() }

func (AESGCM) Encrypt(plaintext []byte, key string) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())

	// the nonce doubles as the destination prefix
	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (AESGCM) Decrypt(ciphertext []byte, key string) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ns := aesgcm.NonceSize()
	if len(ciphertext) < ns+aesgcm.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", common.ErrDecryption)
	}

	plaintext, err := aesgcm.Open(nil, ciphertext[:ns], ciphertext[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryption, err)
	}
	return plaintext, nil
}

func newGCM(key string) (cipher.AEAD, error) {
	raw, err := DecodeKey(key)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
