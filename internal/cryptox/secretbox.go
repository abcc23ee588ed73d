package cryptox

import (
	"fmt"

	"github.com/dmitrijs2005/regsync/internal/common"
	"golang.org/x/crypto/nacl/secretbox"
)

const secretboxNonceSize = 24

// SecretBox seals blobs with NaCl secretbox (XSalsa20-Poly1305).
type SecretBox struct{}

func (SecretBox) Name() string { return KindSecretBox }

func (SecretBox) GenerateKey() (string, error) { return generateKey() }

func (SecretBox) Encrypt(plaintext []byte, key string) ([]byte, error) {
	k, err := boxKey(key)
	if err != nil {
		return nil, err
	}

	var nonce [secretboxNonceSize]byte
	copy(nonce[:], common.GenerateRandByteArray(secretboxNonceSize))

	return secretbox.Seal(nonce[:], plaintext, &nonce, k), nil
}

func (SecretBox) Decrypt(ciphertext []byte, key string) ([]byte, error) {
	k, err := boxKey(key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < secretboxNonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: ciphertext too short", common.ErrDecryption)
	}

	var nonce [secretboxNonceSize]byte
	copy(nonce[:], ciphertext[:secretboxNonceSize])

	plaintext, ok := secretbox.Open(nil, ciphertext[secretboxNonceSize:], &nonce, k)
	if !ok {
		return nil, fmt.Errorf("%w: secretbox authentication failed", common.ErrDecryption)
	}
	return plaintext, nil
}

func boxKey(key string) (*[KeySize]byte, error) {
	raw, err := DecodeKey(key)
	if err != nil {
		return nil, err
	}
	var k [KeySize]byte
	copy(k[:], raw)
	return &k, nil
}
