package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/regsync/internal/common"
)

// KeySize is the raw key length in bytes for every supported cipher.
const KeySize = 32

const (
	KindAESGCM    = "aes-gcm"
	KindSecretBox = "secretbox"
)

// Cipher encrypts and decrypts whole blobs with a base64 key string.
type Cipher interface {
	Name() string
	GenerateKey() (string, error)
	Encrypt(plaintext []byte, key string) ([]byte, error)
	Decrypt(ciphertext []byte, key string) ([]byte, error)
}

// New returns the cipher registered under kind.
func New(kind string) (Cipher, error) {
	switch kind {
	case KindAESGCM, "":
		return AESGCM{}, nil
	case KindSecretBox:
		return SecretBox{}, nil
	default:
		return nil, fmt.Errorf("unsupported cipher %q", kind)
	}
}

// EncodeKey renders raw key bytes in the storage representation.
func EncodeKey(raw []byte) string {
	return base64.URLEncoding.EncodeToString(raw)
}

// DecodeKey parses a stored key and checks its length.
func DecodeKey(key string) ([]byte, error) {
	raw, err := base64.URLEncoding.DecodeString(key)
	if err != nil {
		// keys written by other tools may use the standard alphabet
		raw, err = base64.StdEncoding.DecodeString(key)
		if err != nil {
			return nil, fmt.Errorf("%w: not base64", common.ErrInvalidKey)
		}
	}
	if len(raw) != KeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", common.ErrInvalidKey, KeySize, len(raw))
	}
	return raw, nil
}

// Fingerprint returns a short, non-reversible identifier of a key that is
// safe to log.
func Fingerprint(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:6])
}

func generateKey() (string, error) {
	return EncodeKey(common.GenerateRandByteArray(KeySize)), nil
}
