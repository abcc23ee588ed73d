// Package cryptox implements the symmetric ciphers used to protect the
// registry artifact at rest in object storage.
//
// Keys travel as URL-safe base64 strings of 32 random bytes, which is the
// representation stored in the secret store. Every Encrypt call draws a
// fresh random nonce and prepends it to the sealed output:
//
//	aes-gcm:   nonce(12) || AES-256-GCM(plaintext)
//	secretbox: nonce(24) || XSalsa20-Poly1305(plaintext)
//
// Both ciphers authenticate, so decrypting with the wrong key, or a
// truncated or tampered blob, returns an error matching common.ErrDecryption
// instead of garbage.
package cryptox
