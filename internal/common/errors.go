// Package common defines the sentinel errors shared by every regsync layer
// and a couple of byte helpers. Callers match errors with errors.Is; layers
// add context with fmt.Errorf("...: %w", err).
package common

import (
	"errors"
	"fmt"
)

var (
	// Classification errors. These drive reconciliation branches and are
	// not failures on their own. ErrAlreadyExists stays between a secret
	// store and the key vault.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// ErrAmbiguousState means the remote side cannot be mapped to exactly
	// one project bucket.
	ErrAmbiguousState = errors.New("ambiguous state")

	// ErrTransientStore covers permission, network and throttling failures
	// reported by the object store or the secret store. Not retried here.
	ErrTransientStore = errors.New("store unavailable")

	// Crypto errors. Malformed key material is a decryption failure.
	ErrDecryption = errors.New("decryption failed")
	ErrInvalidKey = fmt.Errorf("%w: invalid key material", ErrDecryption)

	// ErrLocalIO wraps filesystem copy/remove/open failures.
	ErrLocalIO = errors.New("local i/o error")
)
