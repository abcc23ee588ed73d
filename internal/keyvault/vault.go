package keyvault

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/regsync/internal/common"
	"github.com/dmitrijs2005/regsync/internal/cryptox"
	"github.com/dmitrijs2005/regsync/internal/logging"
)

// SecretStore is a name -> string secret backend.
type SecretStore interface {
	// GetSecret returns common.ErrNotFound when name has no value.
	GetSecret(ctx context.Context, name string) (string, error)
	// CreateSecret returns common.ErrAlreadyExists when name is taken.
	CreateSecret(ctx context.Context, name, value string) error
}

// KeyGenerator mints fresh key material in the stored representation.
type KeyGenerator interface {
	GenerateKey() (string, error)
}

type Vault struct {
	store SecretStore
	gen   KeyGenerator
	log   logging.Logger
}

func New(store SecretStore, gen KeyGenerator, log logging.Logger) *Vault {
	return &Vault{store: store, gen: gen, log: log}
}

// Key returns the stored key for name without ever creating one.
func (v *Vault) Key(ctx context.Context, name string) (string, error) {
	key, err := v.store.GetSecret(ctx, name)
	if err != nil {
		return "", fmt.Errorf("get key %s: %w", name, err)
	}
	if _, err := cryptox.DecodeKey(key); err != nil {
		return "", fmt.Errorf("key %s: %w", name, err)
	}
	return key, nil
}

// GetOrCreateKey returns the key stored under name, generating and storing
// one when the store has none.
func (v *Vault) GetOrCreateKey(ctx context.Context, name string) (string, error) {
	key, err := v.Key(ctx, name)
	if err == nil {
		v.log.Debug(ctx, "encryption key found", "secret", name, "fingerprint", cryptox.Fingerprint(key))
		return key, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return "", err
	}

	key, err = v.gen.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}

	err = v.store.CreateSecret(ctx, name, key)
	if errors.Is(err, common.ErrAlreadyExists) {
		v.log.Warn(ctx, "encryption key created concurrently, using stored key", "secret", name)
		return v.Key(ctx, name)
	}
	if err != nil {
		return "", fmt.Errorf("store key %s: %w", name, err)
	}

	v.log.Info(ctx, "encryption key created", "secret", name, "fingerprint", cryptox.Fingerprint(key))
	return key, nil
}
