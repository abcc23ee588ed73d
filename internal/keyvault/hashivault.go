package keyvault

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/regsync/internal/common"
	"github.com/hashicorp/vault/api"
)

// HashiCorpStore keeps secrets in a HashiCorp Vault KV v2 engine, one
// secret per name with the key under the "value" field.
type HashiCorpStore struct {
	client    *api.Client
	mountPath string
}

// NewHashiCorpStore connects to the Vault server at address. An empty token
// falls back to VAULT_TOKEN.
func NewHashiCorpStore(address, token, mountPath string) (*HashiCorpStore, error) {
	config := api.DefaultConfig()
	if config.Error != nil {
		return nil, fmt.Errorf("failed to read Vault environment: %w", config.Error)
	}
	if address != "" {
		config.Address = address
	}
	config.HttpClient = &http.Client{Timeout: 30 * time.Second}
	config.MaxRetries = 0

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if token != "" {
		client.SetToken(token)
	}

	mountPath = strings.Trim(mountPath, "/")
	if mountPath == "" {
		mountPath = "secret"
	}

	return &HashiCorpStore{client: client, mountPath: mountPath}, nil
}

func (s *HashiCorpStore) path(name string) string {
	return fmt.Sprintf("%s/data/%s", s.mountPath, strings.Trim(name, "/"))
}

func (s *HashiCorpStore) GetSecret(ctx context.Context, name string) (string, error) {
	secret, err := s.client.Logical().ReadWithContext(ctx, s.path(name))
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", common.ErrTransientStore, name, err)
	}
	// deleted versions come back with metadata but no data
	if secret == nil || secret.Data == nil || secret.Data["data"] == nil {
		return "", fmt.Errorf("secret %s: %w", name, common.ErrNotFound)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("%w: invalid data format for %s", common.ErrInvalidKey, name)
	}
	value, ok := data["value"].(string)
	if !ok {
		return "", fmt.Errorf("%w: value field missing for %s", common.ErrInvalidKey, name)
	}
	return value, nil
}

// CreateSecret writes with cas=0, so Vault refuses to overwrite an
// existing secret.
func (s *HashiCorpStore) CreateSecret(ctx context.Context, name, value string) error {
	body := map[string]interface{}{
		"options": map[string]interface{}{"cas": 0},
		"data":    map[string]interface{}{"value": value},
	}

	_, err := s.client.Logical().WriteWithContext(ctx, s.path(name), body)
	if err == nil {
		return nil
	}

	var re *api.ResponseError
	if errors.As(err, &re) && re.StatusCode == http.StatusBadRequest {
		for _, msg := range re.Errors {
			if strings.Contains(msg, "check-and-set") {
				return fmt.Errorf("secret %s: %w", name, common.ErrAlreadyExists)
			}
		}
	}
	return fmt.Errorf("%w: write %s: %v", common.ErrTransientStore, name, err)
}
