package keyvault

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/dmitrijs2005/regsync/internal/common"
)

type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	CreateSecret(ctx context.Context, in *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
}

var newSecretsManagerClient = func(cfg aws.Config, optFns ...func(*secretsmanager.Options)) secretsManagerAPI {
	return secretsmanager.NewFromConfig(cfg, optFns...)
}

// SecretsManagerStore keeps secrets as plain SecretString values in AWS
// Secrets Manager.
type SecretsManagerStore struct {
	api secretsManagerAPI
}

// NewSecretsManagerStore builds a store from cfg. endpoint overrides the
// service URL when non-empty (LocalStack).
func NewSecretsManagerStore(cfg aws.Config, endpoint string) *SecretsManagerStore {
	return &SecretsManagerStore{
		api: newSecretsManagerClient(cfg, func(o *secretsmanager.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		}),
	}
}

func (s *SecretsManagerStore) GetSecret(ctx context.Context, name string) (string, error) {
	out, err := s.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		var nf *types.ResourceNotFoundException
		if errors.As(err, &nf) {
			return "", fmt.Errorf("secret %s: %w", name, common.ErrNotFound)
		}
		return "", fmt.Errorf("%w: get secret %s: %v", common.ErrTransientStore, name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("%w: secret %s has no string value", common.ErrInvalidKey, name)
	}
	return *out.SecretString, nil
}

func (s *SecretsManagerStore) CreateSecret(ctx context.Context, name, value string) error {
	_, err := s.api.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(name),
		SecretString: aws.String(value),
	})
	if err != nil {
		var ex *types.ResourceExistsException
		if errors.As(err, &ex) {
			return fmt.Errorf("secret %s: %w", name, common.ErrAlreadyExists)
		}
		return fmt.Errorf("%w: create secret %s: %v", common.ErrTransientStore, name, err)
	}
	return nil
}
