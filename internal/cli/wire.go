package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/dmitrijs2005/regsync/internal/artifact"
	"github.com/dmitrijs2005/regsync/internal/awsx"
	"github.com/dmitrijs2005/regsync/internal/config"
	"github.com/dmitrijs2005/regsync/internal/cryptox"
	"github.com/dmitrijs2005/regsync/internal/keyvault"
	"github.com/dmitrijs2005/regsync/internal/localstore"
	"github.com/dmitrijs2005/regsync/internal/logging"
	"github.com/dmitrijs2005/regsync/internal/reconcile"
	"github.com/dmitrijs2005/regsync/internal/remotestore"
)

// buildReconciler wires the concrete backends selected by cfg.
func buildReconciler(ctx context.Context, cfg *config.Config, log logging.Logger) (reconciler, error) {
	if err := localstore.EnsureDir(filepath.Dir(cfg.ArtifactPath)); err != nil {
		return nil, err
	}

	awsCfg, err := awsx.LoadConfig(ctx, awsx.Options{
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	remote := remotestore.New(awsCfg, remotestore.Options{
		BaseEndpoint: cfg.S3BaseEndpoint,
		UsePathStyle: cfg.S3PathStyle,
		TagKey:       cfg.TagKey,
		TagValue:     cfg.TagValue,
	}, log)

	secrets, err := newSecretStore(cfg, awsCfg)
	if err != nil {
		return nil, err
	}

	cipher, err := cryptox.New(cfg.Cipher)
	if err != nil {
		return nil, err
	}

	return reconcile.New(reconcile.Config{
		ArtifactPath: cfg.ArtifactPath,
		TempSuffix:   cfg.TempSuffix,
		BucketPrefix: cfg.BucketPrefix,
		SecretName:   cfg.SecretName,
	}, reconcile.Deps{
		Files:     localstore.New(log),
		Artifacts: artifact.Store{},
		Remote:    remote,
		Keys:      keyvault.New(secrets, cipher, log),
		Cipher:    cipher,
		Log:       log,
	}), nil
}

func newSecretStore(cfg *config.Config, awsCfg aws.Config) (keyvault.SecretStore, error) {
	switch cfg.KeyStore {
	case config.KeyStoreVault:
		return keyvault.NewHashiCorpStore(cfg.VaultAddr, cfg.VaultToken, cfg.VaultMount)
	case config.KeyStoreSecretsManager:
		return keyvault.NewSecretsManagerStore(awsCfg, cfg.SecretsManagerEndpoint), nil
	default:
		return nil, fmt.Errorf("unknown key store %q", cfg.KeyStore)
	}
}
