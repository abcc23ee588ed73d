package config

import (
	"github.com/spf13/pflag"
)

// RegisterFlags binds every setting to fs, using the current values of cfg
// as flag defaults. Call LoadDefaults first.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.ConfigFile, "config", "c", cfg.ConfigFile, "path to JSON config file")

	fs.StringVar(&cfg.ArtifactPath, "artifact", cfg.ArtifactPath, "local path of the registry artifact")
	fs.StringVar(&cfg.TempSuffix, "temp-suffix", cfg.TempSuffix, "suffix of the disposable encrypted copy")
	fs.StringVar(&cfg.BucketPrefix, "bucket-prefix", cfg.BucketPrefix, "name prefix of the project bucket")
	fs.StringVar(&cfg.TagKey, "tag-key", cfg.TagKey, "tag key applied to new buckets")
	fs.StringVar(&cfg.TagValue, "tag-value", cfg.TagValue, "tag value applied to new buckets")
	fs.StringVar(&cfg.SecretName, "secret-name", cfg.SecretName, "name of the encryption key secret")

	fs.StringVar(&cfg.KeyStore, "key-store", cfg.KeyStore, "key store backend (secretsmanager|vault)")
	fs.StringVar(&cfg.SecretsManagerEndpoint, "secrets-endpoint", cfg.SecretsManagerEndpoint, "custom Secrets Manager endpoint")
	fs.StringVar(&cfg.VaultAddr, "vault-addr", cfg.VaultAddr, "Vault server address (defaults to VAULT_ADDR)")
	fs.StringVar(&cfg.VaultToken, "vault-token", cfg.VaultToken, "Vault token (defaults to VAULT_TOKEN)")
	fs.StringVar(&cfg.VaultMount, "vault-mount", cfg.VaultMount, "Vault KV v2 mount path")

	fs.StringVar(&cfg.Cipher, "cipher", cfg.Cipher, "artifact cipher (aes-gcm|secretbox)")

	fs.StringVar(&cfg.S3Region, "region", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "s3-endpoint", cfg.S3BaseEndpoint, "custom S3 endpoint (MinIO, LocalStack)")
	fs.StringVar(&cfg.S3AccessKey, "s3-access-key", cfg.S3AccessKey, "static S3 access key")
	fs.StringVar(&cfg.S3SecretKey, "s3-secret-key", cfg.S3SecretKey, "static S3 secret key")
	fs.BoolVar(&cfg.S3PathStyle, "s3-path-style", cfg.S3PathStyle, "use path-style S3 addressing")

	fs.DurationVar(&cfg.OperationTimeout, "timeout", cfg.OperationTimeout, "deadline for the whole operation")

	fs.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "always log as JSON")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")
}
