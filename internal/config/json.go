package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/regsync/internal/timex"
	"github.com/spf13/pflag"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell an absent key from a zero value.
type JsonConfig struct {
	ArtifactPath *string `json:"artifact_path"`
	TempSuffix   *string `json:"temp_suffix"`
	BucketPrefix *string `json:"bucket_prefix"`
	TagKey       *string `json:"tag_key"`
	TagValue     *string `json:"tag_value"`
	SecretName   *string `json:"secret_name"`

	KeyStore               *string `json:"key_store"`
	SecretsManagerEndpoint *string `json:"secrets_endpoint"`
	VaultAddr              *string `json:"vault_addr"`
	VaultToken             *string `json:"vault_token"`
	VaultMount             *string `json:"vault_mount"`

	Cipher *string `json:"cipher"`

	S3Region       *string `json:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint"`
	S3AccessKey    *string `json:"s3_access_key"`
	S3SecretKey    *string `json:"s3_secret_key"`
	S3PathStyle    *bool   `json:"s3_path_style"`

	OperationTimeout *timex.Duration `json:"operation_timeout"`

	LogJSON *bool `json:"log_json"`
	Debug   *bool `json:"debug"`
}

// ApplyJSON overlays cfg with the file named by cfg.ConfigFile. A key is
// skipped when its flag was set explicitly on fs, so flags keep the last
// word. fs may be nil.
func ApplyJSON(cfg *Config, fs *pflag.FlagSet) error {
	if cfg.ConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(cfg.ConfigFile)
	if err != nil {
		return fmt.Errorf("read config %s: %w", cfg.ConfigFile, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", cfg.ConfigFile, err)
	}

	overlay(fs, "artifact", &cfg.ArtifactPath, jc.ArtifactPath)
	overlay(fs, "temp-suffix", &cfg.TempSuffix, jc.TempSuffix)
	overlay(fs, "bucket-prefix", &cfg.BucketPrefix, jc.BucketPrefix)
	overlay(fs, "tag-key", &cfg.TagKey, jc.TagKey)
	overlay(fs, "tag-value", &cfg.TagValue, jc.TagValue)
	overlay(fs, "secret-name", &cfg.SecretName, jc.SecretName)
	overlay(fs, "key-store", &cfg.KeyStore, jc.KeyStore)
	overlay(fs, "secrets-endpoint", &cfg.SecretsManagerEndpoint, jc.SecretsManagerEndpoint)
	overlay(fs, "vault-addr", &cfg.VaultAddr, jc.VaultAddr)
	overlay(fs, "vault-token", &cfg.VaultToken, jc.VaultToken)
	overlay(fs, "vault-mount", &cfg.VaultMount, jc.VaultMount)
	overlay(fs, "cipher", &cfg.Cipher, jc.Cipher)
	overlay(fs, "region", &cfg.S3Region, jc.S3Region)
	overlay(fs, "s3-endpoint", &cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	overlay(fs, "s3-access-key", &cfg.S3AccessKey, jc.S3AccessKey)
	overlay(fs, "s3-secret-key", &cfg.S3SecretKey, jc.S3SecretKey)
	overlay(fs, "s3-path-style", &cfg.S3PathStyle, jc.S3PathStyle)
	overlay(fs, "log-json", &cfg.LogJSON, jc.LogJSON)
	overlay(fs, "debug", &cfg.Debug, jc.Debug)

	if jc.OperationTimeout != nil {
		d := jc.OperationTimeout.Duration
		overlay(fs, "timeout", &cfg.OperationTimeout, &d)
	}

	return nil
}

func overlay[T any](fs *pflag.FlagSet, flag string, dst, src *T) {
	if src == nil || (fs != nil && fs.Changed(flag)) {
		return
	}
	*dst = *src
}

// LoadConfig builds a Config from defaults, the JSON file and flags parsed
// from args. It is the non-cobra entry point used by tests and tools.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	fs := pflag.NewFlagSet("regsync", pflag.ContinueOnError)
	RegisterFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := ApplyJSON(cfg, fs); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
