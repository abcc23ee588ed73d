package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/regsync/internal/cryptox"
)

const (
	KeyStoreSecretsManager = "secretsmanager"
	KeyStoreVault          = "vault"
)

// Config holds runtime settings for one regsync invocation.
type Config struct {
	ConfigFile string

	ArtifactPath string
	TempSuffix   string
	BucketPrefix string
	TagKey       string
	TagValue     string
	SecretName   string

	KeyStore               string
	SecretsManagerEndpoint string
	VaultAddr              string
	VaultToken             string
	VaultMount             string

	Cipher string

	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
	S3PathStyle    bool

	OperationTimeout time.Duration

	LogJSON bool
	Debug   bool
}

// LoadDefaults populates c with the project defaults.
func (c *Config) LoadDefaults() {
	c.ArtifactPath = "warinpocket.sqlite"
	c.TempSuffix = "_copy"
	c.BucketPrefix = "warinpocketbucket"
	c.TagKey = "Project"
	c.TagValue = "PhotoProject"
	c.SecretName = "db_encryption_key_photo_project"
	c.KeyStore = KeyStoreSecretsManager
	c.VaultMount = "secret"
	c.Cipher = cryptox.KindAESGCM
	c.S3Region = "us-east-1"
	c.OperationTimeout = 2 * time.Minute
}

// Validate rejects settings that would fail later in a less obvious way.
func (c *Config) Validate() error {
	if c.ArtifactPath == "" {
		return fmt.Errorf("artifact path must not be empty")
	}
	if c.TempSuffix == "" {
		return fmt.Errorf("temp suffix must not be empty")
	}
	// S3 bucket names are lowercase; prefix + "-" + uuid must fit in 63
	if c.BucketPrefix == "" || c.BucketPrefix != strings.ToLower(c.BucketPrefix) || len(c.BucketPrefix) > 26 {
		return fmt.Errorf("bucket prefix %q must be 1-26 lowercase characters", c.BucketPrefix)
	}
	if c.SecretName == "" {
		return fmt.Errorf("secret name must not be empty")
	}
	switch c.KeyStore {
	case KeyStoreSecretsManager, KeyStoreVault:
	default:
		return fmt.Errorf("unknown key store %q (want %s or %s)", c.KeyStore, KeyStoreSecretsManager, KeyStoreVault)
	}
	if _, err := cryptox.New(c.Cipher); err != nil {
		return err
	}
	if c.OperationTimeout <= 0 {
		return fmt.Errorf("operation timeout must be positive, got %s", c.OperationTimeout)
	}
	return nil
}
