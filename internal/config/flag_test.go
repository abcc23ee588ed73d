package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:   "no flags keeps defaults",
			args:   nil,
			mutate: func(c *Config) {},
		},
		{
			name: "overrides",
			args: []string{"--artifact", "/tmp/reg.sqlite", "--key-store", "vault", "--timeout", "30s", "--s3-path-style", "-c", "cfg.json"},
			mutate: func(c *Config) {
				c.ArtifactPath = "/tmp/reg.sqlite"
				c.KeyStore = KeyStoreVault
				c.OperationTimeout = 30 * time.Second
				c.S3PathStyle = true
				c.ConfigFile = "cfg.json"
			},
		},
		{
			name:    "bad duration",
			args:    []string{"--timeout", "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.LoadDefaults()

			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			RegisterFlags(fs, cfg)
			err := fs.Parse(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			want := &Config{}
			want.LoadDefaults()
			tt.mutate(want)
			assert.Empty(t, cmp.Diff(want, cfg))
		})
	}
}
