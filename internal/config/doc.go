// Package config loads runtime configuration for regsync.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with --config / -c.
//  3. Command-line flags that were set explicitly.
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "2m" or integer
// nanoseconds. Absent keys keep their earlier value:
//
//	{
//	  "artifact_path": "/var/lib/regsync/warinpocket.sqlite",
//	  "bucket_prefix": "warinpocketbucket",
//	  "key_store": "vault",
//	  "vault_addr": "https://vault.internal:8200",
//	  "cipher": "aes-gcm",
//	  "s3_region": "eu-west-1",
//	  "operation_timeout": "2m"
//	}
//
// AWS credentials follow the SDK chain (environment, shared config, IMDS)
// unless s3_access_key and s3_secret_key are both given.
package config
