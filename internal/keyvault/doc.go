// Package keyvault guarantees one stable symmetric key per secret name.
//
// Vault looks the key up first and only mints a new one when the backing
// SecretStore reports common.ErrNotFound. Any other failure is returned:
// a missing key never degrades to "no encryption".
//
// Two processes racing on first creation are not coordinated. When the
// store itself rejects the second create (Secrets Manager, Vault KV with
// check-and-set) the loser re-reads and returns the winner's key;
// otherwise the last writer wins. Run a single writer per project.
package keyvault
