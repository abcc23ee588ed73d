// Package migrations embeds the goose migrations that define the registry
// schema inside the artifact.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
