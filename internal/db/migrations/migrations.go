// Package migrations embeds the goose migration files so the server can run
// them from any working directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
