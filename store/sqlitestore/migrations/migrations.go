// Package migrations embeds the goose migrations of the SQLite Record Store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
