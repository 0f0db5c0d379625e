// Package migrations embeds the SQL schema migrations run by goose at
// server startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
