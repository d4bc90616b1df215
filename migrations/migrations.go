// Package migrations embeds the clinic schema for golang-migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
