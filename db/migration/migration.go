// Package migration embeds the database schema migrations.
package migration

import "embed"

// FS holds the ordered up and down migrations.
//
//go:embed *.sql
var FS embed.FS
