// Package migrations holds the SQLite schema for battle logs.
package migrations

import "embed"

// FS contains the ordered .sql migration files
//
//go:embed *.sql
var FS embed.FS
