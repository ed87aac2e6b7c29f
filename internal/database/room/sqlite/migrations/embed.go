package migrations

import "embed"

// FS contains embedded SQLite migrations for room storage.
//
//go:embed *.sql
var FS embed.FS
