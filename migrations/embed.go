// Package migrations embeds the SQL migration files into the binary.
package migrations

import "embed"

// Dir is the directory of FS holding the migration files.
const Dir = "sql"

// FS holds the versioned `<timestamp>_<name>.up.sql` / `.down.sql` pairs.
//
//go:embed sql
var FS embed.FS
