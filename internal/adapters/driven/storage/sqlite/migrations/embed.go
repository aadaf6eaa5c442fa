// Package migrations embeds the versioned schema scripts applied by
// the SQLite store at startup.
package migrations

import "embed"

// FS holds every NNN_name.up.sql script, applied in version order.
//
//go:embed *.sql
var FS embed.FS
