// Package migrations embeds the versioned SQL schema applied by cmd/migrate
// and, optionally, at server start.
package migrations

import "embed"

// FS holds the NNNNNN_name.{up,down}.sql files
//
//go:embed *.sql
var FS embed.FS
