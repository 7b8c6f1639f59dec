// Package migrations embeds the goose SQL migrations applied by the seed tool.
package migrations

import "embed"

// Files holds the versioned *.sql migrations.
//
//go:embed *.sql
var Files embed.FS
