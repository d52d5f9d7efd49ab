// Package migrations embeds the stash schema for goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
