// Package migrations embeds the SQL migrations of the definitions catalog
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
