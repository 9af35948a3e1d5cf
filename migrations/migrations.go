// Package migrations embeds the reply-log schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
