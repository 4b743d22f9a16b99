// Package migrations embeds the schema migrations for each SQL back end.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
