// Package migrations embeds the SQL schema so the service can apply it at
// startup without shipping loose files.
package migrations

import _ "embed"

//go:embed 001_init.sql
var Schema string
