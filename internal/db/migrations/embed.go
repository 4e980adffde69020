// Package migrations holds the goose SQL migrations applied by db.RunMigrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
