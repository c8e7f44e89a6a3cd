// Package migrations embeds the versioned SQL schema so binaries and tests
// can migrate without locating the directory on disk.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file in this directory
//
//go:embed *.sql
var FS embed.FS
