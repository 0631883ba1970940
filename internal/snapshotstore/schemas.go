package snapshotstore

import "embed"

// migrationFiles is an embedded file system containing the SQL migration
// files that create the append-only snapshot log. Embedding them at
// compile time means a uigc binary carries its own schema and needs no
// separate migration assets on disk.
//
//go:embed migrations/*.sql
var migrationFiles embed.FS
