package migrate

import "embed"

// Embedded holds the SQL migrations compiled into the binary.
//
//go:embed migrations/*.sql
var Embedded embed.FS

// EmbeddedDir is the directory inside Embedded holding the migrations.
const EmbeddedDir = "migrations"
