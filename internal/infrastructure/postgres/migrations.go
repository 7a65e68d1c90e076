package postgres

import "embed"

// Migrations holds the relational schema, applied at startup.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations that holds the scripts.
const MigrationsDir = "migrations"
