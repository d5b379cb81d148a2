// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package.
// It handles schema migrations, query execution, and data
// mapping between domain entities and database records.
//
// Queries use $N placeholders in order of appearance and avoid
// PostgreSQL-only syntax where possible, so the stores also run against the
// SQLite schema used by the package tests.
package postgres
