// Package database provides connection pool management for the PostgreSQL
// (or TimescaleDB) warehouse.
//
// The pool is used by the warehouse sink for DDL, COPY-based appends and key lookups.
package database
