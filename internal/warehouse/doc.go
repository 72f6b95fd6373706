// Package warehouse implements the sinks rampsim lands data into.
//
// Sinks:
//   - Postgres (TimescaleDB compatible), bulk appends via COPY
//   - ClickHouse, MergeTree tables, batched inserts
//   - Memory, for tests and dry runs
//
// All sinks use append-only semantics (never update, only insert). Tables are
// created from model schemas on first use and carry no unique constraints, so
// a retried batch shows up as duplicate ids in Stats rather than failing.
package warehouse
