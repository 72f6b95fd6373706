// Package generate produces synthetic exchange entities.
//
// A Generator is deterministic for a given seed, quotes and clock: ids are
// UUIDv4 values drawn from the seeded stream, so regenerating a batch yields
// the same rows. Every foreign key is drawn from the keys passed in.
package generate
