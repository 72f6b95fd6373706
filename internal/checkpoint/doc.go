// Package checkpoint persists pipeline progress: the last incremental date
// processed and one population flag per one-time table.
//
// A Checkpoint is a plain value. Loader operations take one and return the
// next; a Store only ever writes complete records.
package checkpoint
