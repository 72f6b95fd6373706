// Package pipeline loads generated data into the warehouse in dependency order.
//
// The one-time reference tables load in the declared order of ReferenceSteps,
// each at most once, gated by checkpoint flags. Ramp transactions load one
// calendar date per call, advancing the checkpoint's last date.
//
// A step commits in two phases: the warehouse append, then the checkpoint
// write. The checkpoint is only advanced after the append is acknowledged.
// Appends are not idempotent, so a step retried after a partial append can
// duplicate rows; ids are regenerated deterministically per step so duplicates
// are visible as repeated ids.
package pipeline
