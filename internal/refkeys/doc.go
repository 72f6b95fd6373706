// Package refkeys reads foreign-key candidates back from the warehouse.
//
// Keys always come from persisted rows, never from what the current process
// generated, so a dependent table can only reference parents that landed.
package refkeys
