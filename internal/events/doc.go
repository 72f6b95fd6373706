// Package events publishes step-committed notifications.
//
// Downstream consumers (dbt jobs, dashboards) subscribe to learn that a table
// or date batch landed. Publishing is best effort: a failure is reported to
// the caller, who logs it, and never changes loader state.
package events
