// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Rows appended per table
//   - Step durations and failures by error kind
//   - Last committed incremental date
//   - Whether the run generated against fallback quotes
//
// rampsim is a batch job, so metrics are pushed to a Pushgateway at exit
// rather than scraped.
package metrics
