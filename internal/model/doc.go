// Package model defines the entity types landed in the warehouse by rampsim.
//
// All types mirror the warehouse tables declared in tables.go.
//
// Conventions:
//   - Money and asset quantities: shopspring decimal.Decimal, never float64
//   - Timestamps: time.Time in UTC
//   - IDs: UUIDv4 strings
//   - Nullable columns: pointer fields, rendered as nil by Values()
package model
