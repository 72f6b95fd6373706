// Package marketdata fetches the crypto prices and FX rates a run generates against.
//
// Sources:
//   - CoinGecko simple/price REST endpoint (USD prices)
//   - open.er-api latest/USD REST endpoint (fiat units per USD)
//   - optional ticker WebSocket (Kraken v2 ticker channel) for live last prices
//
// Service combines them and substitutes a static table when a live source
// fails, unless fallback is disabled.
package marketdata
