// Package metrics records how often the client layer runs degraded.
//
// # Metric Categories
//
//   - Upstream: call counts by operation and outcome
//   - Fallbacks: reads served from synthetic or cached data
//   - Cache: persisted blobs discarded because they could not be decoded
//
// Metrics are registered on a caller-supplied prometheus.Registerer so tests
// and embedding processes can keep them isolated.
package metrics
