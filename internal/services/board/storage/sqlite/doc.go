// Package sqlite provides the local cache store backed by SQLite.
//
// The store only holds client-owned snapshots; every row can be discarded
// and the stores fall back to empty state.
package sqlite
