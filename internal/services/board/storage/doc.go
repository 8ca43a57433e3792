// Package storage declares the local key-value cache the client stores
// persist through.
//
// Cached blobs are client-owned snapshots. They are the only state that
// outlives a session and are never merged across processes: the last write
// to a key wins.
package storage
