// Package remote is the JSON-over-HTTP client for the mission board API.
//
// Every call is bounded by the configured timeout, traced, and reports
// non-2xx replies as *StatusError. Callers decide how to recover.
package remote
