// Package timeouts defines shared timeout constants used by the client layer.
// Centralizing these values keeps the upstream and cache boundaries in sync.
package timeouts

import "time"

// UpstreamRequest caps a single call to the mission-board API when the
// caller does not configure its own bound.
const UpstreamRequest = 5 * time.Second

// CacheOpen caps opening and migrating the local cache database.
const CacheOpen = 5 * time.Second

// RoomSync caps the background chat room derivation started with a session.
const RoomSync = 10 * time.Second

// Shutdown limits how long telemetry may flush when a command exits.
const Shutdown = 5 * time.Second
