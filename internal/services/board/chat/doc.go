// Package chat keeps the client's chat rooms and their message sequences.
//
// Messages are local to the session: each room key owns an append-only
// sequence exposed as its own stream, and the displayed view mirrors the
// active room. The mission room list is derived from the caller's missions.
package chat
