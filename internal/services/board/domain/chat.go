package domain

import (
	"strconv"
	"time"
)

// PrivateRoomID is the id carried by rooms addressed by username.
const PrivateRoomID int64 = -1

// ChatRoom is a mission room (ID) or a private room (Username).
type ChatRoom struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
}

// Key returns the room's lookup key.
func (r ChatRoom) Key() RoomKey {
	if r.Username != "" {
		return RoomKey{Username: r.Username}
	}
	return RoomKey{ID: r.ID}
}

// Private reports whether the room is addressed by username.
func (r ChatRoom) Private() bool {
	return r.Username != ""
}

// RoomKey addresses a message sequence: a username when set, otherwise a
// mission id.
type RoomKey struct {
	ID       int64
	Username string
}

// MissionRoomKey addresses a mission room.
func MissionRoomKey(id int64) RoomKey {
	return RoomKey{ID: id}
}

// PrivateRoomKey addresses a private room.
func PrivateRoomKey(username string) RoomKey {
	return RoomKey{Username: username}
}

// String renders the key as the username or the decimal id.
func (k RoomKey) String() string {
	if k.Username != "" {
		return k.Username
	}
	return strconv.FormatInt(k.ID, 10)
}

// ChatMessage is one entry in a room's append-only sequence.
//
// SenderID is the identity of the author captured when the message was
// created; Sender is only a display label.
type ChatMessage struct {
	ID       string `json:"id"`
	SenderID string `json:"sender_id"`
	Sender   string `json:"sender"`
	Text     string `json:"text"`
	TS       string `json:"ts"`
}

// DisplayedMessage is a message as rendered in the active room view.
type DisplayedMessage struct {
	ID        int
	Text      string
	Sender    string
	Timestamp time.Time
	Own       bool
}
