package domain

// FriendStatus places a user in one of the three friend-graph lists.
type FriendStatus string

const (
	FriendAccepted FriendStatus = "Friend"
	FriendOutgoing FriendStatus = "Outgoing"
	FriendIncoming FriendStatus = "Incoming"
)

// FriendUser is a user as shown in the friend panel. Username is the key.
type FriendUser struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// FriendEntry is a FriendUser tagged with the list it belongs to.
type FriendEntry struct {
	FriendUser
	Status FriendStatus `json:"status"`
}

// FriendGraph is the persisted shape of the friend lists.
type FriendGraph struct {
	Friends  []FriendUser `json:"friends"`
	Outgoing []FriendUser `json:"outgoing"`
	Incoming []FriendUser `json:"incoming"`
}

// Entries flattens the graph into friends, outgoing, then incoming entries.
func (g FriendGraph) Entries() []FriendEntry {
	entries := make([]FriendEntry, 0, len(g.Friends)+len(g.Outgoing)+len(g.Incoming))
	for _, u := range g.Friends {
		entries = append(entries, FriendEntry{FriendUser: u, Status: FriendAccepted})
	}
	for _, u := range g.Outgoing {
		entries = append(entries, FriendEntry{FriendUser: u, Status: FriendOutgoing})
	}
	for _, u := range g.Incoming {
		entries = append(entries, FriendEntry{FriendUser: u, Status: FriendIncoming})
	}
	return entries
}

// Lookup reports which list holds username.
func (g FriendGraph) Lookup(username string) (FriendStatus, bool) {
	switch {
	case IndexOfUser(g.Friends, username) >= 0:
		return FriendAccepted, true
	case IndexOfUser(g.Outgoing, username) >= 0:
		return FriendOutgoing, true
	case IndexOfUser(g.Incoming, username) >= 0:
		return FriendIncoming, true
	}
	return "", false
}

// IndexOfUser returns the position of username in users, or -1.
func IndexOfUser(users []FriendUser, username string) int {
	for i, u := range users {
		if u.Username == username {
			return i
		}
	}
	return -1
}
