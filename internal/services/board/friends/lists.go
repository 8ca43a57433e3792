package friends

import "github.com/louisbranch/missionboard/internal/services/board/domain"

func prepend(users []domain.FriendUser, user domain.FriendUser) []domain.FriendUser {
	out := make([]domain.FriendUser, 0, len(users)+1)
	out = append(out, user)
	return append(out, users...)
}

func without(users []domain.FriendUser, username string) []domain.FriendUser {
	out := make([]domain.FriendUser, 0, len(users))
	for _, u := range users {
		if u.Username != username {
			out = append(out, u)
		}
	}
	return out
}

func cloneUsers(users []domain.FriendUser) []domain.FriendUser {
	out := make([]domain.FriendUser, len(users))
	copy(out, users)
	return out
}

func cloneGraph(g domain.FriendGraph) domain.FriendGraph {
	return domain.FriendGraph{
		Friends:  cloneUsers(g.Friends),
		Outgoing: cloneUsers(g.Outgoing),
		Incoming: cloneUsers(g.Incoming),
	}
}

// normalizeGraph replaces nil lists with empty ones so the persisted blob
// always carries all three arrays.
func normalizeGraph(g domain.FriendGraph) domain.FriendGraph {
	if g.Friends == nil {
		g.Friends = []domain.FriendUser{}
	}
	if g.Outgoing == nil {
		g.Outgoing = []domain.FriendUser{}
	}
	if g.Incoming == nil {
		g.Incoming = []domain.FriendUser{}
	}
	return g
}

// dedupeGraph drops blank usernames and repeats so each username appears in
// at most one list. Friends win over incoming, incoming over outgoing.
func dedupeGraph(g domain.FriendGraph) domain.FriendGraph {
	seen := make(map[string]struct{})
	keep := func(users []domain.FriendUser) []domain.FriendUser {
		out := make([]domain.FriendUser, 0, len(users))
		for _, u := range users {
			if u.Username == "" {
				continue
			}
			if _, ok := seen[u.Username]; ok {
				continue
			}
			seen[u.Username] = struct{}{}
			out = append(out, u)
		}
		return out
	}
	return domain.FriendGraph{
		Friends:  keep(g.Friends),
		Incoming: keep(g.Incoming),
		Outgoing: keep(g.Outgoing),
	}
}

func graphSize(g domain.FriendGraph) int {
	return len(g.Friends) + len(g.Outgoing) + len(g.Incoming)
}

func sameUsers(a, b []domain.FriendUser) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
