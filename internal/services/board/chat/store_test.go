package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	apperrors "github.com/louisbranch/missionboard/internal/platform/errors"
	"github.com/louisbranch/missionboard/internal/services/board/domain"
)

var fixedNow = time.Date(2026, time.October, 18, 8, 15, 0, 0, time.UTC)

func newTestStore(identity Identity) *Store {
	n := 0
	return New(Options{
		Identity: identity,
		Now:      func() time.Time { return fixedNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("msg-%d", n)
		},
	})
}

type missionSource []domain.Mission

func (m missionSource) MyMissions(context.Context) []domain.Mission {
	return m
}

func roomIDs(rooms []domain.ChatRoom) []int64 {
	out := make([]int64, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.ID)
	}
	return out
}

func TestNewStartsWithDefaultRooms(t *testing.T) {
	store := newTestStore(Identity{ID: "me"})

	var replayed []domain.ChatRoom
	unsubscribe := store.Rooms().Subscribe(func(v []domain.ChatRoom) { replayed = v })
	defer unsubscribe()

	if len(replayed) != 2 || replayed[0].Name != "General Chat" || replayed[1].Name != "Global Mission" {
		t.Fatalf("rooms = %+v", replayed)
	}
	if store.CurrentRoom().Read() != nil {
		t.Fatal("expected no active room")
	}
}

func TestSyncRoomsFromMissions(t *testing.T) {
	store := newTestStore(Identity{ID: "me"})
	store.SyncRoomsFromMissions(context.Background(), missionSource{{ID: 101, Name: "My Personal Mission"}, {ID: 7, Name: "Harbor"}})

	rooms := store.Rooms().Read()
	if got := roomIDs(rooms); len(got) != 2 || got[0] != 101 || got[1] != 7 {
		t.Fatalf("room ids = %v", got)
	}
	if rooms[1].Name != "Harbor" {
		t.Fatalf("room name = %q", rooms[1].Name)
	}
}

func TestSyncRoomsKeepsDefaultsWhenEmpty(t *testing.T) {
	store := newTestStore(Identity{ID: "me"})
	store.SyncRoomsFromMissions(context.Background(), missionSource{})
	if got := roomIDs(store.Rooms().Read()); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("room ids = %v, want defaults", got)
	}
}

func TestSendMessageAppendsToRoomAndActiveView(t *testing.T) {
	store := newTestStore(Identity{ID: "me", DisplayName: "Me"})
	room := domain.ChatRoom{ID: 1, Name: "General Chat"}
	store.SetCurrentRoom(room)

	msg, err := store.SendMessage(room.Key(), "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.ID != "msg-1" || msg.SenderID != "me" || msg.Sender != "Me" || msg.TS != "2026-10-18T08:15:00.000Z" {
		t.Fatalf("message = %+v", msg)
	}

	seq := store.Messages(room.Key()).Read()
	if len(seq) != 1 || seq[0].Text != "hello" {
		t.Fatalf("sequence = %+v", seq)
	}
	view := store.Displayed().Read()
	if len(view) != 1 || !view[0].Own || view[0].Text != "hello" || !view[0].Timestamp.Equal(fixedNow) {
		t.Fatalf("displayed = %+v", view)
	}
}

func TestSendMessageToInactiveRoomLeavesView(t *testing.T) {
	store := newTestStore(Identity{ID: "me"})
	store.SetCurrentRoom(domain.ChatRoom{ID: 1})

	if _, err := store.SendMessage(domain.MissionRoomKey(2), "elsewhere"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if view := store.Displayed().Read(); len(view) != 0 {
		t.Fatalf("displayed = %+v, want empty", view)
	}
	if seq := store.Messages(domain.MissionRoomKey(2)).Read(); len(seq) != 1 {
		t.Fatalf("room 2 sequence = %+v", seq)
	}
}

func TestSendMessageValidation(t *testing.T) {
	store := newTestStore(Identity{ID: "me"})

	tests := []struct {
		name string
		key  domain.RoomKey
		text string
	}{
		{name: "blank text", key: domain.MissionRoomKey(1), text: "  "},
		{name: "no room", key: domain.RoomKey{}, text: "hi"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.SendMessage(tc.key, tc.text)
			if !apperrors.HasCode(err, apperrors.CodeValidation) || err.Error() == "" {
				t.Fatalf("err = %v, want validation message", err)
			}
		})
	}
	if seq := store.Messages(domain.MissionRoomKey(1)).Read(); len(seq) != 0 {
		t.Fatalf("sequence = %+v, want empty", seq)
	}
}

func TestSetCurrentRoomRederivesOwnByIdentity(t *testing.T) {
	store := newTestStore(Identity{ID: "me", DisplayName: "You"})
	key := domain.MissionRoomKey(3)
	if _, err := store.SendMessage(key, "mine"); err != nil {
		t.Fatalf("send: %v", err)
	}

	other := newTestStore(Identity{ID: "someone-else", DisplayName: "You"})
	other.sequences[key] = store.sequences[key]

	store.SetCurrentRoom(domain.ChatRoom{ID: 3})
	if view := store.Displayed().Read(); len(view) != 1 || !view[0].Own || view[0].ID != 0 {
		t.Fatalf("own view = %+v", view)
	}

	other.SetCurrentRoom(domain.ChatRoom{ID: 3})
	if view := other.Displayed().Read(); len(view) != 1 || view[0].Own {
		t.Fatalf("same label but different identity marked own: %+v", view)
	}
}

func TestSetCurrentRoomWithoutMessagesClearsView(t *testing.T) {
	store := newTestStore(Identity{ID: "me"})
	store.SetCurrentRoom(domain.ChatRoom{ID: 1})
	if _, err := store.SendMessage(domain.MissionRoomKey(1), "x"); err != nil {
		t.Fatalf("send: %v", err)
	}
	store.SetCurrentRoom(domain.ChatRoom{ID: 9})
	if view := store.Displayed().Read(); len(view) != 0 {
		t.Fatalf("displayed = %+v", view)
	}
}

func TestOpenChatIsIdempotent(t *testing.T) {
	store := newTestStore(Identity{ID: "me"})
	room := domain.ChatRoom{ID: 42, Name: "Harbor"}

	store.OpenChat(room)
	store.OpenChat(room)

	if got := roomIDs(store.Rooms().Read()); len(got) != 3 || got[2] != 42 {
		t.Fatalf("room ids = %v", got)
	}
	if current := store.CurrentRoom().Read(); current == nil || current.ID != 42 {
		t.Fatalf("current = %+v", current)
	}
}

func TestOpenPrivateChat(t *testing.T) {
	store := newTestStore(Identity{ID: "me"})
	user := domain.FriendUser{Username: "dino", DisplayName: "Dino Saur"}

	for range 2 {
		if err := store.OpenPrivateChat(user); err != nil {
			t.Fatalf("open private chat: %v", err)
		}
	}

	if users := store.PrivateChats().Read(); len(users) != 1 || users[0].Username != "dino" {
		t.Fatalf("private chats = %+v", users)
	}
	current := store.CurrentRoom().Read()
	if current == nil || current.ID != domain.PrivateRoomID || current.Username != "dino" || current.Name != "Dino Saur" {
		t.Fatalf("current = %+v", current)
	}

	if _, err := store.SendMessage(domain.PrivateRoomKey("dino"), "hey"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if view := store.Displayed().Read(); len(view) != 1 {
		t.Fatalf("displayed = %+v", view)
	}
}

func mustOpenPrivate(t *testing.T, store *Store, username string) {
	t.Helper()
	if err := store.OpenPrivateChat(domain.FriendUser{Username: username}); err != nil {
		t.Fatalf("open private chat %q: %v", username, err)
	}
}

func TestOpenPrivateChatRequiresUsername(t *testing.T) {
	store := newTestStore(Identity{ID: "me"})
	store.OpenChat(domain.ChatRoom{ID: 1, Name: "General Chat"})

	err := store.OpenPrivateChat(domain.FriendUser{Username: "  ", DisplayName: "Ghost"})
	if !apperrors.HasCode(err, apperrors.CodeValidation) || err.Error() == "" {
		t.Fatalf("err = %v, want validation error", err)
	}
	if users := store.PrivateChats().Read(); len(users) != 0 {
		t.Fatalf("private chats = %+v, want none", users)
	}
	if current := store.CurrentRoom().Read(); current == nil || current.ID != 1 {
		t.Fatalf("current = %+v, want room 1 kept", current)
	}
}

func TestCloseChatClearsActiveRoom(t *testing.T) {
	store := newTestStore(Identity{ID: "me"})
	store.OpenChat(domain.ChatRoom{ID: 2, Name: "Global Mission"})
	if _, err := store.SendMessage(domain.MissionRoomKey(2), "bye"); err != nil {
		t.Fatalf("send: %v", err)
	}

	store.CloseChat(2)

	if got := roomIDs(store.Rooms().Read()); len(got) != 1 || got[0] != 1 {
		t.Fatalf("room ids = %v", got)
	}
	if store.CurrentRoom().Read() != nil {
		t.Fatal("expected active room cleared")
	}
	if view := store.Displayed().Read(); len(view) != 0 {
		t.Fatalf("displayed = %+v", view)
	}
	if seq := store.Messages(domain.MissionRoomKey(2)).Read(); len(seq) != 1 {
		t.Fatalf("closing a room dropped its messages: %+v", seq)
	}
}

func TestCloseChatKeepsOtherActiveRoom(t *testing.T) {
	store := newTestStore(Identity{ID: "me"})
	mustOpenPrivate(t, store, "dino")

	store.CloseChat(domain.PrivateRoomID)
	store.CloseChat(1)

	if current := store.CurrentRoom().Read(); current == nil || current.Username != "dino" {
		t.Fatalf("current = %+v, want private chat kept", current)
	}
}

func TestClosePrivateChat(t *testing.T) {
	store := newTestStore(Identity{ID: "me"})
	mustOpenPrivate(t, store, "dino")
	mustOpenPrivate(t, store, "rex")

	store.ClosePrivateChat("dino")
	if current := store.CurrentRoom().Read(); current == nil || current.Username != "rex" {
		t.Fatalf("current = %+v", current)
	}
	store.ClosePrivateChat("rex")
	if store.CurrentRoom().Read() != nil {
		t.Fatal("expected active room cleared")
	}
	if users := store.PrivateChats().Read(); len(users) != 0 {
		t.Fatalf("private chats = %+v", users)
	}
}

func TestMessageStreamsReplayAndDeliverInOrder(t *testing.T) {
	store := newTestStore(Identity{ID: "me"})
	key := domain.MissionRoomKey(1)

	var lengths []int
	unsubscribe := store.Messages(key).Subscribe(func(v []domain.ChatMessage) {
		lengths = append(lengths, len(v))
	})
	defer unsubscribe()

	for _, text := range []string{"a", "b"} {
		if _, err := store.SendMessage(key, text); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	if len(lengths) != 3 || lengths[0] != 0 || lengths[1] != 1 || lengths[2] != 2 {
		t.Fatalf("deliveries = %v", lengths)
	}
}

func TestEmptyIdentityGetsGeneratedID(t *testing.T) {
	store := New(Options{})
	msg, err := store.SendMessage(domain.MissionRoomKey(1), "hi")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.SenderID == "" || msg.Sender != DefaultSenderLabel {
		t.Fatalf("message = %+v", msg)
	}
	store.SetCurrentRoom(domain.ChatRoom{ID: 1})
	if view := store.Displayed().Read(); len(view) != 1 || !view[0].Own {
		t.Fatalf("displayed = %+v", view)
	}
}
