package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/louisbranch/missionboard/internal/platform/errors"
	"github.com/louisbranch/missionboard/internal/platform/logging"
	"github.com/louisbranch/missionboard/internal/services/board/broadcast"
	"github.com/louisbranch/missionboard/internal/services/board/domain"
	"github.com/louisbranch/missionboard/internal/services/board/i18n"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/message"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// DefaultSenderLabel is shown for the caller's messages when the identity
// has no display name.
const DefaultSenderLabel = "You"

// MissionSource provides the missions the room list is derived from.
type MissionSource interface {
	MyMissions(ctx context.Context) []domain.Mission
}

// Identity is the session user messages are attributed to. An empty ID is
// replaced by a generated one for the lifetime of the store.
type Identity struct {
	ID          string
	DisplayName string
}

// Options holds optional collaborators.
type Options struct {
	Logger   logrus.FieldLogger
	Identity Identity
	Locale   string
	Now      func() time.Time
	NewID    func() string
}

// Store is the chat store.
type Store struct {
	log      logrus.FieldLogger
	identity Identity
	printer  *message.Printer
	now      func() time.Time
	newID    func() string

	mu        sync.Mutex
	rooms     *broadcast.Store[[]domain.ChatRoom]
	private   *broadcast.Store[[]domain.FriendUser]
	current   *broadcast.Store[*domain.ChatRoom]
	displayed *broadcast.Store[[]domain.DisplayedMessage]
	sequences map[domain.RoomKey]*broadcast.Store[[]domain.ChatMessage]
}

// DefaultRooms is the room list used until missions are known.
func DefaultRooms() []domain.ChatRoom {
	return []domain.ChatRoom{
		{ID: 1, Name: "General Chat"},
		{ID: 2, Name: "Global Mission"},
	}
}

// New returns a store holding the default rooms. It does not contact
// anything; call SyncRoomsFromMissions to derive rooms.
func New(opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	identity := opts.Identity
	identity.ID = strings.TrimSpace(identity.ID)
	if identity.ID == "" {
		identity.ID = newID()
	}
	if strings.TrimSpace(identity.DisplayName) == "" {
		identity.DisplayName = DefaultSenderLabel
	}
	return &Store{
		log:       logging.OrDiscard(opts.Logger).WithField("component", "chat"),
		identity:  identity,
		printer:   i18n.PrinterFor(opts.Locale),
		now:       now,
		newID:     newID,
		rooms:     broadcast.New(DefaultRooms()),
		private:   broadcast.New([]domain.FriendUser{}),
		current:   broadcast.New[*domain.ChatRoom](nil),
		displayed: broadcast.New([]domain.DisplayedMessage{}),
		sequences: make(map[domain.RoomKey]*broadcast.Store[[]domain.ChatMessage]),
	}
}

// Rooms is the stream of mission rooms.
func (s *Store) Rooms() broadcast.Stream[[]domain.ChatRoom] { return s.rooms }

// PrivateChats is the stream of users with an open private chat.
func (s *Store) PrivateChats() broadcast.Stream[[]domain.FriendUser] { return s.private }

// CurrentRoom is the stream of the active room; nil when none is active.
func (s *Store) CurrentRoom() broadcast.Stream[*domain.ChatRoom] { return s.current }

// Displayed is the stream of the active room's messages as rendered.
func (s *Store) Displayed() broadcast.Stream[[]domain.DisplayedMessage] { return s.displayed }

// Messages returns the message sequence for key, creating an empty one if
// the room has no messages yet.
func (s *Store) Messages(key domain.RoomKey) broadcast.Stream[[]domain.ChatMessage] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sequenceLocked(key)
}

// SendMessage appends text from the session user to the room at key, and to
// the displayed view when key is the active room.
func (s *Store) SendMessage(key domain.RoomKey, text string) (domain.ChatMessage, error) {
	if key == (domain.RoomKey{}) {
		return domain.ChatMessage{}, apperrors.New(apperrors.CodeValidation, s.printer.Sprintf(i18n.KeyRoomRequired))
	}
	if strings.TrimSpace(text) == "" {
		return domain.ChatMessage{}, apperrors.New(apperrors.CodeValidation, s.printer.Sprintf(i18n.KeyMessageRequired))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UTC()
	msg := domain.ChatMessage{
		ID:       s.newID(),
		SenderID: s.identity.ID,
		Sender:   s.identity.DisplayName,
		Text:     text,
		TS:       ts.Format(timestampLayout),
	}
	s.sequenceLocked(key).Update(func(current []domain.ChatMessage) []domain.ChatMessage {
		return appendCopy(current, msg)
	})

	if room := s.current.Read(); room != nil && room.Key() == key {
		s.displayed.Update(func(current []domain.DisplayedMessage) []domain.DisplayedMessage {
			return appendCopy(current, domain.DisplayedMessage{
				ID:        len(current),
				Text:      text,
				Sender:    msg.Sender,
				Timestamp: ts,
				Own:       true,
			})
		})
	}
	s.log.WithFields(logrus.Fields{"room": key.String(), "message_id": msg.ID}).Debug("message sent")
	return msg, nil
}

// SetCurrentRoom makes room active and re-derives the displayed view from
// its stored messages.
func (s *Store) SetCurrentRoom(room domain.ChatRoom) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCurrentLocked(room)
}

// OpenChat adds a mission room to the room list if its id is not there yet
// and makes it active.
func (s *Store) OpenChat(room domain.ChatRoom) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room.Username = ""
	rooms := s.rooms.Read()
	if indexOfRoom(rooms, room.ID) < 0 {
		s.rooms.Write(appendCopy(rooms, room))
	}
	s.setCurrentLocked(room)
}

// OpenPrivateChat adds user to the private chats if absent and makes the
// private room with user active. A blank username is a validation error.
func (s *Store) OpenPrivateChat(user domain.FriendUser) error {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		return apperrors.New(apperrors.CodeValidation, s.printer.Sprintf(i18n.KeyRoomRequired))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.private.Read()
	if domain.IndexOfUser(users, user.Username) < 0 {
		s.private.Write(appendCopy(users, user))
	}
	name := user.DisplayName
	if name == "" {
		name = user.Username
	}
	s.setCurrentLocked(domain.ChatRoom{ID: domain.PrivateRoomID, Name: name, Username: user.Username})
	return nil
}

// CloseChat removes the mission room id and clears the active room if it
// was that room.
func (s *Store) CloseChat(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms := s.rooms.Read()
	if indexOfRoom(rooms, id) >= 0 {
		kept := make([]domain.ChatRoom, 0, len(rooms))
		for _, r := range rooms {
			if r.ID != id {
				kept = append(kept, r)
			}
		}
		s.rooms.Write(kept)
	}
	if room := s.current.Read(); room != nil && !room.Private() && room.ID == id {
		s.clearLocked()
	}
}

// ClosePrivateChat removes the private chat with username and clears the
// active room if it was that chat.
func (s *Store) ClosePrivateChat(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.private.Read()
	if domain.IndexOfUser(users, username) >= 0 {
		kept := make([]domain.FriendUser, 0, len(users))
		for _, u := range users {
			if u.Username != username {
				kept = append(kept, u)
			}
		}
		s.private.Write(kept)
	}
	if room := s.current.Read(); room != nil && room.Private() && room.Username == username {
		s.clearLocked()
	}
}

// ClearCurrentRoom deactivates the current room and empties the displayed
// view.
func (s *Store) ClearCurrentRoom() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// SetRoomsFromMissions replaces the mission room list.
func (s *Store) SetRoomsFromMissions(rooms []domain.ChatRoom) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms.Write(append([]domain.ChatRoom(nil), rooms...))
}

// SyncRoomsFromMissions replaces the room list with one room per mission
// from source. An empty result keeps the current rooms.
func (s *Store) SyncRoomsFromMissions(ctx context.Context, source MissionSource) {
	missions := source.MyMissions(ctx)
	if len(missions) == 0 {
		s.log.Debug("no missions, keeping default rooms")
		return
	}
	rooms := make([]domain.ChatRoom, 0, len(missions))
	for _, m := range missions {
		rooms = append(rooms, domain.ChatRoom{ID: m.ID, Name: m.Name})
	}
	s.SetRoomsFromMissions(rooms)
	s.log.WithField("rooms", len(rooms)).Debug("rooms synced from missions")
}

func (s *Store) setCurrentLocked(room domain.ChatRoom) {
	active := room
	s.current.Write(&active)

	stored := s.sequences[room.Key()]
	if stored == nil {
		s.displayed.Write([]domain.DisplayedMessage{})
		return
	}
	messages := stored.Read()
	view := make([]domain.DisplayedMessage, 0, len(messages))
	for i, m := range messages {
		ts, err := time.Parse(timestampLayout, m.TS)
		if err != nil {
			ts = time.Time{}
		}
		view = append(view, domain.DisplayedMessage{
			ID:        i,
			Text:      m.Text,
			Sender:    m.Sender,
			Timestamp: ts,
			Own:       s.isOwn(m),
		})
	}
	s.displayed.Write(view)
}

func (s *Store) clearLocked() {
	s.current.Write(nil)
	s.displayed.Write([]domain.DisplayedMessage{})
}

func (s *Store) sequenceLocked(key domain.RoomKey) *broadcast.Store[[]domain.ChatMessage] {
	seq, ok := s.sequences[key]
	if !ok {
		seq = broadcast.New([]domain.ChatMessage{})
		s.sequences[key] = seq
	}
	return seq
}

// isOwn compares the captured sender identity, never the display label.
func (s *Store) isOwn(m domain.ChatMessage) bool {
	return m.SenderID == s.identity.ID
}

func indexOfRoom(rooms []domain.ChatRoom, id int64) int {
	for i, r := range rooms {
		if !r.Private() && r.ID == id {
			return i
		}
	}
	return -1
}

func appendCopy[T any](list []T, items ...T) []T {
	out := make([]T, 0, len(list)+len(items))
	out = append(out, list...)
	return append(out, items...)
}
