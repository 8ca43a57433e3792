// Package friends holds the local friend graph: accepted friends, requests
// the caller sent, and requests the caller received.
//
// The graph lives only on this device. Every change is written through to the
// cache before the call returns.
package friends

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	apperrors "github.com/louisbranch/missionboard/internal/platform/errors"
	"github.com/louisbranch/missionboard/internal/platform/logging"
	"github.com/louisbranch/missionboard/internal/platform/telemetry/metrics"
	"github.com/louisbranch/missionboard/internal/services/board/broadcast"
	"github.com/louisbranch/missionboard/internal/services/board/domain"
	"github.com/louisbranch/missionboard/internal/services/board/i18n"
	"github.com/louisbranch/missionboard/internal/services/board/storage"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/message"
)

// Options holds optional collaborators.
type Options struct {
	Logger  logrus.FieldLogger
	Metrics *metrics.Recorder
	// Locale selects the language of validation messages.
	Locale string
}

// Store is the friend graph store. Usernames are unique across the three
// lists.
type Store struct {
	cache   storage.Store
	log     logrus.FieldLogger
	metrics *metrics.Recorder
	printer *message.Printer

	mu    sync.Mutex
	graph domain.FriendGraph

	friends  *broadcast.Store[[]domain.FriendUser]
	outgoing *broadcast.Store[[]domain.FriendUser]
	incoming *broadcast.Store[[]domain.FriendUser]
}

// New loads the persisted graph from cache. A missing blob starts empty; a
// corrupt one is removed and the graph starts empty.
func New(ctx context.Context, cache storage.Store, opts Options) *Store {
	s := &Store{
		cache:   cache,
		log:     logging.OrDiscard(opts.Logger).WithField("component", "friends"),
		metrics: opts.Metrics,
		printer: i18n.PrinterFor(opts.Locale),
	}
	s.graph = s.load(ctx)
	s.friends = broadcast.New(cloneUsers(s.graph.Friends))
	s.outgoing = broadcast.New(cloneUsers(s.graph.Outgoing))
	s.incoming = broadcast.New(cloneUsers(s.graph.Incoming))
	return s
}

// Friends is the stream of accepted friends, newest first.
func (s *Store) Friends() broadcast.Stream[[]domain.FriendUser] { return s.friends }

// Outgoing is the stream of requests the caller sent, newest first.
func (s *Store) Outgoing() broadcast.Stream[[]domain.FriendUser] { return s.outgoing }

// Incoming is the stream of requests awaiting the caller's answer.
func (s *Store) Incoming() broadcast.Stream[[]domain.FriendUser] { return s.incoming }

// Graph returns a copy of the three lists.
func (s *Store) Graph() domain.FriendGraph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneGraph(s.graph)
}

// Entries returns every known user tagged with its list.
func (s *Store) Entries() []domain.FriendEntry {
	return s.Graph().Entries()
}

// SendRequest records an outgoing request to username. A blank username, an
// existing friend, or a user who already sent the caller a request is
// rejected with a validation error. Repeating a pending request is a no-op.
func (s *Store) SendRequest(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return s.validation(i18n.KeyUsernameRequired)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if status, ok := s.graph.Lookup(username); ok {
		switch status {
		case domain.FriendAccepted:
			return s.validation(i18n.KeyAlreadyFriends, username)
		case domain.FriendIncoming:
			return s.validation(i18n.KeyPendingIncoming, username)
		default:
			return nil
		}
	}

	next := cloneGraph(s.graph)
	next.Outgoing = prepend(next.Outgoing, domain.FriendUser{Username: username, DisplayName: username})
	return s.commit(ctx, next)
}

// ReceiveRequest records a request from user. If the caller already asked
// user, the two requests meet and user becomes a friend. Known friends and
// pending incoming requests are left alone.
func (s *Store) ReceiveRequest(ctx context.Context, user domain.FriendUser) error {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		return s.validation(i18n.KeyUsernameRequired)
	}
	if strings.TrimSpace(user.DisplayName) == "" {
		user.DisplayName = user.Username
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneGraph(s.graph)
	status, ok := next.Lookup(user.Username)
	switch {
	case !ok:
		next.Incoming = prepend(next.Incoming, user)
	case status == domain.FriendOutgoing:
		next.Outgoing = without(next.Outgoing, user.Username)
		next.Friends = prepend(next.Friends, user)
	default:
		return nil
	}
	return s.commit(ctx, next)
}

// Accept moves username from incoming to the head of friends. It does
// nothing when username has no pending incoming request.
func (s *Store) Accept(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := domain.IndexOfUser(s.graph.Incoming, username)
	if i < 0 {
		return nil
	}
	user := s.graph.Incoming[i]
	next := cloneGraph(s.graph)
	next.Incoming = without(next.Incoming, username)
	next.Friends = prepend(next.Friends, user)
	return s.commit(ctx, next)
}

// Reject drops the incoming request from username.
func (s *Store) Reject(ctx context.Context, username string) error {
	return s.drop(ctx, username, func(g *domain.FriendGraph) *[]domain.FriendUser { return &g.Incoming })
}

// Cancel withdraws the outgoing request to username.
func (s *Store) Cancel(ctx context.Context, username string) error {
	return s.drop(ctx, username, func(g *domain.FriendGraph) *[]domain.FriendUser { return &g.Outgoing })
}

// Remove unfriends username.
func (s *Store) Remove(ctx context.Context, username string) error {
	return s.drop(ctx, username, func(g *domain.FriendGraph) *[]domain.FriendUser { return &g.Friends })
}

func (s *Store) drop(ctx context.Context, username string, list func(*domain.FriendGraph) *[]domain.FriendUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if domain.IndexOfUser(*list(&s.graph), username) < 0 {
		return nil
	}
	next := cloneGraph(s.graph)
	target := list(&next)
	*target = without(*target, username)
	return s.commit(ctx, next)
}

// commit installs next, publishes the lists that changed, and persists the
// whole graph. The in-memory state is kept even if the cache write fails.
// Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next domain.FriendGraph) error {
	prev := s.graph
	s.graph = next

	if !sameUsers(prev.Friends, next.Friends) {
		s.friends.Write(cloneUsers(next.Friends))
	}
	if !sameUsers(prev.Outgoing, next.Outgoing) {
		s.outgoing.Write(cloneUsers(next.Outgoing))
	}
	if !sameUsers(prev.Incoming, next.Incoming) {
		s.incoming.Write(cloneUsers(next.Incoming))
	}
	return s.persist(ctx, next)
}

func (s *Store) persist(ctx context.Context, graph domain.FriendGraph) error {
	if s.cache == nil {
		return nil
	}
	payload, err := json.Marshal(normalizeGraph(graph))
	if err != nil {
		return fmt.Errorf("encode friend graph: %w", err)
	}
	if err := s.cache.Put(ctx, storage.KeyFriendGraph, payload); err != nil {
		s.log.WithFields(logrus.Fields{"key": storage.KeyFriendGraph, "error": err}).Warn("persist friend graph")
		return fmt.Errorf("persist friend graph: %w", err)
	}
	return nil
}

func (s *Store) load(ctx context.Context) domain.FriendGraph {
	if s.cache == nil {
		return domain.FriendGraph{}
	}
	raw, ok, err := s.cache.Get(ctx, storage.KeyFriendGraph)
	if err != nil {
		s.log.WithFields(logrus.Fields{"key": storage.KeyFriendGraph, "error": err}).Warn("read friend graph")
		return domain.FriendGraph{}
	}
	if !ok {
		return domain.FriendGraph{}
	}

	var graph domain.FriendGraph
	if err := json.Unmarshal(raw, &graph); err != nil {
		corrupt := apperrors.Wrap(apperrors.CodeCacheCorrupt, "friend graph corrupt", err)
		s.log.WithFields(logrus.Fields{"key": storage.KeyFriendGraph, "code": corrupt.Code, "error": corrupt.Cause}).Warn("friend graph corrupt, resetting")
		s.metrics.ObserveCacheReset(storage.KeyFriendGraph)
		if err := s.cache.Delete(ctx, storage.KeyFriendGraph); err != nil {
			s.log.WithFields(logrus.Fields{"key": storage.KeyFriendGraph, "error": err}).Warn("remove corrupt friend graph")
		}
		return domain.FriendGraph{}
	}
	clean := dedupeGraph(graph)
	if dropped := graphSize(graph) - graphSize(clean); dropped > 0 {
		s.log.WithFields(logrus.Fields{"key": storage.KeyFriendGraph, "dropped": dropped}).Warn("friend graph had repeated usernames")
	}
	s.log.WithFields(logrus.Fields{
		"friends":  len(clean.Friends),
		"outgoing": len(clean.Outgoing),
		"incoming": len(clean.Incoming),
	}).Debug("friend graph loaded")
	return clean
}

func (s *Store) validation(key string, args ...any) error {
	return apperrors.New(apperrors.CodeValidation, s.printer.Sprintf(key, args...))
}
