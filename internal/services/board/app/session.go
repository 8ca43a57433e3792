// Package app composes the board stores into one session.
//
// A Session owns exactly one mission, friend, and chat store plus the cache
// they share. Commands build one Session per process and close it on exit.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/missionboard/internal/platform/logging"
	"github.com/louisbranch/missionboard/internal/platform/telemetry/metrics"
	"github.com/louisbranch/missionboard/internal/platform/timeouts"
	"github.com/louisbranch/missionboard/internal/services/board/chat"
	"github.com/louisbranch/missionboard/internal/services/board/friends"
	"github.com/louisbranch/missionboard/internal/services/board/missions"
	"github.com/louisbranch/missionboard/internal/services/board/remote"
	"github.com/louisbranch/missionboard/internal/services/board/storage"
	"github.com/louisbranch/missionboard/internal/services/board/storage/memory"
	"github.com/louisbranch/missionboard/internal/services/board/storage/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Config configures a Session.
type Config struct {
	APIBaseURL     string
	APIToken       string
	RequestTimeout time.Duration
	// CachePath is the SQLite cache file. Empty keeps the cache in memory.
	CachePath   string
	Username    string
	DisplayName string
	Locale      string

	Logger     logrus.FieldLogger
	Registerer prometheus.Registerer
	HTTPClient *http.Client
	Now        func() time.Time
	// RoomSyncTimeout bounds the background room derivation.
	RoomSyncTimeout time.Duration
	// SkipRoomSync leaves the chat store on its default rooms.
	SkipRoomSync bool
	// Cache overrides CachePath with an already opened store. The session
	// closes it.
	Cache storage.Store
}

// Session wires the stores for one user session.
type Session struct {
	Missions *missions.Store
	Friends  *friends.Store
	Chat     *chat.Store

	log   logrus.FieldLogger
	cache storage.Store

	syncCancel context.CancelFunc
	syncDone   chan struct{}
	closeOnce  sync.Once
	closeErr   error
}

// NewSession opens the cache, builds the stores, and unless cfg.SkipRoomSync
// is set starts deriving chat rooms from the caller's missions in the
// background.
func NewSession(ctx context.Context, cfg Config) (*Session, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	log := logging.OrDiscard(cfg.Logger)
	if cfg.RoomSyncTimeout <= 0 {
		cfg.RoomSyncTimeout = timeouts.RoomSync
	}

	recorder, err := metrics.NewRecorder(cfg.Registerer)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	client, err := remote.NewClient(remote.Config{
		BaseURL:    cfg.APIBaseURL,
		Token:      cfg.APIToken,
		HTTPClient: cfg.HTTPClient,
		Timeout:    cfg.RequestTimeout,
		Metrics:    recorder,
	})
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}
	cache, err := openCache(cfg)
	if err != nil {
		return nil, err
	}

	missionStore := missions.New(client, cache, missions.Options{
		Logger:  log,
		Metrics: recorder,
		Now:     cfg.Now,
	})
	friendStore := friends.New(ctx, cache, friends.Options{
		Logger:  log,
		Metrics: recorder,
		Locale:  cfg.Locale,
	})
	chatStore := chat.New(chat.Options{
		Logger:   log,
		Identity: chat.Identity{ID: strings.TrimSpace(cfg.Username), DisplayName: strings.TrimSpace(cfg.DisplayName)},
		Locale:   cfg.Locale,
		Now:      cfg.Now,
	})

	syncCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.RoomSyncTimeout)
	s := &Session{
		Missions:   missionStore,
		Friends:    friendStore,
		Chat:       chatStore,
		log:        log,
		cache:      cache,
		syncCancel: cancel,
		syncDone:   make(chan struct{}),
	}
	if cfg.SkipRoomSync {
		cancel()
		close(s.syncDone)
		return s, nil
	}
	go func() {
		defer close(s.syncDone)
		defer cancel()
		chatStore.SyncRoomsFromMissions(syncCtx, missionStore)
	}()
	return s, nil
}

// WaitRoomSync blocks until the background room derivation finishes or ctx
// ends.
func (s *Session) WaitRoomSync(ctx context.Context) error {
	select {
	case <-s.syncDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the room derivation and closes the cache.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		s.syncCancel()
		<-s.syncDone
		if err := s.cache.Close(); err != nil {
			s.log.WithError(err).Warn("close cache")
			s.closeErr = fmt.Errorf("close cache: %w", err)
		}
	})
	return s.closeErr
}

func openCache(cfg Config) (storage.Store, error) {
	if cfg.Cache != nil {
		return cfg.Cache, nil
	}
	path := strings.TrimSpace(cfg.CachePath)
	if path == "" {
		return memory.New(), nil
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	return store, nil
}
