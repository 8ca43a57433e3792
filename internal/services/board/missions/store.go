package missions

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/louisbranch/missionboard/internal/platform/errors"
	"github.com/louisbranch/missionboard/internal/platform/logging"
	"github.com/louisbranch/missionboard/internal/platform/telemetry/metrics"
	"github.com/louisbranch/missionboard/internal/services/board/broadcast"
	"github.com/louisbranch/missionboard/internal/services/board/domain"
	"github.com/louisbranch/missionboard/internal/services/board/storage"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Operation names used in logs and fallback metrics.
const (
	opList       = "list_missions"
	opCreate     = "create_mission"
	opJoin       = "join_mission"
	opMyMissions = "my_missions"
	opJoined     = "joined_missions"
	opCrewCount  = "crew_count"
)

// API is the upstream surface the store needs.
type API interface {
	ListMissions(ctx context.Context, filter domain.MissionFilter) ([]domain.Mission, error)
	CreateMission(ctx context.Context, draft domain.MissionDraft) (int64, error)
	JoinMission(ctx context.Context, id int64) error
	MyMissions(ctx context.Context) ([]domain.Mission, error)
	JoinedMissions(ctx context.Context) ([]domain.Mission, error)
	CrewCount(ctx context.Context) (int, error)
}

// Options holds optional collaborators.
type Options struct {
	Logger  logrus.FieldLogger
	Metrics *metrics.Recorder
	Now     func() time.Time
}

// Store is the mission store. Construct one per session with New.
type Store struct {
	api     API
	cache   storage.Store
	log     logrus.FieldLogger
	metrics *metrics.Recorder
	now     func() time.Time

	// cacheMu serializes read-modify-write of the joined cache.
	cacheMu sync.Mutex

	listing *broadcast.Store[[]domain.Mission]
	mine    *broadcast.Store[[]domain.Mission]
}

// New builds a mission store over api and cache.
func New(api API, cache storage.Store, opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		api:     api,
		cache:   cache,
		log:     logging.OrDiscard(opts.Logger).WithField("component", "missions"),
		metrics: opts.Metrics,
		now:     now,
		listing: broadcast.New[[]domain.Mission](nil),
		mine:    broadcast.New[[]domain.Mission](nil),
	}
}

// Listing is the stream of the last List result.
func (s *Store) Listing() broadcast.Stream[[]domain.Mission] {
	return s.listing
}

// Mine is the stream of the caller's missions.
func (s *Store) Mine() broadcast.Stream[[]domain.Mission] {
	return s.mine
}

// List returns missions matching filter. When the API fails the synthetic
// dataset is filtered locally instead. The result never repeats an id.
func (s *Store) List(ctx context.Context, filter domain.MissionFilter) []domain.Mission {
	filter = filter.Normalized()
	missions, err := s.api.ListMissions(ctx, filter)
	if err != nil {
		s.log.WithFields(logrus.Fields{"op": opList, "error": err}).Warn("upstream unavailable, serving synthetic missions")
		s.metrics.ObserveFallback(opList)
		missions = filterMissions(syntheticMissions(s.now()), filter)
	}
	result := domain.MergeMissions(missions)
	s.listing.Write(result)
	return result
}

// Create normalizes draft and submits it, returning the new mission id.
func (s *Store) Create(ctx context.Context, draft domain.MissionDraft) (int64, error) {
	id, err := s.api.CreateMission(ctx, NormalizeDraft(draft))
	if err != nil {
		s.log.WithFields(logrus.Fields{"op": opCreate, "error": err}).Warn("create mission failed")
		return 0, apperrors.Wrap(apperrors.CodeTransport, "create mission failed", err)
	}
	s.log.WithFields(logrus.Fields{"op": opCreate, "mission_id": id}).Debug("mission created")
	return id, nil
}

// MyMissions returns the missions the caller created, then joined ones, then
// locally cached joined ones, deduplicated by id. The two upstream reads run
// in parallel. A failed joined read contributes nothing; a failed owned read
// switches to the synthetic personal mission merged with the local cache.
// A read cut short by ctx is not a fallback: the Mine stream is left as is and
// its current value returned.
func (s *Store) MyMissions(ctx context.Context) []domain.Mission {
	var (
		owned, joined       []domain.Mission
		ownedErr, joinedErr error
		g                   errgroup.Group
	)
	g.Go(func() error {
		owned, ownedErr = s.api.MyMissions(ctx)
		return nil
	})
	g.Go(func() error {
		joined, joinedErr = s.api.JoinedMissions(ctx)
		return nil
	})
	_ = g.Wait()

	if (ownedErr != nil || joinedErr != nil) && ctx.Err() != nil {
		s.log.WithFields(logrus.Fields{"op": opMyMissions, "error": ctx.Err()}).Debug("my missions interrupted")
		return s.mine.Read()
	}

	cached := s.readJoined(ctx)

	var result []domain.Mission
	if ownedErr != nil {
		s.log.WithFields(logrus.Fields{"op": opMyMissions, "error": ownedErr}).Warn("upstream unavailable, serving fallback missions")
		s.metrics.ObserveFallback(opMyMissions)
		result = domain.MergeMissions(fallbackMine(s.now()), cached)
	} else {
		if joinedErr != nil {
			s.log.WithFields(logrus.Fields{"op": opJoined, "error": joinedErr}).Warn("joined missions unavailable")
			s.metrics.ObserveFallback(opJoined)
			joined = nil
		}
		result = domain.MergeMissions(owned, joined, cached)
	}
	s.mine.Write(result)
	return result
}

// Join joins mission id upstream. Whatever the upstream outcome, a non-nil
// snapshot is normalized, kept in the local joined cache, and merged into
// the Mine stream.
func (s *Store) Join(ctx context.Context, id int64, snapshot *domain.Mission) {
	if err := s.api.JoinMission(ctx, id); err != nil {
		s.log.WithFields(logrus.Fields{"op": opJoin, "mission_id": id, "error": err}).Warn("join failed upstream, keeping local copy")
	}
	if snapshot == nil {
		return
	}

	joined := joinSnapshot(id, *snapshot, s.now())
	s.saveJoined(ctx, joined)
	s.mine.Update(func(current []domain.Mission) []domain.Mission {
		return domain.MergeMissions(current, []domain.Mission{joined})
	})
}

// CrewCount returns the caller's crew count. There is no fallback.
func (s *Store) CrewCount(ctx context.Context) (int, error) {
	count, err := s.api.CrewCount(ctx)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeTransport, "crew count unavailable", err)
	}
	return count, nil
}

func joinSnapshot(id int64, m domain.Mission, now time.Time) domain.Mission {
	stamp := formatTimestamp(now)
	m.ID = id
	m.CrewNames = nil
	if m.Status == "" {
		m.Status = domain.MissionOpen
	}
	if m.CreatedAt == "" {
		m.CreatedAt = stamp
	}
	if m.UpdatedAt == "" {
		m.UpdatedAt = stamp
	}
	return m
}
