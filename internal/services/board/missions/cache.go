package missions

import (
	"context"
	"encoding/json"

	apperrors "github.com/louisbranch/missionboard/internal/platform/errors"
	"github.com/louisbranch/missionboard/internal/services/board/domain"
	"github.com/louisbranch/missionboard/internal/services/board/storage"
	"github.com/sirupsen/logrus"
)

// readJoined loads the joined cache. Unreadable or corrupt data reads as
// empty; a corrupt blob is removed.
func (s *Store) readJoined(ctx context.Context) []domain.Mission {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.readJoinedLocked(ctx)
}

func (s *Store) readJoinedLocked(ctx context.Context) []domain.Mission {
	if s.cache == nil {
		return nil
	}
	raw, ok, err := s.cache.Get(ctx, storage.KeyJoinedMissions)
	if err != nil {
		s.log.WithFields(logrus.Fields{"key": storage.KeyJoinedMissions, "error": err}).Warn("read joined cache")
		return nil
	}
	if !ok || len(raw) == 0 {
		return nil
	}

	var stored []domain.Mission
	if err := json.Unmarshal(raw, &stored); err != nil {
		corrupt := apperrors.Wrap(apperrors.CodeCacheCorrupt, "joined cache corrupt", err)
		s.log.WithFields(logrus.Fields{"key": storage.KeyJoinedMissions, "code": corrupt.Code, "error": corrupt.Cause}).Warn("joined cache corrupt, resetting")
		s.metrics.ObserveCacheReset(storage.KeyJoinedMissions)
		if err := s.cache.Delete(ctx, storage.KeyJoinedMissions); err != nil {
			s.log.WithFields(logrus.Fields{"key": storage.KeyJoinedMissions, "error": err}).Warn("remove corrupt joined cache")
		}
		return nil
	}

	valid := stored[:0]
	for _, m := range stored {
		if m.ID != 0 {
			valid = append(valid, m)
		}
	}
	return domain.MergeMissions(valid)
}

// saveJoined appends mission to the joined cache unless its id is already
// there.
func (s *Store) saveJoined(ctx context.Context, mission domain.Mission) {
	if s.cache == nil {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	list := s.readJoinedLocked(ctx)
	for _, m := range list {
		if m.ID == mission.ID {
			return
		}
	}
	list = append(list, mission)

	payload, err := json.Marshal(list)
	if err != nil {
		s.log.WithFields(logrus.Fields{"key": storage.KeyJoinedMissions, "error": err}).Warn("encode joined cache")
		return
	}
	if err := s.cache.Put(ctx, storage.KeyJoinedMissions, payload); err != nil {
		s.log.WithFields(logrus.Fields{"key": storage.KeyJoinedMissions, "error": err}).Warn("write joined cache")
	}
}
