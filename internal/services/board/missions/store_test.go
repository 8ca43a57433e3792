package missions

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "github.com/louisbranch/missionboard/internal/platform/errors"
	"github.com/louisbranch/missionboard/internal/services/board/domain"
	"github.com/louisbranch/missionboard/internal/services/board/storage"
	"github.com/louisbranch/missionboard/internal/services/board/storage/memory"
)

var errOffline = errors.New("network unreachable")

type fakeAPI struct {
	mu sync.Mutex

	listFn    func(domain.MissionFilter) ([]domain.Mission, error)
	createFn  func(domain.MissionDraft) (int64, error)
	joinErr   error
	owned     []domain.Mission
	ownedErr  error
	joined    []domain.Mission
	joinedErr error
	crew      int
	crewErr   error

	joinedIDs []int64
	drafts    []domain.MissionDraft
}

func offlineAPI() *fakeAPI {
	return &fakeAPI{
		listFn:    func(domain.MissionFilter) ([]domain.Mission, error) { return nil, errOffline },
		createFn:  func(domain.MissionDraft) (int64, error) { return 0, errOffline },
		joinErr:   errOffline,
		ownedErr:  errOffline,
		joinedErr: errOffline,
		crewErr:   errOffline,
	}
}

func (f *fakeAPI) ListMissions(_ context.Context, filter domain.MissionFilter) ([]domain.Mission, error) {
	return f.listFn(filter)
}

func (f *fakeAPI) CreateMission(_ context.Context, draft domain.MissionDraft) (int64, error) {
	f.mu.Lock()
	f.drafts = append(f.drafts, draft)
	f.mu.Unlock()
	return f.createFn(draft)
}

func (f *fakeAPI) JoinMission(_ context.Context, id int64) error {
	f.mu.Lock()
	f.joinedIDs = append(f.joinedIDs, id)
	f.mu.Unlock()
	return f.joinErr
}

func (f *fakeAPI) MyMissions(context.Context) ([]domain.Mission, error) {
	return f.owned, f.ownedErr
}

func (f *fakeAPI) JoinedMissions(context.Context) ([]domain.Mission, error) {
	return f.joined, f.joinedErr
}

func (f *fakeAPI) CrewCount(context.Context) (int, error) {
	return f.crew, f.crewErr
}

var fixedNow = time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

func newTestStore(api API, cache storage.Store) *Store {
	return New(api, cache, Options{Now: func() time.Time { return fixedNow }})
}

func ids(missions []domain.Mission) []int64 {
	out := make([]int64, 0, len(missions))
	for _, m := range missions {
		out = append(out, m.ID)
	}
	return out
}

func assertIDs(t *testing.T, missions []domain.Mission, want ...int64) {
	t.Helper()
	got := ids(missions)
	if len(got) != len(want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids = %v, want %v", got, want)
		}
	}
}

func assertUniqueIDs(t *testing.T, missions []domain.Mission) {
	t.Helper()
	seen := map[int64]bool{}
	for _, m := range missions {
		if seen[m.ID] {
			t.Fatalf("duplicate id %d in %v", m.ID, ids(missions))
		}
		seen[m.ID] = true
	}
}

func TestListOnlineDedupsAndPublishes(t *testing.T) {
	api := offlineAPI()
	api.listFn = func(filter domain.MissionFilter) ([]domain.Mission, error) {
		if filter.Name != "watch" {
			t.Fatalf("filter name = %q, want trimmed", filter.Name)
		}
		return []domain.Mission{{ID: 3}, {ID: 1}, {ID: 3, Name: "dup"}}, nil
	}
	store := newTestStore(api, memory.New())

	got := store.List(context.Background(), domain.MissionFilter{Name: " watch "})
	assertIDs(t, got, 3, 1)
	assertIDs(t, store.Listing().Read(), 3, 1)
}

func TestListOfflineFiltersSyntheticByStatus(t *testing.T) {
	store := newTestStore(offlineAPI(), memory.New())

	got := store.List(context.Background(), domain.MissionFilter{Status: domain.MissionOpen})
	assertIDs(t, got, 1, 3, 5)
	for _, m := range got {
		if m.Status != domain.MissionOpen {
			t.Fatalf("mission %d status = %s", m.ID, m.Status)
		}
	}
}

func TestListOfflineFiltersNameCaseInsensitive(t *testing.T) {
	store := newTestStore(offlineAPI(), memory.New())

	tests := []struct {
		filter domain.MissionFilter
		want   []int64
	}{
		{filter: domain.MissionFilter{}, want: []int64{1, 2, 3, 4, 5}},
		{filter: domain.MissionFilter{Name: "SHADOW"}, want: []int64{4}},
		{filter: domain.MissionFilter{Name: "mission", Status: domain.MissionOpen}, want: []int64{5}},
		{filter: domain.MissionFilter{Name: "temple", Status: domain.MissionInProgress}, want: nil},
	}
	for _, tc := range tests {
		got := store.List(context.Background(), tc.filter)
		assertIDs(t, got, tc.want...)
	}
}

func TestSyntheticTimestampsUseNow(t *testing.T) {
	store := newTestStore(offlineAPI(), memory.New())
	got := store.List(context.Background(), domain.MissionFilter{})
	want := "2026-10-18T12:00:00.000Z"
	for _, m := range got {
		if m.CreatedAt != want || m.UpdatedAt != want {
			t.Fatalf("mission %d timestamps = %q/%q, want %q", m.ID, m.CreatedAt, m.UpdatedAt, want)
		}
	}
}

func TestCreateNormalizesDraft(t *testing.T) {
	api := offlineAPI()
	api.createFn = func(domain.MissionDraft) (int64, error) { return 77, nil }
	store := newTestStore(api, memory.New())

	id, err := store.Create(context.Background(), domain.MissionDraft{Name: "  ", MissionDate: "2026-01-02", Email: "  "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != 77 {
		t.Fatalf("id = %d, want 77", id)
	}
	sent := api.drafts[0]
	if sent.Name != UntitledName || sent.MissionDate != "2026-01-02T00:00:00" || sent.Email != "" {
		t.Fatalf("sent draft = %+v", sent)
	}
}

func TestCreatePropagatesTransportFailure(t *testing.T) {
	store := newTestStore(offlineAPI(), memory.New())

	_, err := store.Create(context.Background(), domain.MissionDraft{Name: "x"})
	if !apperrors.HasCode(err, apperrors.CodeTransport) {
		t.Fatalf("err = %v, want transport failure", err)
	}
	if !errors.Is(err, errOffline) {
		t.Fatalf("err = %v, want wrapped cause", err)
	}
}

func TestMyMissionsMergesOwnedJoinedAndCache(t *testing.T) {
	api := offlineAPI()
	api.owned, api.ownedErr = []domain.Mission{{ID: 1}, {ID: 2}}, nil
	api.joined, api.joinedErr = []domain.Mission{{ID: 2}, {ID: 3}}, nil
	cache := memory.New()
	seedJoined(t, cache, []domain.Mission{{ID: 3}, {ID: 4}})
	store := newTestStore(api, cache)

	got := store.MyMissions(context.Background())
	assertIDs(t, got, 1, 2, 3, 4)
	assertIDs(t, store.Mine().Read(), 1, 2, 3, 4)
}

func TestMyMissionsJoinedFailureDegradesToEmpty(t *testing.T) {
	api := offlineAPI()
	api.owned, api.ownedErr = []domain.Mission{{ID: 1}}, nil
	store := newTestStore(api, memory.New())

	assertIDs(t, store.MyMissions(context.Background()), 1)
}

func TestMyMissionsOwnedFailureServesFallback(t *testing.T) {
	api := offlineAPI()
	api.joined, api.joinedErr = []domain.Mission{{ID: 9}}, nil
	cache := memory.New()
	seedJoined(t, cache, []domain.Mission{{ID: 4}, {ID: FallbackMineID}})
	store := newTestStore(api, cache)

	got := store.MyMissions(context.Background())
	assertIDs(t, got, FallbackMineID, 4)
	if got[0].Name != "My Personal Mission" || got[0].ChiefDisplayName != "Me" {
		t.Fatalf("fallback mission = %+v", got[0])
	}
}

func TestMyMissionsCanceledLeavesMineUntouched(t *testing.T) {
	api := &fakeAPI{owned: []domain.Mission{{ID: 7}}}
	store := newTestStore(api, memory.New())
	if got := store.MyMissions(context.Background()); len(got) != 1 {
		t.Fatalf("first read = %+v", got)
	}

	api.ownedErr, api.joinedErr = context.Canceled, context.Canceled
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := store.MyMissions(ctx)
	assertIDs(t, got, 7)
	assertIDs(t, store.Mine().Read(), 7)
}

func TestJoinThenMyMissionsOffline(t *testing.T) {
	cache := memory.New()
	store := newTestStore(offlineAPI(), cache)
	ctx := context.Background()

	store.Join(ctx, 42, &domain.Mission{Name: "Harbor Patrol"})

	got := store.MyMissions(ctx)
	assertUniqueIDs(t, got)
	found := false
	for _, m := range got {
		if m.ID == 42 {
			found = true
			if m.Status != domain.MissionOpen {
				t.Fatalf("status = %q, want Open", m.Status)
			}
			if m.CreatedAt == "" || m.UpdatedAt == "" {
				t.Fatalf("timestamps not defaulted: %+v", m)
			}
		}
	}
	if !found {
		t.Fatalf("joined mission missing from %v", ids(got))
	}

	// A fresh store over the same cache still sees it.
	again := newTestStore(offlineAPI(), cache)
	if got := again.MyMissions(ctx); len(got) != 2 || got[1].ID != 42 {
		t.Fatalf("after reload ids = %v", ids(got))
	}
}

func TestJoinUpdatesMineStreamAndDedups(t *testing.T) {
	api := offlineAPI()
	api.joinErr = nil
	cache := memory.New()
	store := newTestStore(api, cache)
	ctx := context.Background()

	var published [][]domain.Mission
	unsubscribe := store.Mine().Subscribe(func(v []domain.Mission) {
		published = append(published, v)
	})
	defer unsubscribe()

	store.Join(ctx, 5, &domain.Mission{ID: 5, Status: domain.MissionInProgress, CreatedAt: "then"})
	store.Join(ctx, 5, &domain.Mission{ID: 5})

	if len(published) != 3 {
		t.Fatalf("published %d values, want replay plus two writes", len(published))
	}
	assertIDs(t, store.Mine().Read(), 5)
	first := store.Mine().Read()[0]
	if first.Status != domain.MissionInProgress || first.CreatedAt != "then" {
		t.Fatalf("snapshot overwritten: %+v", first)
	}

	raw, _, _ := cache.Get(ctx, storage.KeyJoinedMissions)
	var stored []domain.Mission
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("decode cache: %v", err)
	}
	assertIDs(t, stored, 5)
	if len(api.joinedIDs) != 2 {
		t.Fatalf("join calls = %v", api.joinedIDs)
	}
}

func TestJoinWithoutSnapshotLeavesCache(t *testing.T) {
	cache := memory.New()
	store := newTestStore(offlineAPI(), cache)
	store.Join(context.Background(), 3, nil)
	if _, ok, _ := cache.Get(context.Background(), storage.KeyJoinedMissions); ok {
		t.Fatal("expected no cache entry")
	}
}

func TestCorruptJoinedCacheResets(t *testing.T) {
	cache := memory.New()
	ctx := context.Background()
	if err := cache.Put(ctx, storage.KeyJoinedMissions, []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	api := offlineAPI()
	api.owned, api.ownedErr = []domain.Mission{{ID: 1}}, nil
	store := newTestStore(api, cache)

	assertIDs(t, store.MyMissions(ctx), 1)
	if _, ok, _ := cache.Get(ctx, storage.KeyJoinedMissions); ok {
		t.Fatal("expected corrupt entry to be removed")
	}
}

func TestJoinedCacheSkipsMissingIDs(t *testing.T) {
	cache := memory.New()
	ctx := context.Background()
	if err := cache.Put(ctx, storage.KeyJoinedMissions, []byte(`[{"name":"no id"},{"id":8},{"id":8}]`)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	api := offlineAPI()
	api.owned, api.ownedErr = []domain.Mission{}, nil
	store := newTestStore(api, cache)

	assertIDs(t, store.MyMissions(ctx), 8)
}

func TestCrewCount(t *testing.T) {
	api := offlineAPI()
	store := newTestStore(api, memory.New())
	if _, err := store.CrewCount(context.Background()); !apperrors.HasCode(err, apperrors.CodeTransport) {
		t.Fatalf("err = %v, want transport failure", err)
	}

	api.crew, api.crewErr = 4, nil
	count, err := store.CrewCount(context.Background())
	if err != nil || count != 4 {
		t.Fatalf("crew count = %d, %v", count, err)
	}
}

func TestStreamsReplayOnSubscribe(t *testing.T) {
	store := newTestStore(offlineAPI(), memory.New())
	store.List(context.Background(), domain.MissionFilter{})

	var got []domain.Mission
	unsubscribe := store.Listing().Subscribe(func(v []domain.Mission) { got = v })
	defer unsubscribe()
	if len(got) != 5 {
		t.Fatalf("replayed %d missions, want 5", len(got))
	}
}

func seedJoined(t *testing.T, cache storage.Store, missions []domain.Mission) {
	t.Helper()
	payload, err := json.Marshal(missions)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := cache.Put(context.Background(), storage.KeyJoinedMissions, payload); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
}
