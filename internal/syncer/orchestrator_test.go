package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whoscooking/execmeter/internal/analysis"
	"github.com/whoscooking/execmeter/internal/database"
	"github.com/whoscooking/execmeter/internal/monitoring"
)

var testClock = time.Date(2025, 6, 18, 6, 0, 0, 0, time.UTC)

type fakeStore struct {
	executives []database.Executive
	listErr    error
	insertErr  error
	updateErr  error

	snapshots []*database.Snapshot
	updates   []scoreUpdate
}

type scoreUpdate struct {
	executiveID string
	score       float64
	avatarURL   string
}

func (f *fakeStore) ListExecutives() ([]database.Executive, error) {
	return f.executives, f.listErr
}

func (f *fakeStore) InsertSnapshot(s *database.Snapshot) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.snapshots = append(f.snapshots, s)
	return nil
}

func (f *fakeStore) UpdateExecutiveScore(executiveID string, score float64, avatarURL string, syncedAt time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, scoreUpdate{executiveID, score, avatarURL})
	return nil
}

// fakeMetrics returns per-handle canned metrics; absent handles fail,
// handles in panics blow up.
type fakeMetrics struct {
	metrics map[string]*analysis.ExecutiveMetrics
	panics  map[string]bool
}

func (f *fakeMetrics) Aggregate(ctx context.Context, username string) (*analysis.ExecutiveMetrics, bool) {
	if f.panics[username] {
		panic("aggregate exploded")
	}
	m, ok := f.metrics[username]
	return m, ok
}

func strPtr(s string) *string { return &s }

func executive(id, name string, handle *string) database.Executive {
	return database.Executive{ID: id, Name: name, Title: "CEO", CompanyID: "co-" + id, GithubUsername: handle, Category: "founder_mode"}
}

func newTestOrchestrator(store *fakeStore, source MetricsSource) *Orchestrator {
	logger := monitoring.NewLogger("error")
	return NewOrchestratorWithClock(store, source, logger, func() time.Time { return testClock }, 0)
}

func TestSyncAllRosterErrorIsFatal(t *testing.T) {
	store := &fakeStore{listErr: errors.New("disk gone")}
	orch := newTestOrchestrator(store, &fakeMetrics{})

	report, err := orch.SyncAll(context.Background())

	require.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestSyncAllSuccessPath(t *testing.T) {
	store := &fakeStore{executives: []database.Executive{executive("e1", "Tobi Lutke", strPtr("tobi"))}}
	source := &fakeMetrics{metrics: map[string]*analysis.ExecutiveMetrics{
		"tobi": {CommitCount: 1, Languages: map[string]int{}},
	}}

	report, err := newTestOrchestrator(store, source).SyncAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "2025-06-18", report.Date)
	require.Len(t, report.Results, 1)
	assert.Equal(t, 1, report.Synced)

	res := report.Results[0]
	assert.Equal(t, "Tobi Lutke", res.Name)
	assert.Empty(t, res.Error)
	require.NotNil(t, res.Score)
	// One commit scores 5 velocity points and nothing else.
	assert.Equal(t, 5.0, *res.Score)

	require.Len(t, store.snapshots, 1)
	snap := store.snapshots[0]
	assert.Equal(t, "e1", snap.ExecutiveID)
	assert.Equal(t, "2025-06-18", snap.SnapshotDate)
	assert.Equal(t, 5.0, snap.CookingScore)
	assert.Equal(t, 1, snap.CommitCount)
	assert.NotEmpty(t, snap.ID)

	require.Len(t, store.updates, 1)
	assert.Equal(t, scoreUpdate{"e1", 5.0, "https://github.com/tobi.png"}, store.updates[0])
}

func TestSyncAllSkipsExecutivesWithoutHandle(t *testing.T) {
	store := &fakeStore{executives: []database.Executive{
		executive("e1", "Tim Cook", nil),
		executive("e2", "Empty Handle", strPtr("")),
	}}

	report, err := newTestOrchestrator(store, &fakeMetrics{}).SyncAll(context.Background())

	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	for _, res := range report.Results {
		assert.Empty(t, res.Error)
		require.NotNil(t, res.Score)
		assert.Equal(t, 0.0, *res.Score)
	}

	// Skipped executives never touch storage.
	assert.Empty(t, store.snapshots)
	assert.Empty(t, store.updates)
}

func TestSyncAllIsolatesFetchFailures(t *testing.T) {
	store := &fakeStore{executives: []database.Executive{
		executive("e1", "Alice", strPtr("alice")),
		executive("e2", "Bob", strPtr("bob")),
		executive("e3", "Carol", strPtr("carol")),
	}}
	source := &fakeMetrics{metrics: map[string]*analysis.ExecutiveMetrics{
		"alice": {Languages: map[string]int{}},
		"carol": {Languages: map[string]int{}},
	}}

	report, err := newTestOrchestrator(store, source).SyncAll(context.Background())

	require.NoError(t, err)
	require.Len(t, report.Results, 3)
	assert.Equal(t, 3, report.Synced)

	assert.Empty(t, report.Results[0].Error)
	assert.Equal(t, "fetch failed", report.Results[1].Error)
	assert.Nil(t, report.Results[1].Score)
	assert.Empty(t, report.Results[2].Error)

	// Only the two successful subjects were written.
	assert.Len(t, store.snapshots, 2)
	assert.Len(t, store.updates, 2)
}

func TestSyncAllIsolatesPanics(t *testing.T) {
	store := &fakeStore{executives: []database.Executive{
		executive("e1", "Alice", strPtr("alice")),
		executive("e2", "Bob", strPtr("bob")),
		executive("e3", "Carol", strPtr("carol")),
	}}
	source := &fakeMetrics{
		metrics: map[string]*analysis.ExecutiveMetrics{
			"alice": {Languages: map[string]int{}},
			"carol": {Languages: map[string]int{}},
		},
		panics: map[string]bool{"bob": true},
	}

	report, err := newTestOrchestrator(store, source).SyncAll(context.Background())

	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	assert.Empty(t, report.Results[0].Error)
	assert.Contains(t, report.Results[1].Error, "panic")
	assert.Contains(t, report.Results[1].Error, "aggregate exploded")
	assert.Nil(t, report.Results[1].Score)
	assert.Empty(t, report.Results[2].Error)
}

func TestSyncAllSnapshotInsertFailureReported(t *testing.T) {
	store := &fakeStore{
		executives: []database.Executive{executive("e1", "Alice", strPtr("alice"))},
		insertErr:  errors.New("database is locked"),
	}
	source := &fakeMetrics{metrics: map[string]*analysis.ExecutiveMetrics{
		"alice": {Languages: map[string]int{}},
	}}

	report, err := newTestOrchestrator(store, source).SyncAll(context.Background())

	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Contains(t, report.Results[0].Error, "database is locked")
	assert.Nil(t, report.Results[0].Score)
	// The score column is left alone when the snapshot write fails.
	assert.Empty(t, store.updates)
}

func TestSyncAllCancelledBatchStillEnumeratesRoster(t *testing.T) {
	store := &fakeStore{executives: []database.Executive{
		executive("e1", "Alice", strPtr("alice")),
		executive("e2", "Bob", strPtr("bob")),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newTestOrchestrator(store, &fakeMetrics{}).SyncAll(ctx)

	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	for _, res := range report.Results {
		assert.Equal(t, "batch cancelled", res.Error)
		assert.Nil(t, res.Score)
	}
	assert.Empty(t, store.snapshots)
}

func TestSyncAllEmptyRoster(t *testing.T) {
	report, err := newTestOrchestrator(&fakeStore{}, &fakeMetrics{}).SyncAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, report.Synced)
	assert.Empty(t, report.Results)
	assert.Equal(t, "2025-06-18", report.Date)
}
