// Package leaderboard is the read model over the executive roster:
// ranked scores for the board and snapshot history for sparklines.
package leaderboard

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/whoscooking/execmeter/internal/database"
)

const defaultCacheTTL = 5 * time.Minute

// historyLimit bounds the sparkline window to roughly a month of
// daily snapshots.
const historyLimit = 30

// tier is one label band of the 0-100 score.
type tier struct {
	min   float64
	label string
}

var scoreTiers = []tier{
	{80, "On Fire"},
	{60, "Cooking"},
	{40, "Warming Up"},
	{20, "Simmering"},
	{1, "Cold Kitchen"},
	{0, "No GitHub"},
}

// ScoreTier returns the display label for a score.
func ScoreTier(score float64) string {
	for _, t := range scoreTiers {
		if score >= t.min {
			return t.label
		}
	}
	return scoreTiers[len(scoreTiers)-1].label
}

// Entry is one ranked row of the board.
type Entry struct {
	Rank int    `json:"rank"`
	Tier string `json:"tier"`
	database.LeaderboardRow
}

// Response is the payload for leaderboard queries.
type Response struct {
	Entries     []Entry   `json:"entries"`
	Total       int       `json:"total"`
	GeneratedAt time.Time `json:"generated_at"`
}

// HistoryResponse is the snapshot history payload for one executive.
type HistoryResponse struct {
	ExecutiveID string              `json:"executive_id"`
	Snapshots   []database.Snapshot `json:"snapshots"`
}

// Service handles leaderboard reads with caching.
type Service struct {
	repo  *database.Repository
	cache *Cache
}

// NewService creates a leaderboard service with the default cache TTL.
func NewService(repo *database.Repository) *Service {
	return NewServiceWithCache(repo, NewCache(defaultCacheTTL))
}

// NewServiceWithCache creates a leaderboard service with a custom
// cache. Used by tests.
func NewServiceWithCache(repo *database.Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Leaderboard returns every executive ranked by current score.
func (s *Service) Leaderboard() (*Response, error) {
	const cacheKey = "leaderboard"

	if data, ok := s.cache.Get(cacheKey); ok {
		var response Response
		if err := json.Unmarshal(data, &response); err == nil {
			return &response, nil
		}
		slog.Warn("Discarding corrupt leaderboard cache entry")
	}

	rows, err := s.repo.LeaderboardRows()
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, Entry{
			Rank:           i + 1,
			Tier:           ScoreTier(row.CurrentScore),
			LeaderboardRow: row,
		})
	}

	response := &Response{
		Entries:     entries,
		Total:       len(entries),
		GeneratedAt: time.Now(),
	}

	if data, err := json.Marshal(response); err == nil {
		s.cache.Set(cacheKey, data)
	}

	return response, nil
}

// History returns the recent daily snapshots for one executive,
// newest first.
func (s *Service) History(executiveID string) (*HistoryResponse, error) {
	snapshots, err := s.repo.GetSnapshots(executiveID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	return &HistoryResponse{
		ExecutiveID: executiveID,
		Snapshots:   snapshots,
	}, nil
}

// Invalidate drops cached leaderboard payloads after a sync run.
func (s *Service) Invalidate() {
	s.cache.InvalidateAll()
}
