package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository handles database operations for the roster and snapshots.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// UpsertCompany inserts or refreshes a company row.
func (r *Repository) UpsertCompany(c Company) error {
	_, err := r.db.Exec(`
		INSERT INTO companies (id, name, ticker, logo_url, industry, category)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			ticker = excluded.ticker,
			logo_url = excluded.logo_url,
			industry = excluded.industry,
			category = excluded.category
	`, c.ID, c.Name, c.Ticker, c.LogoURL, c.Industry, c.Category)

	if err != nil {
		return fmt.Errorf("failed to upsert company %s: %w", c.ID, err)
	}

	return nil
}

// UpsertExecutive inserts or refreshes an executive's identity fields.
// Score, avatar and sync timestamp are owned by the orchestrator and
// left untouched on conflict.
func (r *Repository) UpsertExecutive(e Executive) error {
	_, err := r.db.Exec(`
		INSERT INTO executives (id, name, title, company_id, github_username, category, current_score)
		VALUES (?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			title = excluded.title,
			company_id = excluded.company_id,
			github_username = excluded.github_username,
			category = excluded.category
	`, e.ID, e.Name, e.Title, e.CompanyID, e.GithubUsername, e.Category)

	if err != nil {
		return fmt.Errorf("failed to upsert executive %s: %w", e.ID, err)
	}

	return nil
}

// ListExecutives returns the full roster ordered by name.
func (r *Repository) ListExecutives() ([]Executive, error) {
	rows, err := r.db.Query(`
		SELECT id, name, title, company_id, github_username, avatar_url, category, current_score, last_synced_at
		FROM executives
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list executives: %w", err)
	}
	defer rows.Close()

	var executives []Executive
	for rows.Next() {
		e, err := scanExecutive(rows)
		if err != nil {
			return nil, err
		}
		executives = append(executives, *e)
	}

	return executives, rows.Err()
}

// InsertSnapshot writes one daily snapshot. A duplicate
// (executive, date) key is a silent no-op so that same-day re-runs
// stay idempotent; the first snapshot of a day wins.
func (r *Repository) InsertSnapshot(s *Snapshot) error {
	languagesJSON, err := json.Marshal(s.Languages)
	if err != nil {
		return fmt.Errorf("failed to marshal languages: %w", err)
	}
	summaryJSON, err := json.Marshal(s.RawEventSummary)
	if err != nil {
		return fmt.Errorf("failed to marshal raw event summary: %w", err)
	}

	var days any
	if s.DaysSinceLastEvent != nil {
		days = *s.DaysSinceLastEvent
	}

	_, err = r.db.Exec(`
		INSERT INTO github_snapshots (
			id, executive_id, snapshot_date, push_event_count, commit_count,
			pr_count, issue_count, total_stars, recent_repo_count, languages,
			ai_related_activity, days_since_last_event, cooking_score,
			raw_event_summary, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(executive_id, snapshot_date) DO NOTHING
	`, s.ID, s.ExecutiveID, s.SnapshotDate, s.PushEventCount, s.CommitCount,
		s.PRCount, s.IssueCount, s.TotalStars, s.RecentRepoCount, string(languagesJSON),
		s.AIRelatedActivity, days, s.CookingScore, string(summaryJSON), s.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

// UpdateExecutiveScore rewrites the denormalized sync fields after a
// successful sync.
func (r *Repository) UpdateExecutiveScore(executiveID string, score float64, avatarURL string, syncedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE executives
		SET current_score = ?, avatar_url = ?, last_synced_at = ?
		WHERE id = ?
	`, score, avatarURL, syncedAt, executiveID)

	if err != nil {
		return fmt.Errorf("failed to update executive score: %w", err)
	}

	return nil
}

// GetSnapshots returns the most recent snapshots for one executive,
// newest first.
func (r *Repository) GetSnapshots(executiveID string, limit int) ([]Snapshot, error) {
	rows, err := r.db.Query(`
		SELECT id, executive_id, snapshot_date, push_event_count, commit_count,
			pr_count, issue_count, total_stars, recent_repo_count, languages,
			ai_related_activity, days_since_last_event, cooking_score,
			raw_event_summary, created_at
		FROM github_snapshots
		WHERE executive_id = ?
		ORDER BY snapshot_date DESC
		LIMIT ?
	`, executiveID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		var languagesJSON, summaryJSON string
		var days sql.NullInt64

		err := rows.Scan(
			&s.ID, &s.ExecutiveID, &s.SnapshotDate, &s.PushEventCount, &s.CommitCount,
			&s.PRCount, &s.IssueCount, &s.TotalStars, &s.RecentRepoCount, &languagesJSON,
			&s.AIRelatedActivity, &days, &s.CookingScore, &summaryJSON, &s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		if days.Valid {
			d := int(days.Int64)
			s.DaysSinceLastEvent = &d
		}
		if err := json.Unmarshal([]byte(languagesJSON), &s.Languages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal languages: %w", err)
		}
		if err := json.Unmarshal([]byte(summaryJSON), &s.RawEventSummary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal raw event summary: %w", err)
		}

		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}

// CountSnapshots returns the number of snapshot rows for one
// executive on one date.
func (r *Repository) CountSnapshots(executiveID, date string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM github_snapshots WHERE executive_id = ? AND snapshot_date = ?
	`, executiveID, date).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}

// LeaderboardRow is one executive joined with their company, ranked
// by current score.
type LeaderboardRow struct {
	Executive
	CompanyName     string  `json:"company_name"`
	CompanyTicker   *string `json:"company_ticker,omitempty"`
	CompanyCategory string  `json:"company_category"`
}

// LeaderboardRows returns all executives with company info, highest
// score first.
func (r *Repository) LeaderboardRows() ([]LeaderboardRow, error) {
	rows, err := r.db.Query(`
		SELECT e.id, e.name, e.title, e.company_id, e.github_username, e.avatar_url,
			e.category, e.current_score, e.last_synced_at,
			c.name, c.ticker, c.category
		FROM executives e
		JOIN companies c ON c.id = e.company_id
		ORDER BY e.current_score DESC, e.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var result []LeaderboardRow
	for rows.Next() {
		var row LeaderboardRow
		var username, avatar, ticker sql.NullString
		var synced sql.NullTime

		err := rows.Scan(
			&row.ID, &row.Name, &row.Title, &row.CompanyID, &username, &avatar,
			&row.Category, &row.CurrentScore, &synced,
			&row.CompanyName, &ticker, &row.CompanyCategory,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}

		if username.Valid {
			row.GithubUsername = &username.String
		}
		if avatar.Valid {
			row.AvatarURL = &avatar.String
		}
		if ticker.Valid {
			row.CompanyTicker = &ticker.String
		}
		if synced.Valid {
			row.LastSyncedAt = &synced.Time
		}

		result = append(result, row)
	}

	return result, rows.Err()
}

func scanExecutive(rows *sql.Rows) (*Executive, error) {
	var e Executive
	var username, avatar sql.NullString
	var synced sql.NullTime

	err := rows.Scan(
		&e.ID, &e.Name, &e.Title, &e.CompanyID, &username, &avatar,
		&e.Category, &e.CurrentScore, &synced,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan executive: %w", err)
	}

	if username.Valid {
		e.GithubUsername = &username.String
	}
	if avatar.Valid {
		e.AvatarURL = &avatar.String
	}
	if synced.Valid {
		e.LastSyncedAt = &synced.Time
	}

	return &e, nil
}
