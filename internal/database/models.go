package database

import (
	"time"

	"github.com/google/uuid"

	"github.com/whoscooking/execmeter/internal/analysis"
)

// Company is an employer row from the seed roster.
type Company struct {
	ID       string  `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Ticker   *string `json:"ticker,omitempty" db:"ticker"`
	LogoURL  *string `json:"logo_url,omitempty" db:"logo_url"`
	Industry string  `json:"industry" db:"industry"`
	Category string  `json:"category" db:"category"` // "public" | "startup"
}

// Executive is a tracked person. Score and sync fields are
// denormalized here and rewritten by the orchestrator after each
// successful sync; rows are created by seed data and never deleted.
type Executive struct {
	ID             string     `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	Title          string     `json:"title" db:"title"`
	CompanyID      string     `json:"company_id" db:"company_id"`
	GithubUsername *string    `json:"github_username,omitempty" db:"github_username"`
	AvatarURL      *string    `json:"avatar_url,omitempty" db:"avatar_url"`
	Category       string     `json:"category" db:"category"` // "c-suite" | "founder"
	CurrentScore   float64    `json:"current_score" db:"current_score"`
	LastSyncedAt   *time.Time `json:"last_synced_at,omitempty" db:"last_synced_at"`
}

// RawEventSummary is the archived slice of aggregator output stored
// verbatim inside a snapshot.
type RawEventSummary struct {
	WeeklyBreakdown []analysis.WeekBucket   `json:"weeklyBreakdown"`
	TopRepos        []analysis.RepoSummary  `json:"topRepos"`
	RecentEvents    []analysis.EventSummary `json:"recentEvents"`
}

// Snapshot is one immutable daily record of an executive's metrics
// and score, unique per (executive, date).
type Snapshot struct {
	ID                 string          `json:"id" db:"id"`
	ExecutiveID        string          `json:"executive_id" db:"executive_id"`
	SnapshotDate       string          `json:"snapshot_date" db:"snapshot_date"` // 2006-01-02
	PushEventCount     int             `json:"push_event_count" db:"push_event_count"`
	CommitCount        int             `json:"commit_count" db:"commit_count"`
	PRCount            int             `json:"pr_count" db:"pr_count"`
	IssueCount         int             `json:"issue_count" db:"issue_count"`
	TotalStars         int             `json:"total_stars" db:"total_stars"`
	RecentRepoCount    int             `json:"recent_repo_count" db:"recent_repo_count"`
	Languages          map[string]int  `json:"languages" db:"languages"`
	AIRelatedActivity  int             `json:"ai_related_activity" db:"ai_related_activity"`
	DaysSinceLastEvent *int            `json:"days_since_last_event" db:"days_since_last_event"`
	CookingScore       float64         `json:"cooking_score" db:"cooking_score"`
	RawEventSummary    RawEventSummary `json:"raw_event_summary" db:"raw_event_summary"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}

// NewSnapshot builds a snapshot row from one sync's aggregator and
// scorer output.
func NewSnapshot(executiveID, date string, m *analysis.ExecutiveMetrics, score analysis.ScoreBreakdown) *Snapshot {
	return &Snapshot{
		ID:                 uuid.New().String(),
		ExecutiveID:        executiveID,
		SnapshotDate:       date,
		PushEventCount:     m.PushEventCount,
		CommitCount:        m.CommitCount,
		PRCount:            m.PRCount,
		IssueCount:         m.IssueCount,
		TotalStars:         m.TotalStars,
		RecentRepoCount:    m.RecentRepoCount,
		Languages:          m.Languages,
		AIRelatedActivity:  m.AIRelatedActivity,
		DaysSinceLastEvent: m.DaysSinceLastEvent,
		CookingScore:       float64(score.Total),
		RawEventSummary: RawEventSummary{
			WeeklyBreakdown: m.WeeklyBreakdown,
			TopRepos:        m.TopRepos,
			RecentEvents:    m.RecentEvents,
		},
		CreatedAt: time.Now(),
	}
}
