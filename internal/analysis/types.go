package analysis

// WeekBucket is one calendar week of event volume. Week is the
// Monday-anchored week start formatted as 2006-01-02.
type WeekBucket struct {
	Week   string `json:"week"`
	Events int    `json:"events"`
}

// RepoSummary is a condensed repository entry for the top-repos list.
type RepoSummary struct {
	Name     string  `json:"name"`
	Stars    int     `json:"stars"`
	Language *string `json:"language"`
}

// EventSummary is a condensed entry in the recent-events list.
type EventSummary struct {
	Type string `json:"type"`
	Repo string `json:"repo"`
	Date string `json:"date"`
}

// ExecutiveMetrics is the fixed reduction of one executive's public
// GitHub activity. It is the contract between the aggregator and the
// scorer and is never persisted as a row; the weekly breakdown, top
// repos and recent events are archived verbatim inside a snapshot's
// raw-summary blob.
type ExecutiveMetrics struct {
	PushEventCount     int            `json:"pushEventCount"`
	CommitCount        int            `json:"commitCount"`
	PRCount            int            `json:"prCount"`
	IssueCount         int            `json:"issueCount"`
	TotalStars         int            `json:"totalStars"`
	RecentRepoCount    int            `json:"recentRepoCount"`
	Languages          map[string]int `json:"languages"`
	AIRelatedActivity  int            `json:"aiRelatedActivity"`
	DaysSinceLastEvent *int           `json:"daysSinceLastEvent"`
	WeeklyBreakdown    []WeekBucket   `json:"weeklyBreakdown"`
	TopRepos           []RepoSummary  `json:"topRepos"`
	RecentEvents       []EventSummary `json:"recentEvents"`
}

// ScoreBreakdown decomposes the 0-100 activity score into its six
// independently capped components.
type ScoreBreakdown struct {
	CommitVelocity    int `json:"commitVelocity"`
	ActivityBreadth   int `json:"activityBreadth"`
	Recency           int `json:"recency"`
	RepoEngagement    int `json:"repoEngagement"`
	AISignal          int `json:"aiSignal"`
	LanguageDiversity int `json:"languageDiversity"`
	Total             int `json:"total"`
}
