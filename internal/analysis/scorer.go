package analysis

import "math"

// Component caps. The six caps sum to exactly 100; the cap on the
// total is enforced anyway.
const (
	maxCommitVelocity    = 35
	maxActivityBreadth   = 20
	maxRecency           = 20
	maxRepoEngagement    = 10
	maxAISignal          = 10
	maxLanguageDiversity = 5
	maxTotal             = 100
)

// commitNorm is the commit count at which the log curve saturates.
const commitNorm = 150

// starNorm is the star count at which the star sub-score saturates.
const starNorm = 10000

// Score maps a metrics record to its score breakdown. Pure and
// deterministic: no clock, no randomness, no I/O. All time-dependent
// quantities are precomputed by the aggregator.
func Score(m ExecutiveMetrics) ScoreBreakdown {
	// Commit velocity: log curve so commits past ~100 add little.
	commitVelocity := 0
	if m.CommitCount > 0 {
		commitVelocity = int(math.Round(maxCommitVelocity * math.Log10(float64(m.CommitCount)+1) / math.Log10(commitNorm)))
	}
	commitVelocity = min(maxCommitVelocity, commitVelocity)

	// Activity breadth: distinct event types among the recent-10
	// summary, capped at 5 types, linearly scaled.
	types := make(map[string]struct{}, len(m.RecentEvents))
	for _, e := range m.RecentEvents {
		types[e.Type] = struct{}{}
	}
	breadth := min(len(types), 5)
	activityBreadth := int(math.Round(float64(breadth) / 5 * maxActivityBreadth))

	recency := 0
	if m.DaysSinceLastEvent != nil {
		d := float64(*m.DaysSinceLastEvent)
		switch {
		case d <= 1:
			recency = maxRecency
		case d <= 7:
			recency = int(math.Round(20 - d/7*5))
		case d <= 30:
			recency = int(math.Round(15 - (d-7)/23*7))
		case d <= 90:
			recency = int(math.Round(8 - (d-30)/60*8))
		}
	}

	// Repo engagement: stars on a log scale plus recently active
	// repos, 5 points each.
	starScore := 0
	if m.TotalStars > 0 {
		starScore = int(math.Round(5 * math.Log10(float64(m.TotalStars)+1) / math.Log10(starNorm)))
	}
	starScore = min(5, starScore)
	repoScore := min(5, int(math.Round(float64(m.RecentRepoCount)/10*5)))
	repoEngagement := starScore + repoScore

	aiSignal := min(maxAISignal, m.AIRelatedActivity*2)

	languageDiversity := min(maxLanguageDiversity, len(m.Languages))

	total := min(maxTotal, commitVelocity+activityBreadth+recency+repoEngagement+aiSignal+languageDiversity)

	return ScoreBreakdown{
		CommitVelocity:    commitVelocity,
		ActivityBreadth:   activityBreadth,
		Recency:           recency,
		RepoEngagement:    repoEngagement,
		AISignal:          aiSignal,
		LanguageDiversity: languageDiversity,
		Total:             total,
	}
}
