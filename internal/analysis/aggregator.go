package analysis

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/whoscooking/execmeter/internal/adapters"
)

// aiKeywords flags repositories whose name, description or topics
// suggest AI-related work.
var aiKeywords = []string{
	"ai", "ml", "machine-learning", "deep-learning", "neural",
	"llm", "gpt", "transformer", "diffusion", "pytorch",
	"tensorflow", "langchain", "openai", "anthropic", "huggingface",
}

// recentWindow bounds "recently pushed" repositories and the recency
// tail of the score.
const recentWindow = 90 * 24 * time.Hour

// weeklyBuckets is the width of the activity histogram.
const weeklyBuckets = 12

// GitHubSource is the subset of the GitHub client the aggregator
// needs. Absent results come back as nil.
type GitHubSource interface {
	FetchProfile(ctx context.Context, username string) *adapters.GitHubUser
	FetchRepos(ctx context.Context, username string) []adapters.GitHubRepo
	FetchEvents(ctx context.Context, username string) []adapters.GitHubEvent
}

// Aggregator reduces raw GitHub API data into an ExecutiveMetrics
// record. All clock reads happen here so the scorer stays pure.
type Aggregator struct {
	source GitHubSource
	now    func() time.Time
}

// NewAggregator creates an aggregator over the given source.
func NewAggregator(source GitHubSource) *Aggregator {
	return NewAggregatorWithClock(source, time.Now)
}

// NewAggregatorWithClock creates an aggregator with an injected clock.
// Used by tests to pin "now".
func NewAggregatorWithClock(source GitHubSource, now func() time.Time) *Aggregator {
	return &Aggregator{source: source, now: now}
}

// Aggregate fetches profile, repositories and public events for one
// username concurrently and reduces them into metrics. A missing
// profile yields (nil, false): profile existence is the precondition
// for everything else. Missing repos or events degrade to empty.
func (a *Aggregator) Aggregate(ctx context.Context, username string) (*ExecutiveMetrics, bool) {
	var (
		user   *adapters.GitHubUser
		repos  []adapters.GitHubRepo
		events []adapters.GitHubEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		user = a.source.FetchProfile(gctx, username)
		return nil
	})
	g.Go(func() error {
		repos = a.source.FetchRepos(gctx, username)
		return nil
	})
	g.Go(func() error {
		events = a.source.FetchEvents(gctx, username)
		return nil
	})
	_ = g.Wait()

	if user == nil {
		return nil, false
	}

	now := a.now()
	m := &ExecutiveMetrics{
		Languages:       map[string]int{},
		WeeklyBreakdown: []WeekBucket{},
		TopRepos:        []RepoSummary{},
		RecentEvents:    []EventSummary{},
	}

	a.reduceEvents(m, events, now)
	a.reduceRepos(m, repos, now)

	return m, true
}

// reduceEvents walks the event feed once. The feed is assumed
// newest-first; no re-sort happens before computing recency or the
// recent-10 summary.
func (a *Aggregator) reduceEvents(m *ExecutiveMetrics, events []adapters.GitHubEvent, now time.Time) {
	for _, e := range events {
		switch e.Type {
		case "PushEvent":
			m.PushEventCount++
			if e.Payload.Size != nil {
				m.CommitCount += *e.Payload.Size
			} else {
				m.CommitCount += len(e.Payload.Commits)
			}
		case "PullRequestEvent":
			m.PRCount++
		case "IssuesEvent":
			m.IssueCount++
		}
	}

	if len(events) > 0 {
		if last, err := time.Parse(time.RFC3339, events[0].CreatedAt); err == nil {
			days := int(now.Sub(last).Hours() / 24)
			m.DaysSinceLastEvent = &days
		}
	}

	m.WeeklyBreakdown = weeklyHistogram(events, now)

	for i, e := range events {
		if i >= 10 {
			break
		}
		m.RecentEvents = append(m.RecentEvents, EventSummary{
			Type: e.Type,
			Repo: e.Repo.Name,
			Date: e.CreatedAt,
		})
	}
}

func (a *Aggregator) reduceRepos(m *ExecutiveMetrics, repos []adapters.GitHubRepo, now time.Time) {
	cutoff := now.Add(-recentWindow)
	nonForks := make([]adapters.GitHubRepo, 0, len(repos))

	for _, r := range repos {
		// Stars count across all repos, forks included.
		m.TotalStars += r.StargazersCount

		if r.Fork {
			continue
		}
		nonForks = append(nonForks, r)

		if pushed, err := time.Parse(time.RFC3339, r.PushedAt); err == nil && pushed.After(cutoff) {
			m.RecentRepoCount++
		}
		if r.Language != nil && *r.Language != "" {
			m.Languages[*r.Language]++
		}
		if isAIRelated(r) {
			m.AIRelatedActivity++
		}
	}

	sort.SliceStable(nonForks, func(i, j int) bool {
		return nonForks[i].StargazersCount > nonForks[j].StargazersCount
	})
	for i, r := range nonForks {
		if i >= 6 {
			break
		}
		m.TopRepos = append(m.TopRepos, RepoSummary{
			Name:     r.Name,
			Stars:    r.StargazersCount,
			Language: r.Language,
		})
	}
}

func isAIRelated(r adapters.GitHubRepo) bool {
	parts := []string{r.Name}
	if r.Description != nil {
		parts = append(parts, *r.Description)
	}
	parts = append(parts, r.Topics...)
	text := strings.ToLower(strings.Join(parts, " "))

	for _, kw := range aiKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// weeklyHistogram buckets events into the 12 Monday-anchored calendar
// weeks ending at now. Weeks without events stay at zero; events
// outside the window are ignored. Output is oldest-first and always
// has exactly 12 entries.
func weeklyHistogram(events []adapters.GitHubEvent, now time.Time) []WeekBucket {
	keys := make([]string, 0, weeklyBuckets)
	counts := make(map[string]int, weeklyBuckets)
	for i := 0; i < weeklyBuckets; i++ {
		key := startOfWeek(now.AddDate(0, 0, -i*7)).Format("2006-01-02")
		keys = append(keys, key)
		counts[key] = 0
	}

	for _, e := range events {
		t, err := time.Parse(time.RFC3339, e.CreatedAt)
		if err != nil {
			continue
		}
		key := startOfWeek(t).Format("2006-01-02")
		if _, ok := counts[key]; ok {
			counts[key]++
		}
	}

	buckets := make([]WeekBucket, 0, weeklyBuckets)
	for i := len(keys) - 1; i >= 0; i-- {
		buckets = append(buckets, WeekBucket{Week: keys[i], Events: counts[keys[i]]})
	}
	return buckets
}

// startOfWeek truncates to midnight of the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
