package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/whoscooking/execmeter/internal/monitoring"
)

const defaultBaseURL = "https://api.github.com"

// rateLimitFloor is the remaining-quota threshold below which the
// client self-throttles before issuing the next call.
const rateLimitFloor = 100

// maxRateLimitWait caps a single pre-emptive sleep.
const maxRateLimitWait = 60 * time.Second

// GitHubUser is the profile shape returned by /users/{username}.
type GitHubUser struct {
	Login       string `json:"login"`
	AvatarURL   string `json:"avatar_url"`
	PublicRepos int    `json:"public_repos"`
	CreatedAt   string `json:"created_at"`
}

// GitHubRepo is one entry of /users/{username}/repos.
type GitHubRepo struct {
	Name            string   `json:"name"`
	FullName        string   `json:"full_name"`
	StargazersCount int      `json:"stargazers_count"`
	Language        *string  `json:"language"`
	PushedAt        string   `json:"pushed_at"`
	Topics          []string `json:"topics"`
	Fork            bool     `json:"fork"`
	Description     *string  `json:"description"`
}

// GitHubEvent is one entry of /users/{username}/events/public.
type GitHubEvent struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Repo      struct {
		Name string `json:"name"`
	} `json:"repo"`
	CreatedAt string `json:"created_at"`
	Payload   struct {
		// Size is the PushEvent commit count; Commits is the
		// fallback when the API omits it.
		Size    *int `json:"size"`
		Commits []struct {
			Message string `json:"message"`
		} `json:"commits"`
		Action string `json:"action"`
	} `json:"payload"`
}

// GitHubClient issues authenticated calls against the GitHub REST API
// and self-throttles against the server-reported rate limit. Rate
// limit state is owned by the client instance, not shared module
// state, so multiple clients and parallel tests never cross-talk.
type GitHubClient struct {
	baseURL string
	token   string
	client  *http.Client

	mu        sync.Mutex
	remaining int
	reset     time.Time
}

// NewGitHubClient creates a client for the public GitHub API.
func NewGitHubClient(token string) *GitHubClient {
	return NewGitHubClientWithBaseURL(token, defaultBaseURL)
}

// NewGitHubClientWithBaseURL creates a client against a custom API
// root. Used by tests to point at a local server.
func NewGitHubClientWithBaseURL(token, baseURL string) *GitHubClient {
	return &GitHubClient{
		baseURL:   baseURL,
		token:     token,
		client:    &http.Client{Timeout: 30 * time.Second},
		remaining: 5000,
	}
}

// RateLimit reports the most recently observed quota state.
func (g *GitHubClient) RateLimit() (remaining int, reset time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.remaining, g.reset
}

// GetJSON fetches a path and decodes the response into out. Transport
// failures, non-2xx statuses and malformed bodies are logged and
// reported as an absent result; "no data" is an expected outcome here,
// not a fault. Retry policy belongs to the caller.
func (g *GitHubClient) GetJSON(ctx context.Context, path string, out any) bool {
	if err := g.throttle(ctx); err != nil {
		slog.Warn("GitHub fetch aborted while waiting for rate limit", "path", path, "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		slog.Error("Failed to build GitHub request", "path", path, "error", err)
		return false
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", "execmeter/1.0")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		monitoring.RecordGitHubRequest("transport_error")
		slog.Warn("GitHub request failed", "path", path, "error", err)
		return false
	}
	defer resp.Body.Close()

	// Quota headers arrive on every response, success or not, and
	// always supersede the tracked state.
	g.updateRateLimit(resp.Header)
	monitoring.RecordGitHubRequest(strconv.Itoa(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		slog.Warn("GitHub API error", "status", resp.StatusCode, "path", path)
		return false
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		slog.Warn("Failed to decode GitHub response", "path", path, "error", err)
		return false
	}

	return true
}

// FetchProfile returns the user profile, or nil when the user cannot
// be fetched.
func (g *GitHubClient) FetchProfile(ctx context.Context, username string) *GitHubUser {
	var user GitHubUser
	if !g.GetJSON(ctx, fmt.Sprintf("/users/%s", username), &user) {
		return nil
	}
	return &user
}

// FetchRepos returns up to 100 owned repositories sorted by most
// recent push, or nil when the listing cannot be fetched.
func (g *GitHubClient) FetchRepos(ctx context.Context, username string) []GitHubRepo {
	var repos []GitHubRepo
	if !g.GetJSON(ctx, fmt.Sprintf("/users/%s/repos?sort=pushed&per_page=100&type=owner", username), &repos) {
		return nil
	}
	return repos
}

// FetchEvents returns up to 100 most recent public events, newest
// first, or nil when the feed cannot be fetched.
func (g *GitHubClient) FetchEvents(ctx context.Context, username string) []GitHubEvent {
	var events []GitHubEvent
	if !g.GetJSON(ctx, fmt.Sprintf("/users/%s/events/public?per_page=100", username), &events) {
		return nil
	}
	return events
}

// throttle sleeps until the observed reset time when the remaining
// quota is below the floor, capped at maxRateLimitWait. This keeps a
// long batch from exhausting the quota without a circuit breaker.
func (g *GitHubClient) throttle(ctx context.Context) error {
	g.mu.Lock()
	remaining := g.remaining
	reset := g.reset
	g.mu.Unlock()

	if remaining >= rateLimitFloor {
		return nil
	}

	wait := time.Until(reset)
	if wait <= 0 {
		return nil
	}
	if wait > maxRateLimitWait {
		wait = maxRateLimitWait
	}

	slog.Info("GitHub rate limit low, waiting", "remaining", remaining, "wait", wait.Round(time.Second).String())

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (g *GitHubClient) updateRateLimit(h http.Header) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if v := h.Get("X-RateLimit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			g.remaining = n
		}
	}
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			g.reset = time.Unix(epoch, 0)
		}
	}

	monitoring.SetRateLimitRemaining(g.remaining)
}
