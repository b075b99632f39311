package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whoscooking/execmeter/internal/adapters"
	"github.com/whoscooking/execmeter/internal/analysis"
	"github.com/whoscooking/execmeter/internal/config"
	"github.com/whoscooking/execmeter/internal/database"
	"github.com/whoscooking/execmeter/internal/leaderboard"
	"github.com/whoscooking/execmeter/internal/monitoring"
	"github.com/whoscooking/execmeter/internal/syncer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// activeSource reports every handle as a moderately active developer.
type activeSource struct{}

func (activeSource) Aggregate(ctx context.Context, username string) (*analysis.ExecutiveMetrics, bool) {
	days := 1
	return &analysis.ExecutiveMetrics{
		CommitCount:        20,
		TotalStars:         1000,
		RecentRepoCount:    3,
		Languages:          map[string]int{"Go": 2, "Ruby": 1},
		DaysSinceLastEvent: &days,
		RecentEvents:       []analysis.EventSummary{{Type: "PushEvent"}, {Type: "PullRequestEvent"}},
	}, true
}

func newTestServer(t *testing.T, cfg *config.Config) *server {
	t.Helper()

	db, err := database.NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := database.NewRepository(db)
	require.NoError(t, repo.Seed())

	logger := monitoring.NewLogger("error")
	orch := syncer.NewOrchestratorWithClock(repo, activeSource{}, logger, time.Now, 0)

	return &server{
		cfg:    cfg,
		board:  leaderboard.NewServiceWithCache(repo, leaderboard.NewCache(time.Minute)),
		orch:   orch,
		github: adapters.NewGitHubClient(""),
	}
}

func testConfig() *config.Config {
	cfg := config.New()
	cfg.GitHubToken = "ghp_test"
	cfg.CronSecret = "s3cret"
	return cfg
}

func doRequest(s *server, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	newRouter(s).ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig())

	w := doRequest(s, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, version, body["version"])
	assert.Contains(t, body, "rate_limit")
}

func TestSyncRejectsMissingAuth(t *testing.T) {
	s := newTestServer(t, testConfig())

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"no header", nil},
		{"wrong secret", map[string]string{"Authorization": "Bearer wrong"}},
		{"missing bearer prefix", map[string]string{"Authorization": "s3cret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(s, http.MethodGet, "/api/cron/sync", tt.headers)

			require.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
		})
	}
}

func TestSyncRequiresCronSecretConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.CronSecret = ""
	s := newTestServer(t, cfg)

	w := doRequest(s, http.MethodGet, "/api/cron/sync", nil)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "CRON_SECRET")
}

func TestSyncRequiresGitHubToken(t *testing.T) {
	cfg := testConfig()
	cfg.GitHubToken = ""
	s := newTestServer(t, cfg)

	w := doRequest(s, http.MethodGet, "/api/cron/sync", map[string]string{"Authorization": "Bearer s3cret"})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "GITHUB_TOKEN")
}

func TestSyncRunsBatchAndReports(t *testing.T) {
	s := newTestServer(t, testConfig())
	auth := map[string]string{"Authorization": "Bearer s3cret"}

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		w := doRequest(s, method, "/api/cron/sync", auth)

		require.Equal(t, http.StatusOK, w.Code, method)

		var body struct {
			Synced  int    `json:"synced"`
			Date    string `json:"date"`
			Results []struct {
				Name  string   `json:"name"`
				Score *float64 `json:"score"`
				Error string   `json:"error"`
			} `json:"results"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

		assert.Equal(t, 18, body.Synced)
		assert.Equal(t, time.Now().Format("2006-01-02"), body.Date)
		require.Len(t, body.Results, 18)

		for _, res := range body.Results {
			assert.Empty(t, res.Error)
			require.NotNil(t, res.Score, res.Name)
		}
	}
}

func TestLeaderboardReflectsSync(t *testing.T) {
	s := newTestServer(t, testConfig())

	w := doRequest(s, http.MethodGet, "/api/cron/sync", map[string]string{"Authorization": "Bearer s3cret"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(s, http.MethodGet, "/api/leaderboard", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body leaderboard.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Entries, 18)

	// Handled executives all got the same fixture score; those without
	// a handle sit at zero behind them.
	assert.Equal(t, 1, body.Entries[0].Rank)
	assert.Greater(t, body.Entries[0].CurrentScore, 0.0)
	assert.Equal(t, 0.0, body.Entries[17].CurrentScore)
	assert.Equal(t, "No GitHub", body.Entries[17].Tier)
}

func TestHistoryEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig())

	w := doRequest(s, http.MethodGet, "/api/cron/sync", map[string]string{"Authorization": "Bearer s3cret"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(s, http.MethodGet, "/api/executives/tobi-lutke/history", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body leaderboard.HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "tobi-lutke", body.ExecutiveID)
	require.Len(t, body.Snapshots, 1)
	assert.Greater(t, body.Snapshots[0].CookingScore, 0.0)
}
