package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"RoundFeatures/internal/adapter/database"
	"RoundFeatures/internal/config"
	"RoundFeatures/internal/model"
	"RoundFeatures/internal/repository"
	"RoundFeatures/internal/service"
	"RoundFeatures/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", BatchSize: 50},
		Source: config.SourceConfig{Loader: database.Name, Tables: config.SourceTablesConfig{
			Records: "history_{season}", Meta: "players_{season}",
			TeamStats: "team_stats_{season}", Fixtures: "fixtures_{season}",
		}},
		Features: config.FeaturesConfig{
			Windows: model.DefaultWindows, Epsilon: model.DefaultEpsilon,
			Workers: 2, OutputTable: "features_{season}",
		},
	}
	db := testutil.NewSQLiteDB(t)
	require.NoError(t, db.AutoMigrate(&model.FeatureRun{}))
	testutil.SeedSQLite(t, db, "team_stats_2025")
	logger, _ := testutil.NewLogger()

	loader, err := database.NewLoader(cfg, db, logger)
	require.NoError(t, err)
	features := repository.NewFeatureRepository(db, cfg.Database.BatchSize)
	runs := repository.NewRunRepository(db)
	query := service.NewQueryService(cfg, features, runs, logger)

	fh := NewFeatureHandler(
		service.NewFeatureBuildService(cfg, loader, features, runs, logger),
		service.NewPositionSplitService(cfg, features, logger),
		service.NewTeamStatsService(cfg, loader, repository.NewTeamStatsRepository(db, 50), logger),
		query,
		logger,
	)
	return NewRouter(gin.TestMode, fh, NewRunHandler(query, logger))
}

func do(r *gin.Engine, method, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestFeatureEndpoints(t *testing.T) {
	r := newTestRouter(t)

	w, _ := do(r, http.MethodGet, "/api/features/2025")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body := do(r, http.MethodPost, "/team-stats/build/2025")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 18, body["rows"])

	w, body = do(r, http.MethodPost, "/features/build/2025")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.RunStatusSucceeded, body["status"])
	runUUID, _ := body["run_uuid"].(string)
	require.NotEmpty(t, runUUID)

	w, body = do(r, http.MethodGet, "/api/features/2025?entity_id=10&page_size=2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 5, body["total"])
	assert.Len(t, body["items"], 2)

	w, body = do(r, http.MethodGet, "/api/features/2025?view=FWD&round=3")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["total"])
	assert.Equal(t, "features_2025_FWD", body["table"])

	w, _ = do(r, http.MethodGet, "/api/features/2025?entity_id=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = do(r, http.MethodPost, "/features/split/2025")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["tables"], 4)

	w, body = do(r, http.MethodGet, "/api/runs?season=2025")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["total"])

	w, _ = do(r, http.MethodGet, "/api/runs/"+runUUID)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(r, http.MethodGet, "/api/runs/does-not-exist")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBuildFailureReportsRun(t *testing.T) {
	r := newTestRouter(t)

	// 2024 赛季没有任何源表
	w, body := do(r, http.MethodPost, "/features/build/2024")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, body["error"])
	run, ok := body["run"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, model.RunStatusFailed, run["status"])
}

func TestMetricsAndHealth(t *testing.T) {
	r := newTestRouter(t)
	do(r, http.MethodPost, "/features/build/2025")

	w, _ := do(r, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(r, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "round_features_build_runs_total"))
}
