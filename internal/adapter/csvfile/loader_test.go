package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"RoundFeatures/internal/config"
	"RoundFeatures/internal/model"
	"RoundFeatures/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(dir string) *config.Config {
	return &config.Config{Source: config.SourceConfig{
		Dir: dir,
		Tables: config.SourceTablesConfig{
			Records:   "history_{season}",
			Meta:      "players_{season}",
			TeamStats: "team_stats_{season}",
			Fixtures:  "fixtures_{season}",
		},
	}}
}

func TestLoaderReadsDirectory(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCSV(t, dir)
	logger, _ := testutil.NewLogger()

	loader, err := NewLoader(testConfig(dir), nil, logger)
	require.NoError(t, err)
	src, err := loader.Load(context.Background(), testutil.Season)
	require.NoError(t, err)

	assert.Len(t, src.Records, 14)
	assert.Len(t, src.Meta, 4)
	var vvd model.EntityMeta
	for _, m := range src.Meta {
		if m.EntityID == 30 {
			vvd = m
		}
	}
	assert.Equal(t, "Virgil van Dijk", vvd.Name)
	assert.True(t, vvd.Ownership.Malformed)

	var unplayed int
	for _, f := range src.Fixtures {
		if !f.Played() {
			unplayed++
		}
	}
	assert.Equal(t, 2, unplayed)
}

func TestLoaderTeamStatsOptional(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCSV(t, dir, "team_stats_"+testutil.Season)
	logger, _ := testutil.NewLogger()

	loader, err := NewLoader(testConfig(dir), nil, logger)
	require.NoError(t, err)
	src, err := loader.Load(context.Background(), testutil.Season)
	require.NoError(t, err)
	assert.Empty(t, src.TeamStats)

	require.NoError(t, os.Remove(filepath.Join(dir, "fixtures_"+testutil.Season+".csv")))
	_, err = loader.Load(context.Background(), testutil.Season)
	assert.Error(t, err)
}

func TestLoaderRejectsBadRows(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCSV(t, dir)
	bad := "element,round,minutes\n10,1,90\nten,2,90\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "history_"+testutil.Season+".csv"), []byte(bad), 0o644))
	logger, _ := testutil.NewLogger()

	loader, err := NewLoader(testConfig(dir), nil, logger)
	require.NoError(t, err)
	_, err = loader.Load(context.Background(), testutil.Season)
	assert.ErrorContains(t, err, "第2行")
}

func TestNewLoaderNeedsDirectory(t *testing.T) {
	logger, _ := testutil.NewLogger()
	_, err := NewLoader(testConfig(filepath.Join(t.TempDir(), "absent")), nil, logger)
	assert.Error(t, err)
}
