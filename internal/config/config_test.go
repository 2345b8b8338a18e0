package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"RoundFeatures/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: sqlite
  dsn: /tmp/fpl.db
features:
  season: "2024"
`)
	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "database", cfg.Source.Loader)
	assert.Equal(t, "history_{season}", cfg.Source.Tables.Records)
	assert.Equal(t, []int{4, 10, 38}, cfg.Features.Windows)
	assert.Equal(t, model.DefaultEpsilon, cfg.Features.Epsilon)
	assert.Equal(t, "features_{season}", cfg.Features.OutputTable)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, logrus.InfoLevel, cfg.Log.LogrusLevel())
	assert.Len(t, cfg.Features.PositionViews(), 4)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: postgres
  dsn: postgres://yaml@localhost/db
features:
  season: "2024"
`)
	t.Setenv("DATABASE_DSN", "postgres://env@localhost/db")
	t.Setenv("FEATURES_SEASON", "2025")

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env@localhost/db", cfg.Database.DSN)
	assert.Equal(t, "2025", cfg.Features.Season)
}

func TestLoadConfigFeatureOverrides(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: sqlite
  dsn: fpl.db
features:
  windows: [3, 6]
  columns: [entity_id, round, points_3]
  specs:
    - name: points_3
      source: gw_points
      window: 3
      kind: mean
  positions:
    - position: 1
      name: GK
      drop: [points_3]
`)
	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)

	require.Len(t, cfg.Features.Specs, 1)
	assert.Equal(t, model.FeatureSpec{Name: "points_3", Source: model.FieldGWPoints, Window: 3, Kind: model.KindMean}, cfg.Features.Specs[0])
	assert.Equal(t, []int{3, 6}, cfg.Features.Windows)
	assert.Equal(t, []model.PositionView{{Position: 1, Name: "GK", Drop: []string{"points_3"}}}, cfg.Features.PositionViews())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: "sqlite", DSN: "x.db"},
			Source:   SourceConfig{Loader: "database"},
			Features: FeaturesConfig{OutputTable: "features_{season}", Epsilon: 1e-6},
			Log:      LogConfig{Level: "info"},
		}
	}
	require.NoError(t, base().Validate())

	cases := map[string]func(c *Config){
		"driver":       func(c *Config) { c.Database.Driver = "mysql" },
		"dsn":          func(c *Config) { c.Database.DSN = "" },
		"csv dir":      func(c *Config) { c.Source.Loader = "csvfile" },
		"loader":       func(c *Config) { c.Source.Loader = "http" },
		"output table": func(c *Config) { c.Features.OutputTable = "features" },
		"epsilon":      func(c *Config) { c.Features.Epsilon = 0 },
		"log level":    func(c *Config) { c.Log.Level = "loud" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestMissingConfigFile(t *testing.T) {
	_, err := LoadConfigFrom(t.TempDir())
	assert.Error(t, err)
}

func TestSeasonTable(t *testing.T) {
	assert.Equal(t, "features_2025_GK", SeasonTable("features_{season}_GK", "2025"))
	assert.Equal(t, "fixtures", SeasonTable("fixtures", "2025"))
}
