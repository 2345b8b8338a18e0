package adapter

import (
	"context"
	"errors"
	"testing"

	"RoundFeatures/internal/config"
	"RoundFeatures/internal/interfaces"
	"RoundFeatures/internal/model"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubLoader struct{ name string }

func (s *stubLoader) GetName() string { return s.name }

func (s *stubLoader) Load(ctx context.Context, season string) (*model.SourceTables, error) {
	return &model.SourceTables{Season: season}, nil
}

func TestNewSourceLoaderUsesRegistry(t *testing.T) {
	Register("stub", func(cfg *config.Config, db *gorm.DB, logger *logrus.Logger) (interfaces.SourceLoader, error) {
		return &stubLoader{name: "stub"}, nil
	})
	Register("broken", func(cfg *config.Config, db *gorm.DB, logger *logrus.Logger) (interfaces.SourceLoader, error) {
		return nil, errors.New("boom")
	})
	assert.Contains(t, ListFactories(), "stub")

	logger, _ := logtest.NewNullLogger()
	cfg := &config.Config{Source: config.SourceConfig{Loader: "stub"}}
	loader, err := NewSourceLoader(cfg, nil, logger)
	require.NoError(t, err)
	src, err := loader.Load(context.Background(), "2025")
	require.NoError(t, err)
	assert.Equal(t, "2025", src.Season)

	cfg.Source.Loader = "broken"
	_, err = NewSourceLoader(cfg, nil, logger)
	assert.ErrorContains(t, err, "boom")

	cfg.Source.Loader = "missing"
	_, err = NewSourceLoader(cfg, nil, logger)
	assert.Error(t, err)
}

func TestRegisterNilPanics(t *testing.T) {
	assert.Panics(t, func() { Register("nil", nil) })
}
