package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"RoundFeatures/internal/config"
	"RoundFeatures/internal/feature"
	"RoundFeatures/internal/interfaces"
	"RoundFeatures/internal/metrics"
	"RoundFeatures/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// ErrSeasonRequired 未指定赛季且配置中也没有默认赛季
var ErrSeasonRequired = errors.New("未指定赛季")

// BuildOptions 配置 → 特征构建参数；未配置的项使用内置默认
func BuildOptions(f config.FeaturesConfig) feature.Options {
	opts := feature.DefaultOptions()
	if len(f.Specs) > 0 {
		opts.Specs = f.Specs
	}
	if len(f.Ratios) > 0 {
		opts.Ratios = f.Ratios
	}
	if len(f.Windows) > 0 {
		opts.Windows = f.Windows
	}
	if f.Epsilon > 0 {
		opts.Epsilon = f.Epsilon
	}
	if len(f.Columns) > 0 {
		opts.Columns = f.Columns
	}
	if f.Workers > 0 {
		opts.Workers = f.Workers
	}
	return opts
}

// FeatureBuildService 一次完整的特征表构建：加载 → 计算 → 主表与位置子表原子写入 → 记录
type FeatureBuildService struct {
	cfg      *config.Config
	loader   interfaces.SourceLoader
	store    interfaces.FeatureStore
	runs     interfaces.RunStore
	splitter *PositionSplitService
	logger   *logrus.Logger

	mu sync.Mutex // 同一时间只允许一个构建，临时表名不冲突
}

func NewFeatureBuildService(cfg *config.Config, loader interfaces.SourceLoader, store interfaces.FeatureStore, runs interfaces.RunStore, logger *logrus.Logger) *FeatureBuildService {
	return &FeatureBuildService{
		cfg:      cfg,
		loader:   loader,
		store:    store,
		runs:     runs,
		splitter: NewPositionSplitService(cfg, store, logger),
		logger:   logger,
	}
}

// ResolveSeason 空赛季回退到配置中的默认赛季
func ResolveSeason(cfg *config.Config, season string) (string, error) {
	if season == "" {
		season = cfg.Features.Season
	}
	if season == "" {
		return "", ErrSeasonRequired
	}
	return season, nil
}

// Run 构建指定赛季的特征表。无论成功失败都会留下运行记录；失败时输出表保持原样
func (s *FeatureBuildService) Run(ctx context.Context, season string) (*model.FeatureRun, error) {
	season, err := ResolveSeason(s.cfg, season)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	run := &model.FeatureRun{
		RunUUID:     uuid.NewString(),
		Season:      season,
		OutputTable: config.SeasonTable(s.cfg.Features.OutputTable, season),
		Status:      model.RunStatusRunning,
		StartedAt:   time.Now().UTC(),
	}
	run.FinishedAt = run.StartedAt
	if err := s.runs.CreateRun(ctx, run); err != nil {
		return nil, err
	}
	log := s.logger.WithFields(logrus.Fields{"season": season, "run_uuid": run.RunUUID})
	log.Info("开始构建特征表")

	res, buildErr := s.build(ctx, season, run.OutputTable)
	run.FinishedAt = time.Now().UTC()
	if res != nil {
		if b, err := json.Marshal(res.Diagnostics); err == nil {
			run.Diagnostics = datatypes.JSON(b)
		}
		metrics.SetDiagnostics(season, res.Diagnostics.Counters())
	}
	if buildErr != nil {
		msg := buildErr.Error()
		run.Status = model.RunStatusFailed
		run.Error = &msg
	} else {
		run.Status = model.RunStatusSucceeded
		run.RowCount = res.Table.Len()
		run.Checksum = res.checksum
		metrics.SetOutputRows(season, run.OutputTable, run.RowCount)
	}
	metrics.ObserveRun(season, run.Status, run.FinishedAt.Sub(run.StartedAt))

	// 调用方取消后仍需落库运行结果
	if err := s.runs.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		log.WithError(err).Error("更新运行记录失败")
		if buildErr == nil {
			return run, err
		}
	}
	if buildErr != nil {
		log.WithError(buildErr).Error("特征表构建失败，输出表保持不变")
		return run, buildErr
	}
	log.WithFields(logrus.Fields{
		"table":    run.OutputTable,
		"rows":     run.RowCount,
		"checksum": run.Checksum,
	}).Info("特征表构建成功")
	return run, nil
}

type buildResult struct {
	*feature.Result
	checksum string
}

func (s *FeatureBuildService) build(ctx context.Context, season, table string) (*buildResult, error) {
	src, err := s.loader.Load(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("加载源数据失败: %w", err)
	}
	pipeline, err := feature.NewPipeline(BuildOptions(s.cfg.Features), s.logger)
	if err != nil {
		return nil, err
	}
	res, err := pipeline.Run(ctx, src)
	if err != nil {
		return nil, err
	}
	out := &buildResult{Result: res}
	if out.checksum, err = res.Table.Checksum(); err != nil {
		return out, fmt.Errorf("计算校验和失败: %w", err)
	}
	// 主表与位置子表同一事务替换，失败时全部保持上一次的结果
	tables := append([]interfaces.NamedTable{{Name: table, Table: res.Table}}, s.splitter.Views(season, res.Table)...)
	if err := s.store.ReplaceTables(ctx, tables); err != nil {
		return out, err
	}
	return out, nil
}
