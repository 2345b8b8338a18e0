package service

import (
	"context"
	"fmt"

	"RoundFeatures/internal/config"
	"RoundFeatures/internal/feature"
	"RoundFeatures/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// PositionSplitService 按位置把特征表拆成 <输出表>_<位置> 子表，并剔除该位置无意义的列
type PositionSplitService struct {
	cfg    *config.Config
	store  interfaces.FeatureStore
	logger *logrus.Logger
}

func NewPositionSplitService(cfg *config.Config, store interfaces.FeatureStore, logger *logrus.Logger) *PositionSplitService {
	return &PositionSplitService{cfg: cfg, store: store, logger: logger}
}

// SplitTableName 子表名，如 features_2025_GK
func SplitTableName(outputTemplate, season, view string) string {
	return config.SeasonTable(outputTemplate, season) + "_" + view
}

// Views 按位置视图切出子表，顺序与配置一致
func (s *PositionSplitService) Views(season string, table *feature.Table) []interfaces.NamedTable {
	views := s.cfg.Features.PositionViews()
	out := make([]interfaces.NamedTable, 0, len(views))
	for _, v := range views {
		position := v.Position
		out = append(out, interfaces.NamedTable{
			Name:  SplitTableName(s.cfg.Features.OutputTable, season, v.Name),
			Table: table.Select(func(k feature.RowKey) bool { return k.Position == position }, v.Drop),
		})
	}
	return out
}

// Split 在同一事务内写出全部位置子表，返回写出的表名
func (s *PositionSplitService) Split(ctx context.Context, season string, table *feature.Table) ([]string, error) {
	views := s.Views(season, table)
	if err := s.store.ReplaceTables(ctx, views); err != nil {
		return nil, fmt.Errorf("写入位置子表失败: %w", err)
	}
	written := make([]string, len(views))
	for i, v := range views {
		written[i] = v.Name
		s.logger.WithFields(logrus.Fields{
			"table": v.Name,
			"rows":  v.Table.Len(),
		}).Debug("位置子表写入完成")
	}
	return written, nil
}

// SplitExisting 从已构建的特征表重新拆分
func (s *PositionSplitService) SplitExisting(ctx context.Context, season string) ([]string, error) {
	season, err := ResolveSeason(s.cfg, season)
	if err != nil {
		return nil, err
	}
	name := config.SeasonTable(s.cfg.Features.OutputTable, season)
	table, err := s.store.LoadTable(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("读取特征表失败: %w", err)
	}
	written, err := s.Split(ctx, season, table)
	if err != nil {
		return written, err
	}
	s.logger.WithFields(logrus.Fields{"season": season, "tables": written}).Info("位置子表拆分完成")
	return written, nil
}
