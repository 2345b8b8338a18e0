package service

import (
	"context"
	"errors"

	"RoundFeatures/internal/config"
	"RoundFeatures/internal/interfaces"
	"RoundFeatures/internal/model"

	"github.com/sirupsen/logrus"
)

// QueryService 面向接口层的只读查询
type QueryService struct {
	cfg      *config.Config
	features interfaces.FeatureStore
	runs     interfaces.RunStore
	logger   *logrus.Logger
}

// NewQueryService 创建 QueryService
func NewQueryService(cfg *config.Config, features interfaces.FeatureStore, runs interfaces.RunStore, logger *logrus.Logger) *QueryService {
	return &QueryService{cfg: cfg, features: features, runs: runs, logger: logger}
}

// FeatureListResult 特征行分页结果
type FeatureListResult struct {
	Table    string                   `json:"table"`
	Page     int                      `json:"page"`
	PageSize int                      `json:"page_size"`
	Total    int64                    `json:"total"`
	Items    []map[string]interface{} `json:"items"`
}

// RunListResult 运行记录分页结果
type RunListResult struct {
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
	Total    int64               `json:"total"`
	Items    []*model.FeatureRun `json:"items"`
}

// ListFeatures 分页读取赛季特征表；view 非空时读取对应位置子表（如 GK）
func (s *QueryService) ListFeatures(ctx context.Context, season, view string, filter interfaces.FeatureFilter, page, pageSize int) (*FeatureListResult, error) {
	season, err := ResolveSeason(s.cfg, season)
	if err != nil {
		return nil, err
	}
	table := config.SeasonTable(s.cfg.Features.OutputTable, season)
	if view != "" {
		if !s.knownView(view) {
			return nil, errors.New("未知的位置视图: " + view)
		}
		table = SplitTableName(s.cfg.Features.OutputTable, season, view)
	}
	items, total, err := s.features.ListRows(ctx, table, filter, page, pageSize)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []map[string]interface{}{}
	}
	page, pageSize = normalizePage(page, pageSize)
	return &FeatureListResult{Table: table, Page: page, PageSize: pageSize, Total: total, Items: items}, nil
}

func (s *QueryService) knownView(view string) bool {
	for _, v := range s.cfg.Features.PositionViews() {
		if v.Name == view {
			return true
		}
	}
	return false
}

// ListRuns 运行记录分页，season 为空时不过滤
func (s *QueryService) ListRuns(ctx context.Context, season string, page, pageSize int) (*RunListResult, error) {
	runs, total, err := s.runs.ListRuns(ctx, season, page, pageSize)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []*model.FeatureRun{}
	}
	page, pageSize = normalizePage(page, pageSize)
	return &RunListResult{Page: page, PageSize: pageSize, Total: total, Items: runs}, nil
}

// GetRun 按 run_uuid 查询
func (s *QueryService) GetRun(ctx context.Context, runUUID string) (*model.FeatureRun, error) {
	return s.runs.GetRunByUUID(ctx, runUUID)
}

// normalizePage 与仓储层保持一致的分页默认值
func normalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
