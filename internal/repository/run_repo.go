package repository

import (
	"context"
	"fmt"

	"RoundFeatures/internal/interfaces"
	"RoundFeatures/internal/model"

	"gorm.io/gorm"
)

type runRepository struct {
	db *gorm.DB
}

// NewRunRepository 创建 RunStore 实例
func NewRunRepository(db *gorm.DB) interfaces.RunStore {
	return &runRepository{db: db}
}

// CreateRun 写入运行记录
func (r *runRepository) CreateRun(ctx context.Context, run *model.FeatureRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("保存运行记录失败: %w", err)
	}
	return nil
}

// FinishRun 更新运行结果
func (r *runRepository) FinishRun(ctx context.Context, run *model.FeatureRun) error {
	if err := r.db.WithContext(ctx).Model(&model.FeatureRun{}).
		Where("run_uuid = ?", run.RunUUID).
		Updates(map[string]interface{}{
			"status":      run.Status,
			"row_count":   run.RowCount,
			"checksum":    run.Checksum,
			"diagnostics": run.Diagnostics,
			"error":       run.Error,
			"finished_at": run.FinishedAt,
		}).Error; err != nil {
		return fmt.Errorf("更新运行记录失败: %w, run_uuid: %s", err, run.RunUUID)
	}
	return nil
}

// GetRunByUUID 通过 run_uuid 获取运行记录
func (r *runRepository) GetRunByUUID(ctx context.Context, runUUID string) (*model.FeatureRun, error) {
	var run model.FeatureRun
	if err := r.db.WithContext(ctx).
		Where("run_uuid = ?", runUUID).
		First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns 按赛季分页查询运行记录，最近的在前
func (r *runRepository) ListRuns(ctx context.Context, season string, page, pageSize int) ([]*model.FeatureRun, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	db := r.db.WithContext(ctx).Model(&model.FeatureRun{})
	if season != "" {
		db = db.Where("season = ?", season)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var runs []*model.FeatureRun
	if err := db.
		Order("started_at DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&runs).Error; err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}
