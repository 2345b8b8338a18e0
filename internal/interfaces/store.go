package interfaces

import (
	"context"

	"RoundFeatures/internal/feature"
	"RoundFeatures/internal/model"
)

// FeatureFilter 特征表查询条件，零值表示不过滤
type FeatureFilter struct {
	EntityID int64
	Round    int
}

// NamedTable 待写入的表及其表名
type NamedTable struct {
	Name  string
	Table *feature.Table
}

// FeatureStore 特征表持久化接口
type FeatureStore interface {
	// ReplaceTable 原子替换整张表：成功后旧表消失，失败时旧表保持不变
	ReplaceTable(ctx context.Context, name string, table *feature.Table) error
	// ReplaceTables 多张表一起原子替换：任一张失败则全部保持原样
	ReplaceTables(ctx context.Context, tables []NamedTable) error
	// ListRows 分页查询特征行
	ListRows(ctx context.Context, name string, filter FeatureFilter, page, pageSize int) ([]map[string]interface{}, int64, error)
	// LoadTable 读回整张表，行按 (entity_id, round) 排序
	LoadTable(ctx context.Context, name string) (*feature.Table, error)
	// HasTable 表是否存在
	HasTable(ctx context.Context, name string) bool
}

// RunStore 构建记录持久化接口
type RunStore interface {
	CreateRun(ctx context.Context, run *model.FeatureRun) error
	FinishRun(ctx context.Context, run *model.FeatureRun) error
	GetRunByUUID(ctx context.Context, runUUID string) (*model.FeatureRun, error)
	ListRuns(ctx context.Context, season string, page, pageSize int) ([]*model.FeatureRun, int64, error)
}

// TeamStatsStore 球队逐轮结果表写入接口
type TeamStatsStore interface {
	ReplaceTeamStats(ctx context.Context, name string, rows []model.TeamStatRow) error
}
