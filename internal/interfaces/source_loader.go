package interfaces

import (
	"context"

	"RoundFeatures/internal/model"
)

// SourceLoader 所有源数据加载器必须实现的核心接口
type SourceLoader interface {
	GetName() string                                                      // 加载器名称
	Load(ctx context.Context, season string) (*model.SourceTables, error) // 一次性加载整个赛季的源表
}
