package database

import (
	"context"
	"fmt"

	"RoundFeatures/internal/adapter"
	"RoundFeatures/internal/config"
	"RoundFeatures/internal/interfaces"
	"RoundFeatures/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Name 配置 source.loader 使用的名称
const Name = "database"

func init() {
	adapter.Register(Name, NewLoader)
}

// Loader 从数据库（postgres/sqlite）按表名模板读取源表
type Loader struct {
	db     *gorm.DB
	tables config.SourceTablesConfig
	logger *logrus.Logger
}

// NewLoader 创建数据库加载器
func NewLoader(cfg *config.Config, db *gorm.DB, logger *logrus.Logger) (interfaces.SourceLoader, error) {
	if db == nil {
		return nil, fmt.Errorf("数据库加载器需要数据库连接")
	}
	return &Loader{db: db, tables: cfg.Source.Tables, logger: logger}, nil
}

func (l *Loader) GetName() string { return Name }

// Load 读取四张源表。history/players/fixtures 必须存在；team_stats 不存在时按空表处理（可由 team-stats 命令生成）
func (l *Loader) Load(ctx context.Context, season string) (*model.SourceTables, error) {
	records, err := l.readTable(ctx, config.SeasonTable(l.tables.Records, season), true)
	if err != nil {
		return nil, err
	}
	meta, err := l.readTable(ctx, config.SeasonTable(l.tables.Meta, season), true)
	if err != nil {
		return nil, err
	}
	teamStats, err := l.readTable(ctx, config.SeasonTable(l.tables.TeamStats, season), false)
	if err != nil {
		return nil, err
	}
	fixtures, err := l.readTable(ctx, config.SeasonTable(l.tables.Fixtures, season), true)
	if err != nil {
		return nil, err
	}

	src, err := adapter.BuildSourceTables(season, records, meta, teamStats, fixtures)
	if err != nil {
		return nil, fmt.Errorf("转换源数据失败: %w", err)
	}
	l.logger.WithFields(logrus.Fields{
		"season":     season,
		"records":    len(src.Records),
		"meta":       len(src.Meta),
		"team_stats": len(src.TeamStats),
		"fixtures":   len(src.Fixtures),
	}).Info("数据库源表加载完成")
	return src, nil
}

func (l *Loader) readTable(ctx context.Context, name string, required bool) ([]adapter.Row, error) {
	db := l.db.WithContext(ctx)
	if !db.Migrator().HasTable(name) {
		if required {
			return nil, fmt.Errorf("源表%s不存在", name)
		}
		l.logger.WithField("table", name).Warn("源表不存在，按空表处理")
		return nil, nil
	}
	var raw []map[string]interface{}
	if err := db.Table(name).Find(&raw).Error; err != nil {
		return nil, fmt.Errorf("读取源表%s失败: %w", name, err)
	}
	rows := make([]adapter.Row, len(raw))
	for i, r := range raw {
		rows[i] = r
	}
	return rows, nil
}
