package repository

import (
	"context"
	"fmt"

	"RoundFeatures/internal/interfaces"
	"RoundFeatures/internal/model"

	"gorm.io/gorm"
)

type teamStatsRepository struct {
	db        *gorm.DB
	batchSize int
}

// NewTeamStatsRepository 创建 TeamStatsStore 实例
func NewTeamStatsRepository(db *gorm.DB, batchSize int) interfaces.TeamStatsStore {
	return &teamStatsRepository{db: db, batchSize: batchSize}
}

var teamStatColumns = []sqlColumn{
	{Name: "team_id"}, {Name: "round"}, {Name: "points"},
	{Name: "goals_scored"}, {Name: "goals_conceded"}, {Name: "fixtures"},
}

// ReplaceTeamStats 原子替换 team_stats 表
func (r *teamStatsRepository) ReplaceTeamStats(ctx context.Context, name string, rows []model.TeamStatRow) error {
	values := make([][]interface{}, len(rows))
	for i, s := range rows {
		values[i] = []interface{}{s.TeamID, s.Round, s.Points, s.GoalsScored, s.GoalsConceded, s.Fixtures}
	}
	if err := replaceTable(ctx, r.db, name, teamStatColumns, values, r.batchSize, []string{"team_id", "round"}); err != nil {
		return fmt.Errorf("替换球队数据表%s失败: %w", name, err)
	}
	return nil
}
