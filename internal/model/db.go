package model

import (
	"time"

	"gorm.io/datatypes"
)

// 构建状态
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// FeatureRun 每次特征表构建的运行记录（成功或失败都会落库）
type FeatureRun struct {
	ID          uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	RunUUID     string         `gorm:"column:run_uuid;type:varchar(64);uniqueIndex;not null;comment:运行ID" json:"run_uuid"`
	Season      string         `gorm:"column:season;type:varchar(16);index;not null;comment:赛季" json:"season"`
	OutputTable string         `gorm:"column:output_table;type:varchar(128);not null;comment:输出表名" json:"output_table"`
	Status      string         `gorm:"column:status;type:varchar(16);not null;comment:状态：running/succeeded/failed" json:"status"`
	RowCount    int            `gorm:"column:row_count;type:int;default:0;comment:输出行数" json:"row_count"`
	Checksum    string         `gorm:"column:checksum;type:varchar(64);comment:输出表sha256" json:"checksum"`
	Diagnostics datatypes.JSON `gorm:"column:diagnostics;comment:运行诊断计数" json:"diagnostics"`
	Error       *string        `gorm:"column:error;type:text;comment:失败原因" json:"error,omitempty"`
	StartedAt   time.Time      `gorm:"column:started_at;type:timestamp;not null;comment:开始时间" json:"started_at"`
	FinishedAt  time.Time      `gorm:"column:finished_at;type:timestamp;not null;comment:结束时间" json:"finished_at"`
}

func (FeatureRun) TableName() string { return "feature_runs" }

// TeamStatRow team_stats_{season} 表行，表名随赛季变化，写入时用 Table() 指定
type TeamStatRow struct {
	TeamID        int64   `gorm:"column:team_id;not null" json:"team_id"`
	Round         int     `gorm:"column:round;not null" json:"round"`
	Points        float64 `gorm:"column:points" json:"points"`
	GoalsScored   float64 `gorm:"column:goals_scored" json:"goals_scored"`
	GoalsConceded float64 `gorm:"column:goals_conceded" json:"goals_conceded"`
	Fixtures      int     `gorm:"column:fixtures" json:"fixtures"`
}
