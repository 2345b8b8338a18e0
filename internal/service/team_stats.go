package service

import (
	"context"
	"fmt"
	"sort"

	"RoundFeatures/internal/config"
	"RoundFeatures/internal/interfaces"
	"RoundFeatures/internal/model"

	"github.com/sirupsen/logrus"
)

// 积分规则：胜 3 平 1 负 0
const (
	pointsWin  = 3
	pointsDraw = 1
)

func matchPoints(scored, conceded float64) float64 {
	switch {
	case scored > conceded:
		return pointsWin
	case scored == conceded:
		return pointsDraw
	}
	return 0
}

// BuildTeamStats 赛程 → 球队视角的逐轮结果。每场比赛展开为主客两行，
// 同一轮多场（双赛轮）累加；尚无比分的比赛跳过
func BuildTeamStats(fixtures []model.Fixture) []model.TeamStatRow {
	type key struct {
		team  int64
		round int
	}
	agg := make(map[key]*model.TeamStatRow)
	add := func(team int64, round int, scored, conceded float64) {
		k := key{team, round}
		row, ok := agg[k]
		if !ok {
			row = &model.TeamStatRow{TeamID: team, Round: round}
			agg[k] = row
		}
		row.Points += matchPoints(scored, conceded)
		row.GoalsScored += scored
		row.GoalsConceded += conceded
		row.Fixtures++
	}
	for _, f := range fixtures {
		if !f.Played() {
			continue
		}
		add(f.HomeTeamID, f.Round, f.HomeGoals.Float64, f.AwayGoals.Float64)
		add(f.AwayTeamID, f.Round, f.AwayGoals.Float64, f.HomeGoals.Float64)
	}

	rows := make([]model.TeamStatRow, 0, len(agg))
	for _, r := range agg {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TeamID != rows[j].TeamID {
			return rows[i].TeamID < rows[j].TeamID
		}
		return rows[i].Round < rows[j].Round
	})
	return rows
}

// TeamStatsService 由赛程生成 team_stats_{season}
type TeamStatsService struct {
	cfg    *config.Config
	loader interfaces.SourceLoader
	store  interfaces.TeamStatsStore
	logger *logrus.Logger
}

func NewTeamStatsService(cfg *config.Config, loader interfaces.SourceLoader, store interfaces.TeamStatsStore, logger *logrus.Logger) *TeamStatsService {
	return &TeamStatsService{cfg: cfg, loader: loader, store: store, logger: logger}
}

// Run 返回写入的行数
func (s *TeamStatsService) Run(ctx context.Context, season string) (int, error) {
	season, err := ResolveSeason(s.cfg, season)
	if err != nil {
		return 0, err
	}
	src, err := s.loader.Load(ctx, season)
	if err != nil {
		return 0, fmt.Errorf("加载赛程失败: %w", err)
	}
	rows := BuildTeamStats(src.Fixtures)
	name := config.SeasonTable(s.cfg.Source.Tables.TeamStats, season)
	if err := s.store.ReplaceTeamStats(ctx, name, rows); err != nil {
		return 0, err
	}
	s.logger.Infof("%s生成完成，共%d行（赛程%d场）", name, len(rows), len(src.Fixtures))
	return len(rows), nil
}
