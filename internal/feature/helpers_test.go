package feature

import (
	"context"
	"testing"

	"RoundFeatures/internal/model"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func rec(entity int64, round int, opp int64, home bool, stats map[model.Field]float64) model.EntityRecord {
	s := make(map[model.Field]model.NullFloat, len(stats))
	for k, v := range stats {
		s[k] = model.Float(v)
	}
	return model.EntityRecord{EntityID: entity, Round: round, OpponentTeamID: opp, WasHome: home, Stats: s}
}

func teamStat(team int64, round int, pts, scored, conceded float64) model.TeamMatchStat {
	return model.TeamMatchStat{
		TeamID:        team,
		Round:         round,
		Points:        model.Float(pts),
		GoalsScored:   model.Float(scored),
		GoalsConceded: model.Float(conceded),
	}
}

func fixture(round int, home, away int64) model.Fixture {
	return model.Fixture{Round: round, HomeTeamID: home, AwayTeamID: away}
}

// sampleSource 球员 10（1 队）连续 6 轮得分 2,4,...,12；球员 20（2 队）只踢了第 2、3、5 轮
func sampleSource() *model.SourceTables {
	src := &model.SourceTables{
		Season: "2025",
		Meta: []model.EntityMeta{
			{EntityID: 10, TeamID: 1, Price: model.Float(75), Ownership: model.Float(12.5), Position: 3, Name: "Bukayo Saka"},
			{EntityID: 20, TeamID: 2, Price: model.Float(45), Ownership: model.Float(0.4), Position: 1, Name: "Emiliano Martinez"},
		},
	}
	for r := 1; r <= 6; r++ {
		src.Records = append(src.Records, rec(10, r, 2, r%2 == 1, map[model.Field]float64{
			model.FieldTotalPoints:   float64(2 * r),
			model.FieldMinutes:       90,
			model.FieldYellowCards:   float64(r % 2),
			model.FieldRedCards:      0,
			model.FieldTransfersIn:   float64(100 * r),
			model.FieldTransfersOut:  float64(10 * r),
			model.FieldExpectedGoals: 0.25,
		}))
		src.Fixtures = append(src.Fixtures, fixture(r, 1, 2))
		src.TeamStats = append(src.TeamStats, teamStat(1, r, 3, 2, 0), teamStat(2, r, 0, 0, 2))
	}
	for _, r := range []int{5, 2, 3} {
		src.Records = append(src.Records, rec(20, r, 1, r%2 == 0, map[model.Field]float64{
			model.FieldTotalPoints:   1,
			model.FieldMinutes:       0,
			model.FieldYellowCards:   0,
			model.FieldRedCards:      0,
			model.FieldTransfersIn:   0,
			model.FieldTransfersOut:  0,
			model.FieldExpectedGoals: 0,
		}))
	}
	return src
}

func runPipeline(t *testing.T, opts Options, src *model.SourceTables) *Result {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	p, err := NewPipeline(opts, logger)
	require.NoError(t, err)
	res, err := p.Run(context.Background(), src)
	require.NoError(t, err)
	return res
}

// cell 按 (entity, round, column) 取数值
func cell(t *testing.T, tbl *Table, entity int64, round int, column string) float64 {
	t.Helper()
	ci := tbl.ColumnIndex(column)
	require.GreaterOrEqual(t, ci, 0, "列 %s 不存在", column)
	for i, k := range tbl.Keys {
		if k.EntityID == entity && k.Round == round {
			return tbl.Rows[i][ci].Num.Float64
		}
	}
	t.Fatalf("行 entity=%d round=%d 不存在", entity, round)
	return 0
}
