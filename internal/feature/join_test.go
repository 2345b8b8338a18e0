package feature

import (
	"testing"

	"RoundFeatures/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinKeepsOwnAndOpponentContextApart(t *testing.T) {
	src := &model.SourceTables{
		Records: []model.EntityRecord{rec(10, 1, 2, true, map[model.Field]float64{
			model.FieldTotalPoints: 6,
			model.FieldMinutes:     90,
		})},
		Meta:      []model.EntityMeta{{EntityID: 10, TeamID: 1, Price: model.Float(65), Ownership: model.Float(3.2)}},
		TeamStats: []model.TeamMatchStat{teamStat(1, 1, 3, 2, 0), teamStat(2, 1, 0, 0, 2)},
	}
	diag := &Diagnostics{}
	rows := Join(src, diag)
	require.Len(t, rows, 1)
	v := rows[0].Values

	assert.Equal(t, int64(1), rows[0].TeamID)
	assert.Equal(t, 3.0, v[model.FieldTeamPoints].Float64)
	assert.Equal(t, 2.0, v[model.FieldTeamGoalsScoredMatch].Float64)
	assert.Equal(t, 1.0, v[model.FieldTeamCleanSheetMatch].Float64)
	assert.Equal(t, 0.0, v[model.FieldOppPoints].Float64)
	assert.Equal(t, 2.0, v[model.FieldOppGoalsConcededMatch].Float64)
	assert.Equal(t, 0.0, v[model.FieldOppCleanSheetMatch].Float64)

	assert.Equal(t, 6.0, v[model.FieldGWPoints].Float64)
	assert.Equal(t, 1.0, v[model.FieldStartFlag].Float64)
	assert.Equal(t, 1.0, v[model.FieldFullMatchFlag].Float64)
	assert.Equal(t, 1.0, v[model.FieldIsHome].Float64)
	assert.InDelta(t, 6.5, v[model.FieldPriceM].Float64, 1e-12)

	assert.Zero(t, diag.UnresolvedEntityMeta+diag.UnresolvedTeamStat+diag.UnresolvedOpponentStat)
}

func TestJoinUnresolvedRowsAreKeptAndCounted(t *testing.T) {
	src := &model.SourceTables{
		Records: []model.EntityRecord{
			rec(10, 1, 2, false, map[model.Field]float64{model.FieldMinutes: 30}),
			rec(99, 1, 5, false, map[model.Field]float64{model.FieldMinutes: 0}),
		},
		Meta:      []model.EntityMeta{{EntityID: 10, TeamID: 1}},
		TeamStats: []model.TeamMatchStat{teamStat(2, 1, 1, 1, 1)},
	}
	diag := &Diagnostics{}
	rows := Join(src, diag)
	require.Len(t, rows, len(src.Records))

	assert.Equal(t, 1, diag.UnresolvedEntityMeta)
	assert.Equal(t, 1, diag.UnresolvedTeamStat, "只统计球员信息已关联上的行")
	assert.Equal(t, 1, diag.UnresolvedOpponentStat)

	orphan := rows[1].Values
	assert.False(t, orphan[model.FieldPrice].Valid)
	assert.Equal(t, model.Float(0), orphan[model.FieldTeamPoints])
	assert.Equal(t, model.Float(0), orphan[model.FieldOppPoints])
	assert.Equal(t, 0.0, rows[0].Values[model.FieldStartFlag].Float64)
}

func TestJoinSumsTeamStatsWithinRound(t *testing.T) {
	src := &model.SourceTables{
		Records:   []model.EntityRecord{rec(10, 7, 3, true, nil)},
		Meta:      []model.EntityMeta{{EntityID: 10, TeamID: 1}},
		TeamStats: []model.TeamMatchStat{teamStat(1, 7, 3, 2, 0), teamStat(1, 7, 1, 1, 1), teamStat(3, 7, 0, 1, 3)},
	}
	rows := Join(src, &Diagnostics{})
	v := rows[0].Values
	assert.Equal(t, 4.0, v[model.FieldTeamPoints].Float64)
	assert.Equal(t, 3.0, v[model.FieldTeamGoalsScoredMatch].Float64)
	assert.Equal(t, 1.0, v[model.FieldTeamCleanSheetMatch].Float64)
}

func TestJoinCountsMalformedValues(t *testing.T) {
	r := rec(10, 1, 2, true, nil)
	r.Stats[model.FieldInfluence] = model.ParseNullFloat("abc")
	src := &model.SourceTables{
		Records: []model.EntityRecord{r},
		Meta:    []model.EntityMeta{{EntityID: 10, TeamID: 1, Ownership: model.ParseNullFloat("--")}},
	}
	diag := &Diagnostics{}
	rows := Join(src, diag)
	assert.Equal(t, 2, diag.NonNumericValues)
	assert.False(t, rows[0].Values[model.FieldInfluence].Valid)
}
