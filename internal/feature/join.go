package feature

import (
	"RoundFeatures/internal/model"
)

// JoinedRow 连接阶段产出：一条 EntityRecord 对应一行
type JoinedRow struct {
	EntityID       int64
	Round          int
	TeamID         int64
	OpponentTeamID int64
	Position       int
	Name           string
	Values         map[model.Field]model.NullFloat
}

type teamRoundKey struct {
	TeamID int64
	Round  int
}

type teamRoundStat struct {
	Points        float64
	GoalsScored   float64
	GoalsConceded float64
	CleanSheets   float64
}

// indexTeamStats 以 (team_id, round) 建索引；同一轮多场比赛的记录累加
func indexTeamStats(stats []model.TeamMatchStat) map[teamRoundKey]teamRoundStat {
	idx := make(map[teamRoundKey]teamRoundStat, len(stats))
	for _, s := range stats {
		k := teamRoundKey{TeamID: s.TeamID, Round: s.Round}
		agg := idx[k]
		agg.Points += s.Points.Or(0)
		agg.GoalsScored += s.GoalsScored.Or(0)
		agg.GoalsConceded += s.GoalsConceded.Or(0)
		if s.GoalsConceded.Valid && s.GoalsConceded.Float64 == 0 {
			agg.CleanSheets++
		}
		idx[k] = agg
	}
	return idx
}

// Join 把 history 与球员静态信息、本队比赛结果、对手比赛结果合并。
// 本队与对手是同一张 team_stats 的两次关联，分别写入 team_* 与 opp_* 字段，互不覆盖。
// 关联不上的行照常输出，比赛字段补 0 并计入诊断。
func Join(src *model.SourceTables, diag *Diagnostics) []JoinedRow {
	metaByID := make(map[int64]model.EntityMeta, len(src.Meta))
	for _, m := range src.Meta {
		metaByID[m.EntityID] = m
	}
	teamIdx := indexTeamStats(src.TeamStats)

	rows := make([]JoinedRow, 0, len(src.Records))
	for _, rec := range src.Records {
		values := make(map[model.Field]model.NullFloat, len(rec.Stats)+len(model.JoinedFields))
		for f, v := range rec.Stats {
			if v.Malformed {
				diag.NonNumericValues++
			}
			values[f] = v
		}
		if pts, ok := rec.Stats[model.FieldTotalPoints]; ok {
			values[model.FieldGWPoints] = pts
		}

		minutes := values[model.FieldMinutes].Or(0)
		values[model.FieldStartFlag] = boolFloat(minutes > 45)
		values[model.FieldFullMatchFlag] = boolFloat(minutes == 90)
		values[model.FieldIsHome] = boolFloat(rec.WasHome)

		row := JoinedRow{
			EntityID:       rec.EntityID,
			Round:          rec.Round,
			OpponentTeamID: rec.OpponentTeamID,
			Values:         values,
		}

		meta, ok := metaByID[rec.EntityID]
		if ok {
			row.TeamID = meta.TeamID
			row.Position = meta.Position
			row.Name = meta.Name
			if meta.Ownership.Malformed {
				diag.NonNumericValues++
			}
			if meta.Price.Malformed {
				diag.NonNumericValues++
			}
			values[model.FieldPrice] = meta.Price
			values[model.FieldOwnership] = meta.Ownership
			if meta.Price.Valid {
				values[model.FieldPriceM] = model.Float(meta.Price.Float64 / 10)
			} else {
				values[model.FieldPriceM] = model.Null()
			}
		} else {
			diag.UnresolvedEntityMeta++
			values[model.FieldPrice] = model.Null()
			values[model.FieldOwnership] = model.Null()
			values[model.FieldPriceM] = model.Null()
		}

		own, ownOK := teamIdx[teamRoundKey{TeamID: row.TeamID, Round: rec.Round}]
		if ok && !ownOK {
			diag.UnresolvedTeamStat++
		}
		values[model.FieldTeamPoints] = model.Float(own.Points)
		values[model.FieldTeamGoalsScoredMatch] = model.Float(own.GoalsScored)
		values[model.FieldTeamGoalsConcededMatch] = model.Float(own.GoalsConceded)
		values[model.FieldTeamCleanSheetMatch] = model.Float(own.CleanSheets)

		opp, oppOK := teamIdx[teamRoundKey{TeamID: rec.OpponentTeamID, Round: rec.Round}]
		if !oppOK {
			diag.UnresolvedOpponentStat++
		}
		values[model.FieldOppPoints] = model.Float(opp.Points)
		values[model.FieldOppGoalsScoredMatch] = model.Float(opp.GoalsScored)
		values[model.FieldOppGoalsConcededMatch] = model.Float(opp.GoalsConceded)
		values[model.FieldOppCleanSheetMatch] = model.Float(opp.CleanSheets)

		rows = append(rows, row)
	}
	return rows
}

func boolFloat(b bool) model.NullFloat {
	if b {
		return model.Float(1)
	}
	return model.Float(0)
}
