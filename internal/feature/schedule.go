package feature

import (
	"RoundFeatures/internal/model"
)

// ScheduledRow 赛程异常检测阶段产出
type ScheduledRow struct {
	DerivedRow
	Fixtures    int
	DoubleRound int
	BlankRound  int
}

// FixtureCounts 由赛程表统计每队每轮的比赛场数（每场比赛展开为主客两行）
func FixtureCounts(fixtures []model.Fixture) map[teamRoundKey]int {
	counts := make(map[teamRoundKey]int, len(fixtures)*2)
	for _, f := range fixtures {
		counts[teamRoundKey{TeamID: f.HomeTeamID, Round: f.Round}]++
		counts[teamRoundKey{TeamID: f.AwayTeamID, Round: f.Round}]++
	}
	return counts
}

// DetectSchedule 按 (round, team_id) 关联赛程：1 场正常，>1 双赛轮，0 空轮。
// 空轮必须依赖赛程表判断，仅靠 history 无法区分“球队空轮”和“球员没上场”；
// 赛程表本身不完整时的可疑情况计入诊断，不做修正。
func DetectSchedule(rows []DerivedRow, fixtures []model.Fixture, arena *Arena, diag *Diagnostics) []ScheduledRow {
	counts := FixtureCounts(fixtures)

	calendarRounds := make(map[int]bool)
	teamRounds := make(map[int64][]int)
	for _, f := range fixtures {
		calendarRounds[f.Round] = true
	}
	for k := range counts {
		teamRounds[k.TeamID] = append(teamRounds[k.TeamID], k.Round)
	}

	out := make([]ScheduledRow, len(rows))
	missingRounds := make(map[int]bool)
	for i := range rows {
		r := &rows[i]
		if !calendarRounds[r.Round] {
			missingRounds[r.Round] = true
		}
		// 球队未关联上：赛程标记按 0 处理，不计入双赛/空轮
		if r.TeamID == 0 {
			out[i] = ScheduledRow{DerivedRow: *r}
			continue
		}
		n := counts[teamRoundKey{TeamID: r.TeamID, Round: r.Round}]
		sr := ScheduledRow{DerivedRow: *r, Fixtures: n}
		switch {
		case n > 1:
			sr.DoubleRound = 1
			diag.DoubleRounds++
		case n == 0:
			sr.BlankRound = 1
			diag.BlankRounds++
		}
		out[i] = sr
	}
	diag.RoundsMissingFromCalendar = len(missingRounds)

	// 球队有比赛但球员无记录的轮次：可能是没上场，也可能是赛程表多记了比赛
	for _, tl := range arena.Timelines {
		if len(tl.Rows) == 0 {
			continue
		}
		team := rows[tl.Rows[0]].TeamID
		if team == 0 {
			continue
		}
		played := make(map[int]bool, len(tl.Rounds))
		for _, rd := range tl.Rounds {
			played[rd] = true
		}
		for _, rd := range teamRounds[team] {
			if !played[rd] {
				diag.ScheduledWithoutAppearance++
			}
		}
	}
	return out
}
