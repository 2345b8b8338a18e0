package feature

import "sort"

// Diagnostics 单次构建的诊断计数。所有可恢复问题（缺列、关联不上、非数值）都只计数不中断
type Diagnostics struct {
	InputRows                  int      `json:"input_rows"`
	OutputRows                 int      `json:"output_rows"`
	Entities                   int      `json:"entities"`
	MissingColumns             []string `json:"missing_columns"`
	UnresolvedEntityMeta       int      `json:"unresolved_entity_meta"`
	UnresolvedTeamStat         int      `json:"unresolved_team_stat"`
	UnresolvedOpponentStat     int      `json:"unresolved_opponent_stat"`
	NonNumericValues           int      `json:"non_numeric_values"`
	NullsFilled                int      `json:"nulls_filled"`
	DoubleRounds               int      `json:"double_rounds"`
	BlankRounds                int      `json:"blank_rounds"`
	ScheduledWithoutAppearance int      `json:"scheduled_without_appearance"`
	RoundsMissingFromCalendar  int      `json:"rounds_missing_from_calendar"`
}

func (d *Diagnostics) addMissingColumn(name string) {
	for _, c := range d.MissingColumns {
		if c == name {
			return
		}
	}
	d.MissingColumns = append(d.MissingColumns, name)
	sort.Strings(d.MissingColumns)
}

// Counters 以 kind→count 形式导出，供指标上报
func (d *Diagnostics) Counters() map[string]int {
	return map[string]int{
		"missing_column":               len(d.MissingColumns),
		"unresolved_entity_meta":       d.UnresolvedEntityMeta,
		"unresolved_team_stat":         d.UnresolvedTeamStat,
		"unresolved_opponent_stat":     d.UnresolvedOpponentStat,
		"non_numeric_value":            d.NonNumericValues,
		"null_filled":                  d.NullsFilled,
		"double_round":                 d.DoubleRounds,
		"blank_round":                  d.BlankRounds,
		"scheduled_without_appearance": d.ScheduledWithoutAppearance,
		"round_missing_from_calendar":  d.RoundsMissingFromCalendar,
	}
}
