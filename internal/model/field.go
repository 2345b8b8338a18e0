package model

// Field 行内数值字段名（与源表列名一致，连接阶段新增的字段见下方第二组）
type Field string

// 源表 history_{season} 中的逐轮计数字段
const (
	FieldMinutes                  Field = "minutes"
	FieldTotalPoints              Field = "total_points"
	FieldGoalsScored              Field = "goals_scored"
	FieldAssists                  Field = "assists"
	FieldCleanSheets              Field = "clean_sheets"
	FieldGoalsConceded            Field = "goals_conceded"
	FieldOwnGoals                 Field = "own_goals"
	FieldPenaltiesSaved           Field = "penalties_saved"
	FieldPenaltiesMissed          Field = "penalties_missed"
	FieldYellowCards              Field = "yellow_cards"
	FieldRedCards                 Field = "red_cards"
	FieldSaves                    Field = "saves"
	FieldBonus                    Field = "bonus"
	FieldBps                      Field = "bps"
	FieldInfluence                Field = "influence"
	FieldCreativity               Field = "creativity"
	FieldThreat                   Field = "threat"
	FieldIctIndex                 Field = "ict_index"
	FieldExpectedGoals            Field = "expected_goals"
	FieldExpectedAssists          Field = "expected_assists"
	FieldExpectedGoalInvolvements Field = "expected_goal_involvements"
	FieldExpectedGoalsConceded    Field = "expected_goals_conceded"
	FieldValue                    Field = "value"
	FieldTransfersIn              Field = "transfers_in"
	FieldTransfersOut             Field = "transfers_out"
	FieldSelected                 Field = "selected"
	FieldStarts                   Field = "starts"
)

// 连接阶段（Join）生成的字段
const (
	FieldGWPoints               Field = "gw_points"
	FieldStartFlag              Field = "start_flag"
	FieldFullMatchFlag          Field = "full_match_flag"
	FieldIsHome                 Field = "is_home"
	FieldPrice                  Field = "price"
	FieldPriceM                 Field = "price_m"
	FieldOwnership              Field = "ownership"
	FieldTeamPoints             Field = "team_points"
	FieldTeamGoalsScoredMatch   Field = "team_goals_scored_match"
	FieldTeamGoalsConcededMatch Field = "team_goals_conceded_match"
	FieldTeamCleanSheetMatch    Field = "team_clean_sheet_match"
	FieldOppPoints              Field = "opp_points"
	FieldOppGoalsScoredMatch    Field = "opp_goals_scored_match"
	FieldOppGoalsConcededMatch  Field = "opp_goals_conceded_match"
	FieldOppCleanSheetMatch     Field = "opp_clean_sheet_match"
)

// RecordFields history 表中识别的全部计数字段（加载器按此列表取列，不在列表中的列忽略）
var RecordFields = []Field{
	FieldMinutes, FieldTotalPoints, FieldGoalsScored, FieldAssists, FieldCleanSheets,
	FieldGoalsConceded, FieldOwnGoals, FieldPenaltiesSaved, FieldPenaltiesMissed,
	FieldYellowCards, FieldRedCards, FieldSaves, FieldBonus, FieldBps,
	FieldInfluence, FieldCreativity, FieldThreat, FieldIctIndex,
	FieldExpectedGoals, FieldExpectedAssists, FieldExpectedGoalInvolvements, FieldExpectedGoalsConceded,
	FieldValue, FieldTransfersIn, FieldTransfersOut, FieldSelected, FieldStarts,
}

// TeamContextFields 本队/对手比赛数据字段，缺失时在连接阶段补 0
var TeamContextFields = []Field{
	FieldTeamPoints, FieldTeamGoalsScoredMatch, FieldTeamGoalsConcededMatch, FieldTeamCleanSheetMatch,
	FieldOppPoints, FieldOppGoalsScoredMatch, FieldOppGoalsConcededMatch, FieldOppCleanSheetMatch,
}

// JoinedFields 连接阶段产生的全部字段
var JoinedFields = append([]Field{
	FieldGWPoints, FieldStartFlag, FieldFullMatchFlag, FieldIsHome,
	FieldPrice, FieldPriceM, FieldOwnership,
}, TeamContextFields...)

// IsKnownField 字段是否可以作为特征来源
func IsKnownField(f Field) bool {
	for _, x := range RecordFields {
		if x == f {
			return true
		}
	}
	for _, x := range JoinedFields {
		if x == f {
			return true
		}
	}
	return false
}
