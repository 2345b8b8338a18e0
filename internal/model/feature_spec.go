package model

// AggKind 聚合方式
type AggKind string

const (
	// KindMean 前移滚动均值：只用当前轮之前的 Window 轮，允许不满窗口
	KindMean AggKind = "mean"
	// KindSum 前移累计和：Window=0 为赛季至今，>0 为最近 Window 轮
	KindSum AggKind = "sum"
	// KindCumSum 不前移累计和（包含当前轮），仅作为派生指标的中间量
	KindCumSum AggKind = "cumsum"
	// KindLag 上一轮的取值
	KindLag AggKind = "lag"
)

// Valid 是否为已知聚合方式
func (k AggKind) Valid() bool {
	switch k {
	case KindMean, KindSum, KindCumSum, KindLag:
		return true
	}
	return false
}

// FeatureSpec 单个时序特征的定义
type FeatureSpec struct {
	Name    string  `mapstructure:"name" json:"name"`
	Source  Field   `mapstructure:"source" json:"source"`
	Window  int     `mapstructure:"window" json:"window"`
	Kind    AggKind `mapstructure:"kind" json:"kind"`
	Default float64 `mapstructure:"default" json:"default"` // 无任何历史轮次时的取值
}

// RatioSpec 派生比率：(Numerator - 当前轮 MinusCurrent) / (Denominator + epsilon)
// Numerator/Denominator 引用 FeatureSpec.Name
type RatioSpec struct {
	Name         string `mapstructure:"name" json:"name"`
	Numerator    string `mapstructure:"numerator" json:"numerator"`
	Denominator  string `mapstructure:"denominator" json:"denominator"`
	MinusCurrent Field  `mapstructure:"minus_current" json:"minus_current,omitempty"`
}

// PositionView 按位置拆分的输出表及其剔除列
type PositionView struct {
	Position int      `mapstructure:"position" json:"position"`
	Name     string   `mapstructure:"name" json:"name"`
	Drop     []string `mapstructure:"drop" json:"drop"`
}

// 标识列与赛程标记列
const (
	ColumnEntityID    = "entity_id"
	ColumnRound       = "round"
	ColumnTeamID      = "team_id"
	ColumnOppTeamID   = "opp_team_id"
	ColumnPosition    = "position"
	ColumnName        = "name"
	ColumnDoubleRound = "double_round"
	ColumnBlankRound  = "blank_round"
)

// DefaultWindows 默认窗口：近期状态 4、中期 10、赛季 38
var DefaultWindows = []int{4, 10, 38}

// DefaultEpsilon 比率分母保护常量
const DefaultEpsilon = 1e-6

func mean(name string, src Field, window int) FeatureSpec {
	return FeatureSpec{Name: name, Source: src, Window: window, Kind: KindMean}
}

// DefaultFeatureSpecs 默认时序特征集
func DefaultFeatureSpecs() []FeatureSpec {
	return []FeatureSpec{
		mean("starts_4", FieldStartFlag, 4),
		mean("full_match_4", FieldFullMatchFlag, 4),
		mean("points_4", FieldGWPoints, 4),
		mean("points_10", FieldGWPoints, 10),
		mean("minutes_4", FieldMinutes, 4),
		mean("minutes_10", FieldMinutes, 10),
		mean("clean_sheets_4", FieldCleanSheets, 4),
		mean("clean_sheets_10", FieldCleanSheets, 10),
		mean("saves_4", FieldSaves, 4),
		mean("saves_10", FieldSaves, 10),
		mean("influence_4", FieldInfluence, 4),
		mean("creativity_4", FieldCreativity, 4),
		mean("threat_4", FieldThreat, 4),
		mean("ict_index_4", FieldIctIndex, 4),
		mean("xg_4", FieldExpectedGoals, 4),
		mean("xg_10", FieldExpectedGoals, 10),
		mean("xa_4", FieldExpectedAssists, 4),
		mean("xa_10", FieldExpectedAssists, 10),
		mean("xg_involvements_4", FieldExpectedGoalInvolvements, 4),
		mean("xg_involvements_10", FieldExpectedGoalInvolvements, 10),
		mean("xg_conceded_4", FieldExpectedGoalsConceded, 4),
		mean("xg_conceded_10", FieldExpectedGoalsConceded, 10),
		mean("team_form_4", FieldTeamPoints, 4),
		mean("team_form_10", FieldTeamPoints, 10),
		mean("team_form_38", FieldTeamPoints, 38),
		mean("opp_form_4", FieldOppPoints, 4),
		mean("opp_form_10", FieldOppPoints, 10),
		mean("opp_form_38", FieldOppPoints, 38),
		mean("team_goals_scored_10", FieldTeamGoalsScoredMatch, 10),
		mean("team_goals_conceded_10", FieldTeamGoalsConcededMatch, 10),
		mean("opp_clean_sheets_4", FieldOppCleanSheetMatch, 4),
		mean("opp_clean_sheets_10", FieldOppCleanSheetMatch, 10),
		mean("opp_team_goals_scored_10", FieldOppGoalsScoredMatch, 10),
		mean("opp_team_goals_conceded_10", FieldOppGoalsConcededMatch, 10),

		{Name: "penalties_saved_38", Source: FieldPenaltiesSaved, Window: 38, Kind: KindSum},
		{Name: "penalties_missed_38", Source: FieldPenaltiesMissed, Window: 38, Kind: KindSum},
		{Name: "cum_minutes_prev", Source: FieldMinutes, Kind: KindSum},
		{Name: "cum_points_prev", Source: FieldGWPoints, Kind: KindSum},

		{Name: "cum_yellow", Source: FieldYellowCards, Kind: KindCumSum},
		{Name: "cum_red", Source: FieldRedCards, Kind: KindCumSum},
		{Name: "cum_minutes", Source: FieldMinutes, Kind: KindCumSum},

		{Name: "transfers_in_prev", Source: FieldTransfersIn, Kind: KindLag},
		{Name: "transfers_out_prev", Source: FieldTransfersOut, Kind: KindLag},
		{Name: "ownership_prev", Source: FieldOwnership, Kind: KindLag},
	}
}

// DefaultRatioSpecs 默认派生比率
func DefaultRatioSpecs() []RatioSpec {
	return []RatioSpec{
		{Name: "ppm", Numerator: "cum_points_prev", Denominator: "cum_minutes_prev"},
		{Name: "yellow_propensity", Numerator: "cum_yellow", Denominator: "cum_minutes_prev", MinusCurrent: FieldYellowCards},
		{Name: "red_propensity", Numerator: "cum_red", Denominator: "cum_minutes_prev", MinusCurrent: FieldRedCards},
		{Name: "transfers_in_pct", Numerator: "transfers_in_prev", Denominator: "ownership_prev"},
		{Name: "transfers_out_pct", Numerator: "transfers_out_prev", Denominator: "ownership_prev"},
	}
}

// DefaultOutputColumns 默认输出列及顺序（下游按名称/位置绑定，不要随意调整）
func DefaultOutputColumns() []string {
	return []string{
		ColumnEntityID, ColumnRound, ColumnTeamID, ColumnOppTeamID, ColumnPosition, ColumnName,
		"price", "ownership", "gw_points",
		"starts_4", "full_match_4", "ppm",
		"points_4", "points_10", "minutes_4", "minutes_10",
		"clean_sheets_4", "clean_sheets_10",
		"saves_4", "saves_10",
		"penalties_saved_38", "penalties_missed_38",
		"yellow_propensity", "red_propensity",
		"influence_4", "creativity_4", "threat_4", "ict_index_4",
		"xg_4", "xg_10", "xa_4", "xa_10",
		"xg_involvements_4", "xg_involvements_10",
		"xg_conceded_4", "xg_conceded_10",
		"team_form_4", "team_form_10", "team_form_38",
		"opp_form_4", "opp_form_10", "opp_form_38",
		"team_goals_scored_10", "team_goals_conceded_10",
		"opp_clean_sheets_4", "opp_clean_sheets_10",
		"opp_team_goals_scored_10", "opp_team_goals_conceded_10",
		"transfers_in_pct", "transfers_out_pct",
		ColumnDoubleRound, ColumnBlankRound, "is_home",
	}
}

// DefaultPositionViews 按位置拆分的默认剔除列
func DefaultPositionViews() []PositionView {
	return []PositionView{
		{Position: 1, Name: "GK", Drop: []string{
			"full_match_4", "red_propensity", "penalties_missed_38",
			"threat_4", "xg_4", "xg_10", "team_goals_scored_10", ColumnBlankRound,
		}},
		{Position: 2, Name: "DEF", Drop: []string{
			ColumnBlankRound, "saves_4", "saves_10", "penalties_saved_38", "penalties_missed_38",
		}},
		{Position: 3, Name: "MID", Drop: []string{ColumnBlankRound, "saves_4", "saves_10", "penalties_saved_38"}},
		{Position: 4, Name: "FWD", Drop: []string{ColumnBlankRound, "saves_4", "saves_10", "penalties_saved_38"}},
	}
}
