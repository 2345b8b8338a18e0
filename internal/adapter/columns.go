package adapter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"RoundFeatures/internal/model"
)

// Row 一行原始数据。数据库加载器的值为驱动返回的原生类型，CSV 加载器的值全部是 string
type Row map[string]interface{}

// 各源表列名别名，按优先级排列
var (
	colEntity       = []string{"element", "entity_id", "id"}
	colRound        = []string{"round", "gw", "event"}
	colOpponent     = []string{"opponent_team", "opp_team_id"}
	colWasHome      = []string{"was_home", "is_home"}
	colMetaEntity   = []string{"id", "element", "entity_id"}
	colTeam         = []string{"team", "team_id"}
	colPrice        = []string{"now_cost", "price"}
	colOwnership    = []string{"selected_by_percent", "ownership"}
	colPosition     = []string{"element_type", "position"}
	colTeamID       = []string{"team_id", "team"}
	colPoints       = []string{"points"}
	colGoalsScored  = []string{"goals_scored", "goals_for"}
	colGoalsAgainst = []string{"goals_conceded", "goals_against"}
	colHomeTeam     = []string{"home_team_id", "team_h"}
	colAwayTeam     = []string{"away_team_id", "team_a"}
	colHomeGoals    = []string{"home_goals", "team_h_score"}
	colAwayGoals    = []string{"away_goals", "team_a_score"}
)

func (r Row) lookup(keys []string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// Int 必填整数列；缺列、空值或非整数均报错
func (r Row) Int(keys []string) (int64, error) {
	v, ok := r.lookup(keys)
	if !ok {
		return 0, fmt.Errorf("缺少列 %s", keys[0])
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("列 %s: %w", keys[0], err)
	}
	return n, nil
}

func toInt(v interface{}) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, fmt.Errorf("值为空")
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("非整数 %v", x)
		}
		return int64(x), nil
	case []byte:
		return parseIntText(string(x))
	case string:
		return parseIntText(x)
	default:
		return 0, fmt.Errorf("不支持的类型 %T", v)
	}
}

func parseIntText(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	// pandas 导出的整数列常带 .0
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("无法解析整数 %q", s)
	}
	return int64(f), nil
}

// Bool 布尔列；缺失或无法识别按 false
func (r Row) Bool(keys []string) bool {
	v, _ := r.lookup(keys)
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	case []byte:
		return parseBoolText(string(x))
	case string:
		return parseBoolText(x)
	}
	return false
}

func parseBoolText(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return b
}

// Num 可空数值列
func (r Row) Num(keys []string) model.NullFloat {
	v, _ := r.lookup(keys)
	return model.ParseNullFloat(v)
}

// Text 文本列
func (r Row) Text(keys ...string) string {
	v, _ := r.lookup(keys)
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case []byte:
		return strings.TrimSpace(string(x))
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

// ToEntityRecord history 行 → EntityRecord。只收录源表中实际存在的计数列
func ToEntityRecord(r Row) (model.EntityRecord, error) {
	var rec model.EntityRecord
	var err error
	if rec.EntityID, err = r.Int(colEntity); err != nil {
		return rec, err
	}
	round, err := r.Int(colRound)
	if err != nil {
		return rec, err
	}
	rec.Round = int(round)
	if _, ok := r.lookup(colOpponent); ok {
		if rec.OpponentTeamID, err = r.Int(colOpponent); err != nil {
			return rec, err
		}
	}
	rec.WasHome = r.Bool(colWasHome)
	rec.Stats = make(map[model.Field]model.NullFloat, len(model.RecordFields))
	for _, f := range model.RecordFields {
		if v, ok := r[string(f)]; ok {
			rec.Stats[f] = model.ParseNullFloat(v)
		}
	}
	return rec, nil
}

// ToEntityMeta players 行 → EntityMeta
func ToEntityMeta(r Row) (model.EntityMeta, error) {
	var m model.EntityMeta
	var err error
	if m.EntityID, err = r.Int(colMetaEntity); err != nil {
		return m, err
	}
	if m.TeamID, err = r.Int(colTeam); err != nil {
		return m, err
	}
	m.Price = r.Num(colPrice)
	m.Ownership = r.Num(colOwnership)
	if pos, err := r.Int(colPosition); err == nil {
		m.Position = int(pos)
	}
	m.Name = r.Text("name")
	if m.Name == "" {
		m.Name = strings.TrimSpace(r.Text("first_name") + " " + r.Text("second_name"))
	}
	if m.Name == "" {
		m.Name = r.Text("web_name")
	}
	return m, nil
}

// ToTeamMatchStat team_stats 行 → TeamMatchStat
func ToTeamMatchStat(r Row) (model.TeamMatchStat, error) {
	var s model.TeamMatchStat
	var err error
	if s.TeamID, err = r.Int(colTeamID); err != nil {
		return s, err
	}
	round, err := r.Int(colRound)
	if err != nil {
		return s, err
	}
	s.Round = int(round)
	s.Points = r.Num(colPoints)
	s.GoalsScored = r.Num(colGoalsScored)
	s.GoalsConceded = r.Num(colGoalsAgainst)
	return s, nil
}

// ToFixture fixtures 行 → Fixture
func ToFixture(r Row) (model.Fixture, error) {
	var f model.Fixture
	round, err := r.Int(colRound)
	if err != nil {
		return f, err
	}
	f.Round = int(round)
	if f.HomeTeamID, err = r.Int(colHomeTeam); err != nil {
		return f, err
	}
	if f.AwayTeamID, err = r.Int(colAwayTeam); err != nil {
		return f, err
	}
	f.HomeGoals = r.Num(colHomeGoals)
	f.AwayGoals = r.Num(colAwayGoals)
	return f, nil
}

// BuildSourceTables 把四张表的原始行转换为 SourceTables；任何一行转换失败即返回错误
func BuildSourceTables(season string, records, meta, teamStats, fixtures []Row) (*model.SourceTables, error) {
	src := &model.SourceTables{
		Season:    season,
		Records:   make([]model.EntityRecord, 0, len(records)),
		Meta:      make([]model.EntityMeta, 0, len(meta)),
		TeamStats: make([]model.TeamMatchStat, 0, len(teamStats)),
		Fixtures:  make([]model.Fixture, 0, len(fixtures)),
	}
	for i, r := range records {
		rec, err := ToEntityRecord(r)
		if err != nil {
			return nil, fmt.Errorf("history 第%d行: %w", i+1, err)
		}
		src.Records = append(src.Records, rec)
	}
	for i, r := range meta {
		m, err := ToEntityMeta(r)
		if err != nil {
			return nil, fmt.Errorf("players 第%d行: %w", i+1, err)
		}
		src.Meta = append(src.Meta, m)
	}
	for i, r := range teamStats {
		s, err := ToTeamMatchStat(r)
		if err != nil {
			return nil, fmt.Errorf("team_stats 第%d行: %w", i+1, err)
		}
		src.TeamStats = append(src.TeamStats, s)
	}
	for i, r := range fixtures {
		f, err := ToFixture(r)
		if err != nil {
			return nil, fmt.Errorf("fixtures 第%d行: %w", i+1, err)
		}
		src.Fixtures = append(src.Fixtures, f)
	}
	return src, nil
}
