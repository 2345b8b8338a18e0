package model

// EntityRecord 单个球员单轮的比赛记录（history_{season} 一行）
// Stats 只包含源表实际存在的列：列缺失时 key 不存在，单元格为空时 Valid=false
type EntityRecord struct {
	EntityID       int64
	Round          int
	OpponentTeamID int64
	WasHome        bool
	Stats          map[Field]NullFloat
}

// EntityMeta 球员赛季静态信息（players_{season} 一行）
type EntityMeta struct {
	EntityID  int64
	TeamID    int64
	Price     NullFloat // now_cost，单位 0.1
	Ownership NullFloat // selected_by_percent，源数据可能是文本
	Position  int       // element_type：1=GK 2=DEF 3=MID 4=FWD
	Name      string
}

// TeamMatchStat 球队单轮比赛结果（team_stats_{season} 一行）
type TeamMatchStat struct {
	TeamID        int64
	Round         int
	Points        NullFloat
	GoalsScored   NullFloat
	GoalsConceded NullFloat
}

// Fixture 赛程中的一场比赛；HomeGoals/AwayGoals 未赛时为空
type Fixture struct {
	Round      int
	HomeTeamID int64
	AwayTeamID int64
	HomeGoals  NullFloat
	AwayGoals  NullFloat
}

// Played 是否已有比分
func (f Fixture) Played() bool {
	return f.HomeGoals.Valid && f.AwayGoals.Valid
}

// SourceTables 一次构建所需的全部输入，加载完成后只读
type SourceTables struct {
	Season    string
	Records   []EntityRecord
	Meta      []EntityMeta
	TeamStats []TeamMatchStat
	Fixtures  []Fixture
}
