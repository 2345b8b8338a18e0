// Package testutil 测试用的 sqlite 数据库与一个小型赛季数据集
package testutil

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Season 数据集的赛季
const Season = "2025"

// NewSQLiteDB 内存 sqlite；只开一个连接，保证所有语句落在同一个库
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// NewLogger 丢弃输出的 logger 及其 hook
func NewLogger() (*logrus.Logger, *logtest.Hook) {
	l, hook := logtest.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	return l, hook
}

type column struct {
	name    string
	sqlType string
}

// Table 一张源表：列定义 + 原始值（nil 表示空）
type Table struct {
	Name    string
	columns []column
	Rows    [][]interface{}
}

func (t *Table) columnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

type fixture struct {
	round      int
	home, away int64
	hg, ag     interface{}
}

// 4 支球队 6 轮：第 4 轮 2、3 队双赛，第 5 轮 2、3 队轮空，第 6 轮未赛
var fixtures = []fixture{
	{1, 1, 2, 2, 1}, {1, 3, 4, 0, 0},
	{2, 2, 1, 1, 1}, {2, 4, 3, 0, 2},
	{3, 1, 3, 3, 0}, {3, 2, 4, 1, 2},
	{4, 3, 1, 1, 1}, {4, 4, 2, 0, 1}, {4, 2, 3, 2, 2},
	{5, 1, 4, 1, 0},
	{6, 1, 2, nil, nil}, {6, 3, 4, nil, nil},
}

type player struct {
	id        int64
	team      int64
	position  int
	first     string
	second    string
	cost      int
	ownership string
	rounds    []int
}

var players = []player{
	{10, 1, 3, "Bukayo", "Saka", 100, "45.2", []int{1, 2, 3, 4, 5}},
	{11, 1, 1, "David", "Raya", 55, "20.1", []int{2, 3}},
	{20, 2, 4, "Erling", "Haaland", 140, "60.5", []int{1, 2, 3, 4}},
	{30, 3, 2, "Virgil", "van Dijk", 60, "n/a", []int{1, 3, 4}},
}

func opponent(team int64, round int) (int64, bool) {
	for _, f := range fixtures {
		if f.round != round {
			continue
		}
		if f.home == team {
			return f.away, true
		}
		if f.away == team {
			return f.home, false
		}
	}
	return 0, false
}

// SourceTables 数据集的四张源表
func SourceTables() []*Table {
	history := &Table{Name: "history_" + Season, columns: []column{
		{"element", "INTEGER"}, {"round", "INTEGER"}, {"opponent_team", "INTEGER"}, {"was_home", "BOOLEAN"},
		{"minutes", "INTEGER"}, {"total_points", "INTEGER"}, {"goals_scored", "INTEGER"}, {"assists", "INTEGER"},
		{"clean_sheets", "INTEGER"}, {"goals_conceded", "INTEGER"}, {"yellow_cards", "INTEGER"}, {"red_cards", "INTEGER"},
		{"saves", "INTEGER"}, {"influence", "TEXT"}, {"expected_goals", "TEXT"},
		{"transfers_in", "INTEGER"}, {"transfers_out", "INTEGER"},
	}}
	for _, p := range players {
		for _, r := range p.rounds {
			opp, home := opponent(p.team, r)
			seed := int(p.id) + r
			minutes := 90
			if seed%4 == 0 {
				minutes = 30
			}
			history.Rows = append(history.Rows, []interface{}{
				p.id, r, opp, home,
				minutes, seed % 9, seed % 2, (seed + 1) % 3,
				boolInt(seed%5 == 0), seed % 3, boolInt(seed%6 == 0), 0,
				boolInt(p.position == 1) * (seed % 4), fmt.Sprintf("%.1f", float64(seed)*1.5), fmt.Sprintf("%.2f", float64(seed%7)/10),
				1000 * seed, 100 * seed,
			})
		}
	}

	meta := &Table{Name: "players_" + Season, columns: []column{
		{"id", "INTEGER"}, {"team", "INTEGER"}, {"first_name", "TEXT"}, {"second_name", "TEXT"},
		{"now_cost", "INTEGER"}, {"selected_by_percent", "TEXT"}, {"element_type", "INTEGER"},
	}}
	for _, p := range players {
		meta.Rows = append(meta.Rows, []interface{}{p.id, p.team, p.first, p.second, p.cost, p.ownership, p.position})
	}

	fx := &Table{Name: "fixtures_" + Season, columns: []column{
		{"round", "INTEGER"}, {"home_team_id", "INTEGER"}, {"away_team_id", "INTEGER"},
		{"home_goals", "INTEGER"}, {"away_goals", "INTEGER"},
	}}
	for _, f := range fixtures {
		fx.Rows = append(fx.Rows, []interface{}{f.round, f.home, f.away, f.hg, f.ag})
	}
	return []*Table{history, meta, TeamStatsTable(), fx}
}

// TeamStatsTable 由已赛的比赛按 3/1/0 计分得到的 team_stats 表
func TeamStatsTable() *Table {
	ts := &Table{Name: "team_stats_" + Season, columns: []column{
		{"team_id", "INTEGER"}, {"round", "INTEGER"}, {"points", "REAL"},
		{"goals_scored", "REAL"}, {"goals_conceded", "REAL"}, {"fixtures", "INTEGER"},
	}}
	for _, f := range fixtures {
		if f.hg == nil {
			continue
		}
		hg, ag := f.hg.(int), f.ag.(int)
		ts.Rows = append(ts.Rows,
			[]interface{}{f.home, f.round, float64(points(hg, ag)), float64(hg), float64(ag), 1},
			[]interface{}{f.away, f.round, float64(points(ag, hg)), float64(ag), float64(hg), 1},
		)
	}
	return ts
}

func points(scored, conceded int) int {
	switch {
	case scored > conceded:
		return 3
	case scored == conceded:
		return 1
	}
	return 0
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SeedSQLite 建表并写入数据集；skip 中的表不写
func SeedSQLite(t testing.TB, db *gorm.DB, skip ...string) {
	t.Helper()
	for _, tbl := range SourceTables() {
		if contains(skip, tbl.Name) {
			continue
		}
		defs := make([]string, len(tbl.columns))
		for i, c := range tbl.columns {
			defs[i] = fmt.Sprintf("%q %s", c.name, c.sqlType)
		}
		require.NoError(t, db.Exec(fmt.Sprintf("CREATE TABLE %q (%s)", tbl.Name, strings.Join(defs, ", "))).Error)

		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(tbl.columns)), ", ")
		insert := fmt.Sprintf("INSERT INTO %q VALUES (%s)", tbl.Name, placeholders)
		for _, row := range tbl.Rows {
			require.NoError(t, db.Exec(insert, row...).Error)
		}
	}
}

// WriteCSV 把数据集写成 <dir>/<表名>.csv；skip 中的表不写
func WriteCSV(t testing.TB, dir string, skip ...string) {
	t.Helper()
	for _, tbl := range SourceTables() {
		if contains(skip, tbl.Name) {
			continue
		}
		f, err := os.Create(filepath.Join(dir, tbl.Name+".csv"))
		require.NoError(t, err)
		w := csv.NewWriter(f)
		require.NoError(t, w.Write(tbl.columnNames()))
		for _, row := range tbl.Rows {
			rec := make([]string, len(row))
			for i, v := range row {
				rec[i] = csvValue(v)
			}
			require.NoError(t, w.Write(rec))
		}
		w.Flush()
		require.NoError(t, w.Error())
		require.NoError(t, f.Close())
	}
}

func csvValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		if x {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(x)
	}
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
