package feature

import (
	"sort"

	"RoundFeatures/internal/model"
)

type columnFunc func(r *ScheduledRow) Cell

func numCell(v model.NullFloat) Cell { return Cell{Num: v} }

func intCell[T int | int64](v T) Cell { return Cell{Num: model.Float(float64(v))} }

// resolveColumn 输出列名 → 取值函数。查找顺序：标识列、赛程标记、派生比率、时序特征、行字段
func resolveColumn(name string, features, ratios map[string]bool) (columnFunc, bool) {
	switch name {
	case model.ColumnEntityID:
		return func(r *ScheduledRow) Cell { return intCell(r.EntityID) }, true
	case model.ColumnRound:
		return func(r *ScheduledRow) Cell { return intCell(r.Round) }, true
	case model.ColumnTeamID:
		return func(r *ScheduledRow) Cell { return intCell(r.TeamID) }, true
	case model.ColumnOppTeamID:
		return func(r *ScheduledRow) Cell { return intCell(r.OpponentTeamID) }, true
	case model.ColumnPosition:
		return func(r *ScheduledRow) Cell { return intCell(r.Position) }, true
	case model.ColumnName:
		return func(r *ScheduledRow) Cell { return Cell{Text: r.Name, IsText: true} }, true
	case model.ColumnDoubleRound:
		return func(r *ScheduledRow) Cell { return intCell(r.DoubleRound) }, true
	case model.ColumnBlankRound:
		return func(r *ScheduledRow) Cell { return intCell(r.BlankRound) }, true
	}
	if ratios[name] {
		return func(r *ScheduledRow) Cell { return numCell(r.Ratios[name]) }, true
	}
	if features[name] {
		return func(r *ScheduledRow) Cell { return numCell(r.Features[name]) }, true
	}
	if f := model.Field(name); model.IsKnownField(f) {
		return func(r *ScheduledRow) Cell { return numCell(r.Values[f]) }, true
	}
	return nil, false
}

func nameSet[T any](items []T, name func(T) string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[name(it)] = true
	}
	return set
}

// Assemble 按配置列顺序输出，行按 (entity_id, round) 排序。
// 这是唯一一处无条件补 0 的地方：此前各阶段的缺省策略都已执行完毕。
func Assemble(rows []ScheduledRow, columns []string, specs []model.FeatureSpec, ratios []model.RatioSpec, diag *Diagnostics) (*Table, error) {
	featureNames := nameSet(specs, func(s model.FeatureSpec) string { return s.Name })
	ratioNames := nameSet(ratios, func(s model.RatioSpec) string { return s.Name })

	funcs := make([]columnFunc, len(columns))
	for i, c := range columns {
		fn, ok := resolveColumn(c, featureNames, ratioNames)
		if !ok {
			return nil, invalidOptions("未知输出列 %q", c)
		}
		funcs[i] = fn
	}

	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := &rows[order[a]], &rows[order[b]]
		if ra.EntityID != rb.EntityID {
			return ra.EntityID < rb.EntityID
		}
		return ra.Round < rb.Round
	})

	t := &Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]Cell, 0, len(rows)),
		Keys:    make([]RowKey, 0, len(rows)),
	}
	for _, idx := range order {
		r := &rows[idx]
		cells := make([]Cell, len(funcs))
		for j, fn := range funcs {
			c := fn(r)
			if !c.IsText && !c.Num.Valid {
				c.Num = model.Float(0)
				diag.NullsFilled++
			}
			cells[j] = c
		}
		t.Rows = append(t.Rows, cells)
		t.Keys = append(t.Keys, RowKey{EntityID: r.EntityID, Round: r.Round, Position: r.Position})
	}
	diag.OutputRows = t.Len()
	return t, nil
}
