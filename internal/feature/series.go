package feature

import (
	"sort"

	"RoundFeatures/internal/model"
)

// Series 单个球员某个字段按轮次升序排列的 (round, value) 序列。
// 所有查询都以下标 i 表示“当前轮”，Prior* 系列只读取 i 之前的元素。
type Series struct {
	rounds []int
	values []model.NullFloat
	sums   []float64 // sums[i] = values[0..i) 有效值之和
	counts []int     // counts[i] = values[0..i) 有效值个数
}

// NewSeries rounds 必须已严格递增（由 Timeline 保证）
func NewSeries(rounds []int, values []model.NullFloat) *Series {
	s := &Series{
		rounds: rounds,
		values: values,
		sums:   make([]float64, len(values)+1),
		counts: make([]int, len(values)+1),
	}
	for i, v := range values {
		s.sums[i+1] = s.sums[i]
		s.counts[i+1] = s.counts[i]
		if v.Valid {
			s.sums[i+1] += v.Float64
			s.counts[i+1]++
		}
	}
	return s
}

func (s *Series) Len() int { return len(s.values) }

func (s *Series) Round(i int) int { return s.rounds[i] }

// windowStart 窗口 [lo, i)；window<=0 表示从第一轮开始
func windowStart(i, window int) int {
	if window <= 0 || i-window < 0 {
		return 0
	}
	return i - window
}

// PriorMean 当前轮之前最多 window 轮的有效值均值；没有任何有效值时 ok=false
func (s *Series) PriorMean(i, window int) (float64, bool) {
	lo := windowStart(i, window)
	if lo == 0 {
		if s.counts[i] == 0 {
			return 0, false
		}
		return s.sums[i] / float64(s.counts[i]), true
	}
	var sum float64
	var n int
	for _, v := range s.values[lo:i] {
		if v.Valid {
			sum += v.Float64
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// PriorSum 当前轮之前最多 window 轮的有效值之和
func (s *Series) PriorSum(i, window int) float64 {
	lo := windowStart(i, window)
	if lo == 0 {
		return s.sums[i]
	}
	var sum float64
	for _, v := range s.values[lo:i] {
		if v.Valid {
			sum += v.Float64
		}
	}
	return sum
}

// CumSum 包含当前轮的累计和
func (s *Series) CumSum(i int) float64 {
	return s.sums[i+1]
}

// Prior 上一轮的取值；首轮返回缺失
func (s *Series) Prior(i int) model.NullFloat {
	if i == 0 {
		return model.Null()
	}
	return s.values[i-1]
}

// Timeline 单个球员的行下标，按轮次升序
type Timeline struct {
	EntityID int64
	Rounds   []int
	Rows     []int // 指向 JoinedRow 切片的下标
}

// Arena 全部球员的时间线，按 entity_id 升序，index 用于按 id 查找
type Arena struct {
	Timelines []*Timeline
	index     map[int64]int
}

// Get 按 entity_id 取时间线
func (a *Arena) Get(entityID int64) (*Timeline, bool) {
	i, ok := a.index[entityID]
	if !ok {
		return nil, false
	}
	return a.Timelines[i], true
}

// BuildArena 按球员分组并按轮次排序；同一轮重复或排序后非严格递增直接报错
func BuildArena(rows []JoinedRow) (*Arena, error) {
	a := &Arena{index: make(map[int64]int)}
	for i, r := range rows {
		idx, ok := a.index[r.EntityID]
		if !ok {
			idx = len(a.Timelines)
			a.index[r.EntityID] = idx
			a.Timelines = append(a.Timelines, &Timeline{EntityID: r.EntityID})
		}
		a.Timelines[idx].Rows = append(a.Timelines[idx].Rows, i)
	}

	sort.Slice(a.Timelines, func(i, j int) bool { return a.Timelines[i].EntityID < a.Timelines[j].EntityID })
	for i, tl := range a.Timelines {
		a.index[tl.EntityID] = i
		sort.SliceStable(tl.Rows, func(x, y int) bool { return rows[tl.Rows[x]].Round < rows[tl.Rows[y]].Round })
		tl.Rounds = make([]int, len(tl.Rows))
		for k, ri := range tl.Rows {
			tl.Rounds[k] = rows[ri].Round
			if k == 0 {
				continue
			}
			prev := tl.Rounds[k-1]
			switch {
			case tl.Rounds[k] == prev:
				return nil, &DuplicateKeyError{EntityID: tl.EntityID, Round: prev}
			case tl.Rounds[k] < prev:
				return nil, &OrderingError{EntityID: tl.EntityID, Prev: prev, Next: tl.Rounds[k]}
			}
		}
	}
	return a, nil
}

// SeriesOf 取时间线上某个字段的序列；present=false 时按缺列处理，整列补 0
func (tl *Timeline) SeriesOf(rows []JoinedRow, field model.Field, present bool) *Series {
	values := make([]model.NullFloat, len(tl.Rows))
	for k, ri := range tl.Rows {
		if !present {
			values[k] = model.Float(0)
			continue
		}
		values[k] = rows[ri].Values[field]
	}
	return NewSeries(tl.Rounds, values)
}
