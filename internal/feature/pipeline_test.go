package feature

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"RoundFeatures/internal/model"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineNoLeakage(t *testing.T) {
	res := runPipeline(t, DefaultOptions(), sampleSource())
	tbl := res.Table

	assert.Equal(t, 0.0, cell(t, tbl, 10, 1, "points_4"))
	assert.Equal(t, 2.0, cell(t, tbl, 10, 2, "points_4"))
	assert.Equal(t, 5.0, cell(t, tbl, 10, 5, "points_4"))
	assert.Equal(t, 7.0, cell(t, tbl, 10, 6, "points_4"))
	// gw_points 是当轮目标值，不前移
	assert.Equal(t, 10.0, cell(t, tbl, 10, 5, "gw_points"))
}

func TestPipelineDerivedFeatures(t *testing.T) {
	tbl := runPipeline(t, DefaultOptions(), sampleSource()).Table

	assert.InDelta(t, 6.0/180, cell(t, tbl, 10, 3, "ppm"), 1e-9)
	// 黄牌 1,0,1：第 3 轮只计入此前的 1 张
	assert.InDelta(t, 1.0/180, cell(t, tbl, 10, 3, "yellow_propensity"), 1e-9)
	assert.InDelta(t, 200/12.5, cell(t, tbl, 10, 3, "transfers_in_pct"), 1e-5)
	assert.Equal(t, 0.0, cell(t, tbl, 10, 1, "ppm"))
	assert.Equal(t, 0.0, cell(t, tbl, 10, 1, "transfers_in_pct"))

	// 此前出场时间为 0 但有得分：分母只剩 epsilon
	assert.InDelta(t, 1e6, cell(t, tbl, 20, 3, "ppm"), 1e-3)
}

func TestPipelineTeamContext(t *testing.T) {
	tbl := runPipeline(t, DefaultOptions(), sampleSource()).Table

	assert.Equal(t, 3.0, cell(t, tbl, 10, 2, "team_form_4"))
	assert.Equal(t, 0.0, cell(t, tbl, 10, 2, "opp_form_4"))
	assert.Equal(t, 2.0, cell(t, tbl, 10, 4, "opp_team_goals_conceded_10"))
	assert.Equal(t, 0.0, cell(t, tbl, 10, 4, "opp_clean_sheets_4"))
	assert.Equal(t, 1.0, cell(t, tbl, 20, 3, "opp_clean_sheets_4"))
	assert.Equal(t, 3.0, cell(t, tbl, 10, 6, "team_form_38"))
}

func TestPipelineRowsAndOrdering(t *testing.T) {
	src := sampleSource()
	src.Records = append(src.Records, rec(5, 2, 1, false, map[model.Field]float64{model.FieldMinutes: 10}))
	res := runPipeline(t, DefaultOptions(), src)

	require.Equal(t, len(src.Records), res.Table.Len())
	assert.Equal(t, res.Diagnostics.InputRows, res.Diagnostics.OutputRows)
	assert.Equal(t, 3, res.Diagnostics.Entities)
	assert.Equal(t, 1, res.Diagnostics.UnresolvedEntityMeta)

	for i := 1; i < len(res.Table.Keys); i++ {
		prev, cur := res.Table.Keys[i-1], res.Table.Keys[i]
		ordered := prev.EntityID < cur.EntityID || (prev.EntityID == cur.EntityID && prev.Round < cur.Round)
		assert.True(t, ordered, "第 %d 行顺序错误", i)
	}
	assert.Equal(t, RowKey{EntityID: 5, Round: 2}, res.Table.Keys[0])
}

func TestPipelineNullsFilledAtAssembly(t *testing.T) {
	src := sampleSource()
	src.Meta[0].Price = model.Null()
	res := runPipeline(t, DefaultOptions(), src)

	assert.Equal(t, 0.0, cell(t, res.Table, 10, 1, "price"))
	assert.Positive(t, res.Diagnostics.NullsFilled)
	for _, row := range res.Table.Rows {
		for j, c := range row {
			if !IsTextColumn(res.Table.Columns[j]) {
				assert.True(t, c.Num.Valid)
			}
		}
	}
}

func TestPipelineIsDeterministic(t *testing.T) {
	opts := DefaultOptions()
	base := runPipeline(t, opts, sampleSource())

	shuffled := sampleSource()
	rnd := rand.New(rand.NewSource(42))
	rnd.Shuffle(len(shuffled.Records), func(i, j int) {
		shuffled.Records[i], shuffled.Records[j] = shuffled.Records[j], shuffled.Records[i]
	})
	opts.Workers = 8
	other := runPipeline(t, opts, shuffled)

	var a, b bytes.Buffer
	require.NoError(t, base.Table.WriteCSV(&a))
	require.NoError(t, other.Table.WriteCSV(&b))
	assert.Equal(t, a.String(), b.String())

	sumA, err := base.Table.Checksum()
	require.NoError(t, err)
	sumB, err := other.Table.Checksum()
	require.NoError(t, err)
	assert.Equal(t, sumA, sumB)
	assert.True(t, strings.HasPrefix(a.String(), "entity_id,round,team_id,"))
}

func TestPipelineAbortsOnDuplicateRound(t *testing.T) {
	src := sampleSource()
	src.Records = append(src.Records, rec(10, 3, 2, true, nil))

	logger, hook := logtest.NewNullLogger()
	p, err := NewPipeline(DefaultOptions(), logger)
	require.NoError(t, err)
	res, err := p.Run(context.Background(), src)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrStructural))
	assert.Empty(t, hook.AllEntries(), "失败时不输出完成日志")
}

func TestPipelineHonorsCancellation(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	p, err := NewPipeline(DefaultOptions(), logger)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Run(ctx, sampleSource())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipelineLogsMissingColumns(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	p, err := NewPipeline(DefaultOptions(), logger)
	require.NoError(t, err)
	res, err := p.Run(context.Background(), sampleSource())
	require.NoError(t, err)

	assert.Contains(t, res.Diagnostics.MissingColumns, "saves")
	assert.NotContains(t, res.Diagnostics.MissingColumns, "expected_goals")
	assert.Equal(t, 0.0, cell(t, res.Table, 10, 3, "saves_4"))

	var warned bool
	for _, e := range hook.AllEntries() {
		if _, ok := e.Data["columns"]; ok {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestOptionsValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(o *Options)
	}{
		{"zero epsilon", func(o *Options) { o.Epsilon = 0 }},
		{"no columns", func(o *Options) { o.Columns = nil }},
		{"bad window", func(o *Options) { o.Windows = append(o.Windows, -2) }},
		{"unknown column", func(o *Options) { o.Columns = append(o.Columns, "form_99") }},
		{"duplicate column", func(o *Options) { o.Columns = append(o.Columns, "ppm") }},
		{"window outside set", func(o *Options) {
			o.Specs = append(o.Specs, model.FeatureSpec{Name: "points_5", Source: model.FieldGWPoints, Window: 5, Kind: model.KindMean})
		}},
		{"unknown source", func(o *Options) {
			o.Specs = append(o.Specs, model.FeatureSpec{Name: "x_4", Source: "web_name", Window: 4, Kind: model.KindMean})
		}},
		{"unknown kind", func(o *Options) {
			o.Specs = append(o.Specs, model.FeatureSpec{Name: "x_4", Source: model.FieldMinutes, Window: 4, Kind: "median"})
		}},
		{"duplicate spec", func(o *Options) { o.Specs = append(o.Specs, o.Specs[0]) }},
		{"dangling ratio", func(o *Options) {
			o.Ratios = append(o.Ratios, model.RatioSpec{Name: "r", Numerator: "nope", Denominator: "cum_minutes_prev"})
		}},
		{"ratio shadows feature", func(o *Options) {
			o.Ratios = append(o.Ratios, model.RatioSpec{Name: "points_4", Numerator: "points_4", Denominator: "minutes_4"})
		}},
	}
	require.NoError(t, DefaultOptions().Validate())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := DefaultOptions()
			tc.mutate(&o)
			err := o.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidOptions))
		})
	}
}
