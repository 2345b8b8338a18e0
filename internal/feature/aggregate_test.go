package feature

import (
	"context"
	"testing"

	"RoundFeatures/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aggregate(t *testing.T, src *model.SourceTables, specs []model.FeatureSpec, workers int) ([]AggregatedRow, *Diagnostics) {
	t.Helper()
	diag := &Diagnostics{}
	rows := Join(src, diag)
	arena, err := BuildArena(rows)
	require.NoError(t, err)
	out, err := NewAggregator(specs, workers).Run(context.Background(), rows, arena, diag)
	require.NoError(t, err)
	return out, diag
}

func featureAt(rows []AggregatedRow, entity int64, round int, name string) model.NullFloat {
	for _, r := range rows {
		if r.EntityID == entity && r.Round == round {
			return r.Features[name]
		}
	}
	return model.Null()
}

func TestAggregatorKinds(t *testing.T) {
	specs := []model.FeatureSpec{
		{Name: "points_4", Source: model.FieldGWPoints, Window: 4, Kind: model.KindMean},
		{Name: "cum_points_prev", Source: model.FieldGWPoints, Kind: model.KindSum},
		{Name: "cum_minutes", Source: model.FieldMinutes, Kind: model.KindCumSum},
		{Name: "transfers_in_prev", Source: model.FieldTransfersIn, Kind: model.KindLag},
	}
	rows, _ := aggregate(t, sampleSource(), specs, 1)

	assert.Equal(t, model.Float(0), featureAt(rows, 10, 1, "points_4"), "首轮取默认值")
	assert.Equal(t, model.Float(5), featureAt(rows, 10, 5, "points_4"))
	assert.Equal(t, model.Float(20), featureAt(rows, 10, 5, "cum_points_prev"))
	assert.Equal(t, model.Float(450), featureAt(rows, 10, 5, "cum_minutes"))
	assert.Equal(t, model.Float(400), featureAt(rows, 10, 5, "transfers_in_prev"))
	assert.Equal(t, model.Float(0), featureAt(rows, 10, 1, "transfers_in_prev"))
}

func TestAggregatorUsesAppearanceOrderNotRoundNumbers(t *testing.T) {
	specs := []model.FeatureSpec{{Name: "points_4", Source: model.FieldGWPoints, Window: 4, Kind: model.KindMean}}
	rows, _ := aggregate(t, sampleSource(), specs, 1)

	// 球员 20 出场轮次 2,3,5（输入乱序）：第 5 轮的窗口是第 2、3 轮
	assert.Equal(t, model.Float(0), featureAt(rows, 20, 2, "points_4"))
	assert.Equal(t, model.Float(1), featureAt(rows, 20, 5, "points_4"))
}

func TestAggregatorDefaultForDebut(t *testing.T) {
	specs := []model.FeatureSpec{{Name: "minutes_4", Source: model.FieldMinutes, Window: 4, Kind: model.KindMean, Default: -1}}
	rows, _ := aggregate(t, sampleSource(), specs, 1)
	assert.Equal(t, model.Float(-1), featureAt(rows, 10, 1, "minutes_4"))
	assert.Equal(t, model.Float(90), featureAt(rows, 10, 2, "minutes_4"))
}

func TestAggregatorMissingColumnIsZeroFilled(t *testing.T) {
	specs := []model.FeatureSpec{{Name: "saves_4", Source: model.FieldSaves, Window: 4, Kind: model.KindMean}}
	rows, diag := aggregate(t, sampleSource(), specs, 1)

	assert.Equal(t, []string{"saves"}, diag.MissingColumns)
	assert.Equal(t, model.Float(0), featureAt(rows, 10, 4, "saves_4"))
}

func TestAggregatorParallelMatchesSerial(t *testing.T) {
	src := sampleSource()
	for e := int64(100); e < 140; e++ {
		for r := 1; r <= 8; r++ {
			src.Records = append(src.Records, rec(e, r, 2, r%2 == 0, map[model.Field]float64{
				model.FieldTotalPoints: float64((int(e) * r) % 13),
				model.FieldMinutes:     float64((r * 17) % 91),
			}))
		}
	}
	specs := model.DefaultFeatureSpecs()
	serial, _ := aggregate(t, src, specs, 1)
	parallel, _ := aggregate(t, src, specs, 8)
	require.Equal(t, len(serial), len(parallel))
	for i := range serial {
		assert.Equal(t, serial[i].Features, parallel[i].Features, "行 %d", i)
	}
}
