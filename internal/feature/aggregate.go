package feature

import (
	"context"
	"fmt"

	"RoundFeatures/internal/model"

	"golang.org/x/sync/errgroup"
)

// AggregatedRow 时序聚合阶段产出
type AggregatedRow struct {
	JoinedRow
	Features map[string]model.NullFloat
}

// Aggregator 按 FeatureSpec 列表计算每个球员的滚动/累计特征
type Aggregator struct {
	specs   []model.FeatureSpec
	workers int
}

func NewAggregator(specs []model.FeatureSpec, workers int) *Aggregator {
	if workers <= 0 {
		workers = 1
	}
	return &Aggregator{specs: specs, workers: workers}
}

// presentFields 源数据中至少有一行出现过的字段；连接阶段生成的字段总是存在
func presentFields(rows []JoinedRow) map[model.Field]bool {
	present := make(map[model.Field]bool)
	for _, f := range model.JoinedFields {
		present[f] = true
	}
	for _, r := range rows {
		for f := range r.Values {
			present[f] = true
		}
	}
	return present
}

// Run 球员之间互相独立，按 workers 并发；每个球员只写自己的行，结果与串行一致
func (a *Aggregator) Run(ctx context.Context, rows []JoinedRow, arena *Arena, diag *Diagnostics) ([]AggregatedRow, error) {
	present := presentFields(rows)
	for _, spec := range a.specs {
		if !present[spec.Source] {
			diag.addMissingColumn(string(spec.Source))
		}
	}

	out := make([]AggregatedRow, len(rows))
	for i := range rows {
		out[i] = AggregatedRow{
			JoinedRow: rows[i],
			Features:  make(map[string]model.NullFloat, len(a.specs)),
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for _, tl := range arena.Timelines {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return a.aggregateTimeline(tl, rows, present, out)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Aggregator) aggregateTimeline(tl *Timeline, rows []JoinedRow, present map[model.Field]bool, out []AggregatedRow) error {
	cache := make(map[model.Field]*Series)
	for _, spec := range a.specs {
		s, ok := cache[spec.Source]
		if !ok {
			s = tl.SeriesOf(rows, spec.Source, present[spec.Source])
			cache[spec.Source] = s
		}
		for k, ri := range tl.Rows {
			v, err := evaluate(spec, s, k)
			if err != nil {
				return fmt.Errorf("entity_id=%d 特征%s: %w", tl.EntityID, spec.Name, err)
			}
			out[ri].Features[spec.Name] = v
		}
	}
	return nil
}

// evaluate 单个特征在序列第 i 轮的取值；除 cumsum 外都只用第 i 轮之前的数据
func evaluate(spec model.FeatureSpec, s *Series, i int) (model.NullFloat, error) {
	switch spec.Kind {
	case model.KindMean:
		if v, ok := s.PriorMean(i, spec.Window); ok {
			return model.Float(v), nil
		}
		return model.Float(spec.Default), nil
	case model.KindSum:
		if i == 0 {
			return model.Float(spec.Default), nil
		}
		return model.Float(s.PriorSum(i, spec.Window)), nil
	case model.KindCumSum:
		return model.Float(s.CumSum(i)), nil
	case model.KindLag:
		return model.Float(s.Prior(i).Or(spec.Default)), nil
	default:
		return model.Null(), invalidOptions("未知聚合方式 %q", spec.Kind)
	}
}
