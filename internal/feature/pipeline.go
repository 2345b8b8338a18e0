package feature

import (
	"context"
	"fmt"
	"time"

	"RoundFeatures/internal/model"

	"github.com/sirupsen/logrus"
)

// Options 特征构建参数
type Options struct {
	Specs   []model.FeatureSpec
	Ratios  []model.RatioSpec
	Windows []int
	Epsilon float64
	Columns []string
	Workers int
}

// DefaultOptions 默认特征集、窗口与输出列
func DefaultOptions() Options {
	return Options{
		Specs:   model.DefaultFeatureSpecs(),
		Ratios:  model.DefaultRatioSpecs(),
		Windows: append([]int(nil), model.DefaultWindows...),
		Epsilon: model.DefaultEpsilon,
		Columns: model.DefaultOutputColumns(),
		Workers: 1,
	}
}

// Validate 检查特征定义之间的引用关系
func (o Options) Validate() error {
	if o.Epsilon <= 0 {
		return invalidOptions("epsilon 必须大于 0")
	}
	if len(o.Columns) == 0 {
		return invalidOptions("输出列为空")
	}
	windows := make(map[int]bool, len(o.Windows))
	for _, w := range o.Windows {
		if w <= 0 {
			return invalidOptions("窗口必须为正数: %d", w)
		}
		windows[w] = true
	}

	names := make(map[string]bool)
	for _, s := range o.Specs {
		if s.Name == "" {
			return invalidOptions("特征名为空")
		}
		if names[s.Name] {
			return invalidOptions("特征名重复 %q", s.Name)
		}
		names[s.Name] = true
		if !s.Kind.Valid() {
			return invalidOptions("特征%s: 未知聚合方式 %q", s.Name, s.Kind)
		}
		if !model.IsKnownField(s.Source) {
			return invalidOptions("特征%s: 未知来源字段 %q", s.Name, s.Source)
		}
		switch s.Kind {
		case model.KindMean:
			if !windows[s.Window] {
				return invalidOptions("特征%s: 窗口 %d 不在配置的窗口集合中", s.Name, s.Window)
			}
		case model.KindSum:
			if s.Window != 0 && !windows[s.Window] {
				return invalidOptions("特征%s: 窗口 %d 不在配置的窗口集合中", s.Name, s.Window)
			}
		}
	}
	for _, r := range o.Ratios {
		if names[r.Name] {
			return invalidOptions("比率名与特征名重复 %q", r.Name)
		}
		if !names[r.Numerator] || !names[r.Denominator] {
			return invalidOptions("比率%s 引用了未定义的特征 %q/%q", r.Name, r.Numerator, r.Denominator)
		}
		if r.MinusCurrent != "" && !model.IsKnownField(r.MinusCurrent) {
			return invalidOptions("比率%s: 未知字段 %q", r.Name, r.MinusCurrent)
		}
		names[r.Name] = true
	}

	featureNames := nameSet(o.Specs, func(s model.FeatureSpec) string { return s.Name })
	ratioNames := nameSet(o.Ratios, func(s model.RatioSpec) string { return s.Name })
	seen := make(map[string]bool, len(o.Columns))
	for _, c := range o.Columns {
		if seen[c] {
			return invalidOptions("输出列重复 %q", c)
		}
		seen[c] = true
		if _, ok := resolveColumn(c, featureNames, ratioNames); !ok {
			return invalidOptions("未知输出列 %q", c)
		}
	}
	return nil
}

// Result 一次构建的结果
type Result struct {
	Table       *Table
	Diagnostics *Diagnostics
}

// Pipeline Join → Aggregate → Derive → Schedule → Assemble
type Pipeline struct {
	opts       Options
	aggregator *Aggregator
	logger     *logrus.Logger
}

func NewPipeline(opts Options, logger *logrus.Logger) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		opts:       opts,
		aggregator: NewAggregator(opts.Specs, opts.Workers),
		logger:     logger,
	}, nil
}

// Run 输入必须已全部加载；任何结构性错误直接返回，不产生部分结果
func (p *Pipeline) Run(ctx context.Context, src *model.SourceTables) (*Result, error) {
	start := time.Now()
	diag := &Diagnostics{InputRows: len(src.Records)}
	log := p.logger.WithField("season", src.Season)

	joined := Join(src, diag)
	arena, err := BuildArena(joined)
	if err != nil {
		return nil, fmt.Errorf("构建球员时间线失败: %w", err)
	}
	diag.Entities = len(arena.Timelines)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	aggregated, err := p.aggregator.Run(ctx, joined, arena, diag)
	if err != nil {
		return nil, fmt.Errorf("时序聚合失败: %w", err)
	}
	derived := Derive(aggregated, p.opts.Ratios, p.opts.Epsilon)
	scheduled := DetectSchedule(derived, src.Fixtures, arena, diag)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, err := Assemble(scheduled, p.opts.Columns, p.opts.Specs, p.opts.Ratios, diag)
	if err != nil {
		return nil, fmt.Errorf("组装输出表失败: %w", err)
	}

	p.report(log, diag)
	log.WithFields(logrus.Fields{
		"rows":     table.Len(),
		"entities": diag.Entities,
		"elapsed":  time.Since(start).String(),
	}).Info("特征表构建完成")
	return &Result{Table: table, Diagnostics: diag}, nil
}

func (p *Pipeline) report(log *logrus.Entry, d *Diagnostics) {
	if len(d.MissingColumns) > 0 {
		log.WithField("columns", d.MissingColumns).Warn("源数据缺少特征列，已按 0 填充")
	}
	if d.UnresolvedEntityMeta+d.UnresolvedTeamStat+d.UnresolvedOpponentStat > 0 {
		log.WithFields(logrus.Fields{
			"entity_meta":   d.UnresolvedEntityMeta,
			"team_stat":     d.UnresolvedTeamStat,
			"opponent_stat": d.UnresolvedOpponentStat,
		}).Warn("部分记录关联不到球员或球队数据，相关字段已补 0")
	}
	if d.NonNumericValues > 0 {
		log.WithField("count", d.NonNumericValues).Warn("存在无法转换为数值的字段，按缺失处理")
	}
	if d.RoundsMissingFromCalendar > 0 {
		log.WithField("rounds", d.RoundsMissingFromCalendar).Warn("赛程表缺少部分轮次，blank_round 可能偏高")
	}
	if d.ScheduledWithoutAppearance > 0 {
		log.WithField("count", d.ScheduledWithoutAppearance).Debug("球队有比赛但球员无记录的轮次")
	}
}
