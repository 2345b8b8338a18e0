package feature

import (
	"RoundFeatures/internal/model"
)

// DerivedRow 派生指标阶段产出
type DerivedRow struct {
	AggregatedRow
	Ratios map[string]model.NullFloat
}

// Derive 计算比率特征。分子分母都取自聚合阶段的前移结果；
// MinusCurrent 用于把不前移的累计量还原为“截至上一轮”的累计量。
func Derive(rows []AggregatedRow, ratios []model.RatioSpec, epsilon float64) []DerivedRow {
	out := make([]DerivedRow, len(rows))
	for i := range rows {
		r := &rows[i]
		vals := make(map[string]model.NullFloat, len(ratios))
		for _, spec := range ratios {
			num := r.Features[spec.Numerator].Or(0)
			if spec.MinusCurrent != "" {
				num -= r.Values[spec.MinusCurrent].Or(0)
			}
			den := r.Features[spec.Denominator].Or(0)
			vals[spec.Name] = model.Float(GuardedRatio(num, den, epsilon))
		}
		out[i] = DerivedRow{AggregatedRow: *r, Ratios: vals}
	}
	return out
}

// GuardedRatio num / (den + epsilon)；分子分母同为 0 时返回 0
func GuardedRatio(num, den, epsilon float64) float64 {
	if num == 0 && den == 0 {
		return 0
	}
	return num / (den + epsilon)
}
