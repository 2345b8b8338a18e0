package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NullFloat 可空数值：Valid=false 表示缺失；Malformed=true 表示原始值存在但无法转换为数字
type NullFloat struct {
	Float64   float64
	Valid     bool
	Malformed bool
}

// Float 构造有效数值
func Float(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// Null 构造缺失值
func Null() NullFloat {
	return NullFloat{}
}

// Or 有值返回值，否则返回 def（所有兜底都必须显式经过这里）
func (n NullFloat) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Float64
}

// ParseNullFloat 把数据库/CSV 读出的任意值转换为 NullFloat。
// nil 与空字符串视为缺失；无法解析的文本标记为 Malformed。
func ParseNullFloat(v interface{}) NullFloat {
	switch x := v.(type) {
	case nil:
		return NullFloat{}
	case NullFloat:
		return x
	case float64:
		return checkFinite(x)
	case float32:
		return checkFinite(float64(x))
	case int:
		return Float(float64(x))
	case int32:
		return Float(float64(x))
	case int64:
		return Float(float64(x))
	case uint64:
		return Float(float64(x))
	case bool:
		if x {
			return Float(1)
		}
		return Float(0)
	case []byte:
		return parseText(string(x))
	case string:
		return parseText(x)
	default:
		return NullFloat{Malformed: true}
	}
}

func parseText(s string) NullFloat {
	s = strings.TrimSpace(s)
	if s == "" {
		return NullFloat{}
	}
	switch strings.ToLower(s) {
	case "true":
		return Float(1)
	case "false":
		return Float(0)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NullFloat{Malformed: true}
	}
	return checkFinite(f)
}

// NaN/Inf 一律按缺失处理
func checkFinite(f float64) NullFloat {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return NullFloat{}
	}
	return Float(f)
}

// Scan 实现 sql.Scanner
func (n *NullFloat) Scan(value interface{}) error {
	*n = ParseNullFloat(value)
	return nil
}

// Value 实现 driver.Valuer
func (n NullFloat) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Float64, nil
}

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

func (n *NullFloat) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("解析 NullFloat 失败: %w", err)
	}
	*n = ParseNullFloat(raw)
	return nil
}

func (n NullFloat) String() string {
	if !n.Valid {
		return "null"
	}
	return strconv.FormatFloat(n.Float64, 'g', -1, 64)
}
