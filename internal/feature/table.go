package feature

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"RoundFeatures/internal/model"
)

// Cell 输出表单元格：数值列或文本列（目前只有 name 是文本）
type Cell struct {
	Num    model.NullFloat
	Text   string
	IsText bool
}

// String 确定性编码：数值用最短 round-trip 表示，-0 归一为 0
func (c Cell) String() string {
	if c.IsText {
		return c.Text
	}
	if !c.Num.Valid {
		return ""
	}
	v := c.Num.Float64
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// RowKey 行主键及拆分用的位置
type RowKey struct {
	EntityID int64
	Round    int
	Position int
}

// Table 特征表，构建后不再修改；Rows[i] 与 Keys[i] 一一对应，按 (entity_id, round) 升序
type Table struct {
	Columns []string
	Rows    [][]Cell
	Keys    []RowKey
}

// Len 行数
func (t *Table) Len() int { return len(t.Rows) }

// ColumnIndex 列下标，不存在返回 -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// IsTextColumn 列是否为文本列
func IsTextColumn(name string) bool {
	return name == model.ColumnName
}

// Select 按行过滤并剔除指定列，返回新表
func (t *Table) Select(keep func(RowKey) bool, drop []string) *Table {
	dropped := make(map[string]bool, len(drop))
	for _, d := range drop {
		dropped[d] = true
	}
	var cols []int
	out := &Table{}
	for i, c := range t.Columns {
		if dropped[c] {
			continue
		}
		cols = append(cols, i)
		out.Columns = append(out.Columns, c)
	}
	for i, row := range t.Rows {
		if keep != nil && !keep(t.Keys[i]) {
			continue
		}
		nr := make([]Cell, len(cols))
		for j, ci := range cols {
			nr[j] = row[ci]
		}
		out.Rows = append(out.Rows, nr)
		out.Keys = append(out.Keys, t.Keys[i])
	}
	return out
}

// WriteCSV 以表头 + 数据行写出；相同输入总是得到相同字节
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("写表头失败: %w", err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for j, c := range row {
			record[j] = c.String()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("写数据行失败: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Checksum 表 CSV 编码的 sha256
func (t *Table) Checksum() (string, error) {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return "", err
	}
	h := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(h[:]), nil
}

// WriteCSVFile 先写同目录临时文件，成功后改名覆盖 path；失败时 path 保持原样
func (t *Table) WriteCSVFile(path string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = t.WriteCSV(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("刷盘失败: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("关闭临时文件失败: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("替换%s失败: %w", path, err)
	}
	return nil
}
