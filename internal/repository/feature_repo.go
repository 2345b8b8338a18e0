package repository

import (
	"context"
	"errors"
	"fmt"

	"RoundFeatures/internal/feature"
	"RoundFeatures/internal/interfaces"
	"RoundFeatures/internal/model"

	"gorm.io/gorm"
)

// ErrTableNotFound 查询的特征表不存在（尚未构建过）
var ErrTableNotFound = errors.New("表不存在")

type featureRepository struct {
	db        *gorm.DB
	batchSize int
}

// NewFeatureRepository 创建 FeatureStore 实例
func NewFeatureRepository(db *gorm.DB, batchSize int) interfaces.FeatureStore {
	return &featureRepository{db: db, batchSize: batchSize}
}

// ReplaceTable 按 Table 的列顺序建表并写入，(entity_id, round) 上建唯一索引
func (r *featureRepository) ReplaceTable(ctx context.Context, name string, t *feature.Table) error {
	return r.ReplaceTables(ctx, []interfaces.NamedTable{{Name: name, Table: t}})
}

// ReplaceTables 同一事务内替换多张特征表
func (r *featureRepository) ReplaceTables(ctx context.Context, tables []interfaces.NamedTable) error {
	data := make([]tableData, len(tables))
	names := make([]string, len(tables))
	for i, nt := range tables {
		data[i] = toTableData(nt.Name, nt.Table)
		names[i] = nt.Name
	}
	if err := replaceTables(ctx, r.db, data, r.batchSize); err != nil {
		return fmt.Errorf("替换特征表%v失败: %w", names, err)
	}
	return nil
}

func toTableData(name string, t *feature.Table) tableData {
	columns := make([]sqlColumn, len(t.Columns))
	for i, c := range t.Columns {
		columns[i] = sqlColumn{Name: c, Text: feature.IsTextColumn(c)}
	}
	rows := make([][]interface{}, len(t.Rows))
	for i, row := range t.Rows {
		vals := make([]interface{}, len(row))
		for j, c := range row {
			if c.IsText {
				vals[j] = c.Text
			} else {
				vals[j] = c.Num.Float64
			}
		}
		rows[i] = vals
	}

	var keys []string
	if t.ColumnIndex(model.ColumnEntityID) >= 0 && t.ColumnIndex(model.ColumnRound) >= 0 {
		keys = []string{model.ColumnEntityID, model.ColumnRound}
	}
	return tableData{name: name, columns: columns, rows: rows, keys: keys}
}

// ListRows 按过滤条件分页查询特征行
func (r *featureRepository) ListRows(ctx context.Context, name string, filter interfaces.FeatureFilter, page, pageSize int) ([]map[string]interface{}, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	if !r.HasTable(ctx, name) {
		return nil, 0, fmt.Errorf("%s: %w", name, ErrTableNotFound)
	}

	db := r.db.WithContext(ctx).Table(name)
	if filter.EntityID != 0 {
		db = db.Where(quoteIdent(model.ColumnEntityID)+" = ?", filter.EntityID)
	}
	if filter.Round != 0 {
		db = db.Where(quoteIdent(model.ColumnRound)+" = ?", filter.Round)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []map[string]interface{}
	if err := db.
		Order(quoteIdent(model.ColumnEntityID) + " ASC, " + quoteIdent(model.ColumnRound) + " ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// HasTable 表是否存在
func (r *featureRepository) HasTable(ctx context.Context, name string) bool {
	return r.db.WithContext(ctx).Migrator().HasTable(name)
}

// LoadTable 读回整张特征表；name 列按文本处理，其余列按数值解析
func (r *featureRepository) LoadTable(ctx context.Context, name string) (*feature.Table, error) {
	if !r.HasTable(ctx, name) {
		return nil, fmt.Errorf("%s: %w", name, ErrTableNotFound)
	}
	rows, err := r.db.WithContext(ctx).Table(name).
		Order(quoteIdent(model.ColumnEntityID) + " ASC, " + quoteIdent(model.ColumnRound) + " ASC").
		Rows()
	if err != nil {
		return nil, fmt.Errorf("读取特征表%s失败: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	t := &feature.Table{Columns: columns}
	idxEntity, idxRound, idxPosition := t.ColumnIndex(model.ColumnEntityID), t.ColumnIndex(model.ColumnRound), t.ColumnIndex(model.ColumnPosition)

	raw := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("扫描特征表%s失败: %w", name, err)
		}
		cells := make([]feature.Cell, len(columns))
		for i, v := range raw {
			if feature.IsTextColumn(columns[i]) {
				cells[i] = feature.Cell{Text: textValue(v), IsText: true}
				continue
			}
			cells[i] = feature.Cell{Num: model.ParseNullFloat(v)}
		}
		var key feature.RowKey
		if idxEntity >= 0 {
			key.EntityID = int64(cells[idxEntity].Num.Float64)
		}
		if idxRound >= 0 {
			key.Round = int(cells[idxRound].Num.Float64)
		}
		if idxPosition >= 0 {
			key.Position = int(cells[idxPosition].Num.Float64)
		}
		t.Rows = append(t.Rows, cells)
		t.Keys = append(t.Keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func textValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
