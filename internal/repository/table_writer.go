package repository

import (
	"context"
	"fmt"
	"strings"

	"RoundFeatures/internal/interfaces"

	"gorm.io/gorm"
)

// maxBindParams 单条 INSERT 的占位符上限（sqlite 默认 32766，postgres 65535）
const maxBindParams = 30000

// sqlColumn 动态表的一列
type sqlColumn struct {
	Name string
	Text bool
}

// quoteIdent 双引号转义标识符，postgres 与 sqlite 通用
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func numericType(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "DOUBLE PRECISION"
	}
	return "REAL"
}

// tableData 一张待替换的表
type tableData struct {
	name    string
	columns []sqlColumn
	rows    [][]interface{}
	keys    []string
}

// replaceTable 先写临时表，再在同一事务内删除旧表并改名。任一步失败整体回滚，旧表不受影响
func replaceTable(ctx context.Context, db *gorm.DB, name string, columns []sqlColumn, rows [][]interface{}, batchSize int, keyColumns []string) error {
	return replaceTables(ctx, db, []tableData{{name: name, columns: columns, rows: rows, keys: keyColumns}}, batchSize)
}

// replaceTables 多张表在同一事务内替换：全部写入临时表后再逐一换名，要么全部生效要么全部保持原样
func replaceTables(ctx context.Context, db *gorm.DB, tables []tableData, batchSize int) error {
	seen := make(map[string]bool, len(tables))
	for _, t := range tables {
		if seen[t.name] {
			return fmt.Errorf("表名重复: %s", t.name)
		}
		seen[t.name] = true
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range tables {
			if err := stageTable(tx, t, batchSize); err != nil {
				return fmt.Errorf("%s: %w", t.name, err)
			}
		}
		for _, t := range tables {
			if err := swapTable(tx, t); err != nil {
				return fmt.Errorf("%s: %w", t.name, err)
			}
		}
		return nil
	})
}

func stagingName(name string) string { return name + "__staging" }

func stageTable(tx *gorm.DB, t tableData, batchSize int) error {
	staging := stagingName(t.name)
	if err := tx.Exec("DROP TABLE IF EXISTS " + quoteIdent(staging)).Error; err != nil {
		return fmt.Errorf("清理临时表失败: %w", err)
	}

	defs := make([]string, len(t.columns))
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		typ := numericType(tx)
		if c.Text {
			typ = "TEXT"
		}
		names[i] = quoteIdent(c.Name)
		defs[i] = names[i] + " " + typ
	}
	if err := tx.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(staging), strings.Join(defs, ", "))).Error; err != nil {
		return fmt.Errorf("创建临时表失败: %w", err)
	}
	return insertBatches(tx, staging, names, t.rows, batchSize)
}

func swapTable(tx *gorm.DB, t tableData) error {
	if err := tx.Exec("DROP TABLE IF EXISTS " + quoteIdent(t.name)).Error; err != nil {
		return fmt.Errorf("删除旧表失败: %w", err)
	}
	if err := tx.Exec(fmt.Sprintf("ALTER TABLE %s RENAME TO %s", quoteIdent(stagingName(t.name)), quoteIdent(t.name))).Error; err != nil {
		return fmt.Errorf("临时表改名失败: %w", err)
	}
	if len(t.keys) == 0 {
		return nil
	}
	quoted := make([]string, len(t.keys))
	for i, k := range t.keys {
		quoted[i] = quoteIdent(k)
	}
	idx := fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s)", quoteIdent("uk_"+t.name), quoteIdent(t.name), strings.Join(quoted, ", "))
	if err := tx.Exec(idx).Error; err != nil {
		return fmt.Errorf("创建唯一索引失败: %w", err)
	}
	return nil
}

func insertBatches(tx *gorm.DB, table string, quotedCols []string, rows [][]interface{}, batchSize int) error {
	if len(rows) == 0 || len(quotedCols) == 0 {
		return nil
	}
	perBatch := maxBindParams / len(quotedCols)
	if batchSize > 0 && batchSize < perBatch {
		perBatch = batchSize
	}
	if perBatch < 1 {
		perBatch = 1
	}

	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(quotedCols)), ", ") + ")"
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", quoteIdent(table), strings.Join(quotedCols, ", "))
	for n, batch := range interfaces.Chunk(rows, perBatch) {
		placeholders := make([]string, len(batch))
		args := make([]interface{}, 0, len(batch)*len(quotedCols))
		for i, row := range batch {
			placeholders[i] = rowPlaceholder
			args = append(args, row...)
		}
		if err := tx.Exec(prefix+strings.Join(placeholders, ", "), args...).Error; err != nil {
			start := n * perBatch
			return fmt.Errorf("批量写入第%d-%d行失败: %w", start+1, start+len(batch), err)
		}
	}
	return nil
}
