package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"RoundFeatures/internal/adapter"
	"RoundFeatures/internal/config"
	"RoundFeatures/internal/interfaces"
	"RoundFeatures/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Name 配置 source.loader 使用的名称
const Name = "csvfile"

func init() {
	adapter.Register(Name, NewLoader)
}

// Loader 从目录中读取 <表名>.csv，文件名同样按 {season} 模板展开
type Loader struct {
	dir    string
	tables config.SourceTablesConfig
	logger *logrus.Logger
}

// NewLoader 创建 CSV 加载器；db 参数忽略
func NewLoader(cfg *config.Config, _ *gorm.DB, logger *logrus.Logger) (interfaces.SourceLoader, error) {
	info, err := os.Stat(cfg.Source.Dir)
	if err != nil {
		return nil, fmt.Errorf("CSV 目录不可用: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s 不是目录", cfg.Source.Dir)
	}
	return &Loader{dir: cfg.Source.Dir, tables: cfg.Source.Tables, logger: logger}, nil
}

func (l *Loader) GetName() string { return Name }

func (l *Loader) Load(ctx context.Context, season string) (*model.SourceTables, error) {
	var all [4][]adapter.Row
	templates := [4]string{l.tables.Records, l.tables.Meta, l.tables.TeamStats, l.tables.Fixtures}
	for i, tpl := range templates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := config.SeasonTable(tpl, season)
		rows, err := l.readFile(filepath.Join(l.dir, name+".csv"))
		switch {
		case errors.Is(err, os.ErrNotExist) && i == 2:
			l.logger.WithField("file", name).Warn("源文件不存在，按空表处理")
		case err != nil:
			return nil, err
		}
		all[i] = rows
	}

	src, err := adapter.BuildSourceTables(season, all[0], all[1], all[2], all[3])
	if err != nil {
		return nil, fmt.Errorf("转换源数据失败: %w", err)
	}
	l.logger.WithFields(logrus.Fields{
		"season":     season,
		"dir":        l.dir,
		"records":    len(src.Records),
		"meta":       len(src.Meta),
		"team_stats": len(src.TeamStats),
		"fixtures":   len(src.Fixtures),
	}).Info("CSV 源文件加载完成")
	return src, nil
}

// readFile 首行为表头；空单元格保留为空字符串，由数值解析按缺失处理
func (l *Loader) readFile(path string) ([]adapter.Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开 CSV 文件失败: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.ReuseRecord = true
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取 CSV 表头失败 %s: %w", path, err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows []adapter.Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取 CSV 行失败 %s:%d: %w", path, line, err)
		}
		row := make(adapter.Row, len(columns))
		for i, c := range columns {
			if c == "" || i >= len(record) {
				continue
			}
			row[c] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
