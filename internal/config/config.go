package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"RoundFeatures/internal/model"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SeasonPlaceholder 表名/文件名模板中的赛季占位符
const SeasonPlaceholder = "{season}"

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Database DatabaseConfig `mapstructure:"database"` // 数据库配置
	Source   SourceConfig   `mapstructure:"source"`   // 源数据配置
	Features FeaturesConfig `mapstructure:"features"` // 特征构建配置
	Log      LogConfig      `mapstructure:"log"`      // 日志配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`            // postgres / sqlite
	DSN             string        `mapstructure:"dsn"`               // 连接DSN（sqlite 为文件路径）
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
	LogSQL          bool          `mapstructure:"log_sql"`           // 是否打印SQL
	BatchSize       int           `mapstructure:"batch_size"`        // 写特征表的批量大小
}

// SourceTablesConfig 源表名模板，{season} 替换为赛季
type SourceTablesConfig struct {
	Records   string `mapstructure:"records"`    // 球员逐轮记录
	Meta      string `mapstructure:"meta"`       // 球员静态信息
	TeamStats string `mapstructure:"team_stats"` // 球队逐轮比赛结果
	Fixtures  string `mapstructure:"fixtures"`   // 赛程
}

// SourceConfig 源数据配置
type SourceConfig struct {
	Loader string             `mapstructure:"loader"` // database / csvfile
	Dir    string             `mapstructure:"dir"`    // csvfile 加载器的目录
	Tables SourceTablesConfig `mapstructure:"tables"`
}

// FeaturesConfig 特征构建配置；Specs/Ratios/Columns 为空时使用内置默认
type FeaturesConfig struct {
	Season      string               `mapstructure:"season"`       // 默认赛季
	Windows     []int                `mapstructure:"windows"`      // 滚动窗口
	Epsilon     float64              `mapstructure:"epsilon"`      // 比率分母保护常量
	Workers     int                  `mapstructure:"workers"`      // 按球员并发聚合的协程数
	OutputTable string               `mapstructure:"output_table"` // 输出表名模板
	Columns     []string             `mapstructure:"columns"`      // 输出列及顺序
	Specs       []model.FeatureSpec  `mapstructure:"specs"`
	Ratios      []model.RatioSpec    `mapstructure:"ratios"`
	Positions   []model.PositionView `mapstructure:"positions"` // 按位置拆分
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	return LoadConfigFrom("./config")
}

// LoadConfigFrom 从指定目录读取 config.yaml
func LoadConfigFrom(dir string) (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	v.SetTypeByDefaultValue(true)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.batch_size", 500)
	v.SetDefault("source.loader", "database")
	v.SetDefault("source.tables.records", "history_{season}")
	v.SetDefault("source.tables.meta", "players_{season}")
	v.SetDefault("source.tables.team_stats", "team_stats_{season}")
	v.SetDefault("source.tables.fixtures", "fixtures_{season}")
	v.SetDefault("features.windows", model.DefaultWindows)
	v.SetDefault("features.epsilon", model.DefaultEpsilon)
	v.SetDefault("features.workers", 4)
	v.SetDefault("features.output_table", "features_{season}")
	v.SetDefault("log.level", "info")
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("FEATURES_SEASON"); v != "" {
		cfg.Features.Season = v
	}
	if v := os.Getenv("SOURCE_DIR"); v != "" {
		cfg.Source.Dir = v
	}
}

// Validate 校验配置，失败时整个进程不应启动
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.driver 不支持: %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn 为空"))
	}
	switch c.Source.Loader {
	case "database":
	case "csvfile":
		if c.Source.Dir == "" {
			errs = append(errs, errors.New("source.loader=csvfile 时 source.dir 不能为空"))
		}
	default:
		errs = append(errs, fmt.Errorf("source.loader 不支持: %q", c.Source.Loader))
	}
	if !strings.Contains(c.Features.OutputTable, SeasonPlaceholder) {
		errs = append(errs, fmt.Errorf("features.output_table 必须包含 %s", SeasonPlaceholder))
	}
	if c.Features.Epsilon <= 0 {
		errs = append(errs, errors.New("features.epsilon 必须大于 0"))
	}
	if c.Features.Workers < 0 {
		errs = append(errs, errors.New("features.workers 不能为负数"))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("配置校验失败: %w", errors.Join(errs...))
	}
	return nil
}

// SeasonTable 把模板中的 {season} 替换为具体赛季
func SeasonTable(template, season string) string {
	return strings.ReplaceAll(template, SeasonPlaceholder, season)
}

// LogrusLevel 日志级别，非法值回退到 info
func (l LogConfig) LogrusLevel() logrus.Level {
	lvl, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// PositionViews 未配置时使用内置的 GK/DEF/MID/FWD 拆分
func (f FeaturesConfig) PositionViews() []model.PositionView {
	if len(f.Positions) == 0 {
		return model.DefaultPositionViews()
	}
	return f.Positions
}

// GetGORMConfig 获取GORM配置
func (d *DatabaseConfig) GetGORMConfig() *gorm.Config {
	level := logger.Warn
	if d.LogSQL {
		level = logger.Info
	}
	return &gorm.Config{Logger: logger.Default.LogMode(level)}
}
