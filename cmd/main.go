package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"RoundFeatures/internal/adapter"
	_ "RoundFeatures/internal/adapter/csvfile"
	_ "RoundFeatures/internal/adapter/database"
	"RoundFeatures/internal/config"
	"RoundFeatures/internal/interfaces"
	"RoundFeatures/internal/repository"
	"RoundFeatures/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	configDir string
	season    string
)

// rootCmd 入口命令，不带子命令时启动 HTTP 服务
var rootCmd = &cobra.Command{
	Use:   "roundfeatures",
	Short: "Per-round player feature tables for fantasy football seasons",
	Long: `roundfeatures reads a season's per-round player history, player metadata,
team results and fixtures, and writes a leakage-free feature table per season
plus one sub-table per position.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "./config", "Directory containing config.yaml")
	rootCmd.PersistentFlags().StringVar(&season, "season", "", "Season to process (default: features.season)")
}

// app 一次进程内共享的依赖
type app struct {
	cfg       *config.Config
	logger    *logrus.Logger
	db        *gorm.DB
	features  interfaces.FeatureStore
	runs      interfaces.RunStore
	build     *service.FeatureBuildService
	split     *service.PositionSplitService
	teamStats *service.TeamStatsService
	query     *service.QueryService
}

func bootstrap() (*app, error) {
	// 1. 加载配置文件
	cfg, err := config.LoadConfigFrom(configDir)
	if err != nil {
		return nil, fmt.Errorf("加载配置文件失败: %w", err)
	}

	// 2. 初始化日志
	logger := logrus.New()
	logger.SetLevel(cfg.Log.LogrusLevel())
	logger.Info("配置文件加载成功")

	// 3. 连接数据库（postgres 库不存在则先创建再连）
	db, err := repository.Open(&cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	// 4. 源数据加载器
	loader, err := adapter.NewSourceLoader(cfg, db, logger)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		features: repository.NewFeatureRepository(db, cfg.Database.BatchSize),
		runs:     repository.NewRunRepository(db),
	}
	a.build = service.NewFeatureBuildService(cfg, loader, a.features, a.runs, logger)
	a.split = service.NewPositionSplitService(cfg, a.features, logger)
	a.teamStats = service.NewTeamStatsService(cfg, loader, repository.NewTeamStatsRepository(db, cfg.Database.BatchSize), logger)
	a.query = service.NewQueryService(cfg, a.features, a.runs, logger)
	return a, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// signalContext Ctrl-C / SIGTERM 时取消正在进行的构建
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
