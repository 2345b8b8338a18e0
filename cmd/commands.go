package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"RoundFeatures/internal/api"
	"RoundFeatures/internal/config"
	"RoundFeatures/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var exportPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API (build triggers, feature queries, /metrics)",
	RunE:  runServe,
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the season feature table and its position sub-tables",
	Long: `Build loads the season's source tables, computes every feature from
strictly earlier rounds, and atomically replaces features_{season} and the
per-position tables. A failed build leaves the previous tables untouched.

Examples:
  roundfeatures build --season 2025
  roundfeatures build --config ./config`,
	RunE: runBuild,
}

var teamStatsCmd = &cobra.Command{
	Use:   "team-stats",
	Short: "Derive team_stats_{season} from the season fixtures",
	RunE:  runTeamStats,
}

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Regenerate position sub-tables from an existing feature table",
	RunE:  runSplit,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the season feature table as CSV",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(serveCmd, buildCmd, teamStatsCmd, splitCmd, exportCmd)
	exportCmd.Flags().StringVar(&exportPath, "out", "", "Output file (default: stdout)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	featureHandler := api.NewFeatureHandler(a.build, a.split, a.teamStats, a.query, a.logger)
	runHandler := api.NewRunHandler(a.query, a.logger)
	r := api.NewRouter(a.cfg.Server.Mode, featureHandler, runHandler)
	a.logger.Infof("Gin运行模式: %s", a.cfg.Server.Mode)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ctx, stop := signalContext()
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("服务启动成功，端口：%d", a.cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("启动服务失败: %w", err)
	case <-ctx.Done():
	}
	a.logger.Info("收到退出信号，关闭服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runBuild(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	ctx, stop := signalContext()
	defer stop()

	run, err := a.build.Run(ctx, season)
	if err != nil {
		return err
	}
	a.logger.WithFields(logrus.Fields{
		"run_uuid": run.RunUUID,
		"table":    run.OutputTable,
		"rows":     run.RowCount,
		"checksum": run.Checksum,
	}).Info("构建完成")
	return nil
}

func runTeamStats(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	ctx, stop := signalContext()
	defer stop()

	_, err = a.teamStats.Run(ctx, season)
	return err
}

func runSplit(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	ctx, stop := signalContext()
	defer stop()

	_, err = a.split.SplitExisting(ctx, season)
	return err
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	ctx, stop := signalContext()
	defer stop()

	s, err := service.ResolveSeason(a.cfg, season)
	if err != nil {
		return err
	}
	table, err := a.features.LoadTable(ctx, config.SeasonTable(a.cfg.Features.OutputTable, s))
	if err != nil {
		return err
	}

	if exportPath != "" {
		err = table.WriteCSVFile(exportPath)
	} else {
		err = table.WriteCSV(cmd.OutOrStdout())
	}
	if err != nil {
		return fmt.Errorf("导出CSV失败: %w", err)
	}
	a.logger.WithFields(logrus.Fields{"season": s, "rows": table.Len()}).Info("导出完成")
	return nil
}
