package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sysmon/internal/collector"
	"sysmon/internal/config"
	"sysmon/internal/export"
	"sysmon/internal/gpu"
	"sysmon/internal/logger"
	"sysmon/internal/scheduler"
	"sysmon/pkg/profiler"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "sysmon",
		Short:        "Point-in-time host telemetry snapshots",
		Long:         "sysmon collects CPU, memory, disk, network, battery, temperature, GPU and process metrics into one snapshot and exports it to a console table, a JSON file and/or a CSV time series.",
		SilenceUsage: true,
		RunE:         run,
	}

	config.AddFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	if err := cfg.Load(cmd); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Cleanup()
	log := logger.Logger

	// Провайдер телеметрии обязан быть доступен до первого тика
	probeCtx, probeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer probeCancel()
	if err := collector.Probe(probeCtx); err != nil {
		log.Error("Telemetry provider unavailable", zap.Error(err))
		return err
	}

	prof := profiler.New(profiler.Config{
		Enable:      cfg.ProfileEnable,
		HTTPPort:    cfg.ProfileHTTPPort,
		CPUProfile:  cfg.ProfileCPUFile,
		MemProfile:  cfg.ProfileMemFile,
		ProfileTime: cfg.ProfileTime,
	}, log)
	if err := prof.Start(); err != nil {
		return fmt.Errorf("failed to start profiler: %w", err)
	}
	defer func() {
		if err := prof.Stop(); err != nil {
			log.Warn("Profiler shutdown failed", zap.Error(err))
		}
	}()

	coll := collector.New(log, gpu.Detect(log), cfg.TopN)

	var exporters []export.Exporter
	if !cfg.Quiet {
		exporters = append(exporters, export.NewTable(os.Stdout))
	}
	if cfg.JSONPath != "" {
		exporters = append(exporters, export.NewJSON(cfg.JSONPath))
	}
	if cfg.CSVPath != "" {
		exporters = append(exporters, export.NewCSV(cfg.CSVPath))
	}

	sched := scheduler.New(cfg, coll, exporters, log)

	if cfg.Once {
		if err := sched.RunOnce(); err != nil {
			log.Error("Sampling failed", zap.Error(err))
			return err
		}
		log.Info("Sampling completed")
		return nil
	}

	sched.Start()

	// Прерывание останавливает цикл после завершения текущего тика
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("Received signal, shutting down", zap.String("signal", sig.String()))

	sched.Stop()
	sched.Wait()

	log.Info("Monitor stopped")
	return nil
}
