package scheduler

import (
	"context"
	"fmt"
	"time"

	"sysmon/internal/collector"
	"sysmon/internal/config"
	"sysmon/internal/export"

	"go.uber.org/zap"
)

// Snapshotter собирает один снимок телеметрии; реализуется collector.Collector
type Snapshotter interface {
	Collect(ctx context.Context) (*collector.Snapshot, error)
}

// Scheduler управляет циклом сбор-экспорт: один проход в разовом режиме
// или бесконечный цикл с фиксированным интервалом. Отмена проверяется
// между тиками, поэтому начатый тик всегда доводится до конца и наружу
// никогда не уходит недособранный снимок.
type Scheduler struct {
	config    *config.Config
	collector Snapshotter
	exporters []export.Exporter
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New создает новый планировщик
func New(cfg *config.Config, snap Snapshotter, exporters []export.Exporter, logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		config:    cfg,
		collector: snap,
		exporters: exporters,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// RunOnce выполняет ровно один тик. Ошибка сбора или экспорта
// возвращается вызывающему и приводит к ненулевому коду выхода.
func (s *Scheduler) RunOnce() error {
	defer close(s.done)
	defer s.cancel()
	return s.tick(true)
}

// Start запускает непрерывный цикл сбора
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler",
		zap.Duration("interval", s.config.Interval),
		zap.Int("sinks", len(s.exporters)))

	go s.samplingLoop()
}

// Stop запрашивает остановку цикла; текущий тик завершится штатно
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cancel()
}

// Wait блокируется до полного завершения цикла
func (s *Scheduler) Wait() {
	<-s.done
}

// samplingLoop — основной цикл непрерывного режима: первый тик сразу,
// дальше по тикеру. Отмена наблюдается только на границах тиков.
func (s *Scheduler) samplingLoop() {
	defer close(s.done)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if err := s.tick(false); err != nil {
		s.logger.Error("Tick failed", zap.Error(err))
	}

	for {
		select {
		case <-ticker.C:
			if err := s.tick(false); err != nil {
				s.logger.Error("Tick failed", zap.Error(err))
			}
		case <-s.ctx.Done():
			s.logger.Info("Sampling loop stopped")
			return
		}
	}
}

// tick выполняет один цикл сбор-экспорт. В разовом режиме отказ
// приемника прерывает запуск; в непрерывном — логируется, и цикл
// продолжается со следующего тика.
func (s *Scheduler) tick(oneShot bool) error {
	start := time.Now()

	// Сбор идет на собственном контексте, не связанном с отменой Stop:
	// запрос остановки наблюдается только в select цикла, поэтому
	// начатый тик доводится до конца и экспортируется целиком
	snap, err := s.collector.Collect(context.Background())
	if err != nil {
		return fmt.Errorf("failed to collect snapshot: %w", err)
	}

	collectDuration := time.Since(start)

	for _, e := range s.exporters {
		if err := e.Export(snap); err != nil {
			if oneShot {
				return fmt.Errorf("failed to export snapshot to %s: %w", e.Name(), err)
			}
			s.logger.Error("Failed to export snapshot",
				zap.String("sink", e.Name()),
				zap.Error(err))
		}
	}

	s.logger.Debug("Tick completed",
		zap.Duration("collect_time", collectDuration),
		zap.Duration("total_time", time.Since(start)),
		zap.Time("timestamp", snap.Timestamp))

	return nil
}
