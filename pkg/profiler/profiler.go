package profiler

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config представляет конфигурацию профилировщика
type Config struct {
	Enable      bool   // включить профилирование
	HTTPPort    int    // порт для HTTP сервера pprof
	CPUProfile  string // путь к файлу CPU профиля
	MemProfile  string // путь к файлу профиля памяти
	ProfileTime int    // время записи CPU профиля в секундах
}

// Profiler управляет профилированием приложения
type Profiler struct {
	config     Config
	logger     *zap.Logger
	httpServer *http.Server

	// cpuFile закрывают и таймер автостопа, и Stop при завершении
	cpuMu   sync.Mutex
	cpuFile *os.File
}

// New создает новый профилировщик
func New(config Config, logger *zap.Logger) *Profiler {
	return &Profiler{
		config: config,
		logger: logger,
	}
}

// Start запускает профилирование
func (p *Profiler) Start() error {
	if !p.config.Enable {
		return nil
	}

	p.logger.Info("Starting profiler",
		zap.Int("http_port", p.config.HTTPPort),
		zap.String("cpu_profile", p.config.CPUProfile),
		zap.String("mem_profile", p.config.MemProfile))

	p.startHTTPServer()

	if p.config.CPUProfile != "" {
		if err := p.startCPUProfile(); err != nil {
			return fmt.Errorf("failed to start CPU profiling: %w", err)
		}
	}

	return nil
}

// Stop останавливает профилирование и сбрасывает профили на диск
func (p *Profiler) Stop() error {
	if !p.config.Enable {
		return nil
	}

	var errs []error

	if err := p.stopCPUProfile(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop CPU profiling: %w", err))
	}

	if p.config.MemProfile != "" {
		if err := p.writeMemProfile(); err != nil {
			errs = append(errs, fmt.Errorf("failed to write memory profile: %w", err))
		}
	}

	if p.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown HTTP server: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("profiler shutdown errors: %v", errs)
	}

	p.logger.Info("Profiler stopped")
	return nil
}

// startHTTPServer запускает HTTP сервер с pprof endpoints
func (p *Profiler) startHTTPServer() {
	if p.config.HTTPPort <= 0 {
		return
	}

	// pprof регистрируется в DefaultServeMux импортом net/http/pprof
	p.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", p.config.HTTPPort),
		Handler: http.DefaultServeMux,
	}

	go func() {
		p.logger.Info("Starting pprof HTTP server",
			zap.String("addr", p.httpServer.Addr))

		if err := p.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			p.logger.Error("pprof HTTP server error", zap.Error(err))
		}
	}()
}

// startCPUProfile начинает запись CPU профиля в файл
func (p *Profiler) startCPUProfile() error {
	file, err := os.Create(p.config.CPUProfile)
	if err != nil {
		return fmt.Errorf("failed to create CPU profile file: %w", err)
	}

	if err := pprof.StartCPUProfile(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to start CPU profiling: %w", err)
	}

	p.cpuMu.Lock()
	p.cpuFile = file
	p.cpuMu.Unlock()

	p.logger.Info("Started CPU profiling", zap.String("file", p.config.CPUProfile))

	// Автоматическая остановка через заданное время
	if p.config.ProfileTime > 0 {
		go func() {
			time.Sleep(time.Duration(p.config.ProfileTime) * time.Second)
			p.stopCPUProfile()
		}()
	}

	return nil
}

// stopCPUProfile останавливает запись CPU профиля; повторные вызовы
// (таймер автостопа и Stop) безопасны
func (p *Profiler) stopCPUProfile() error {
	p.cpuMu.Lock()
	defer p.cpuMu.Unlock()

	if p.cpuFile == nil {
		return nil
	}

	pprof.StopCPUProfile()

	if err := p.cpuFile.Close(); err != nil {
		p.cpuFile = nil
		return fmt.Errorf("failed to close CPU profile file: %w", err)
	}

	p.logger.Info("Stopped CPU profiling", zap.String("file", p.config.CPUProfile))
	p.cpuFile = nil
	return nil
}

// writeMemProfile записывает профиль памяти в файл
func (p *Profiler) writeMemProfile() error {
	file, err := os.Create(p.config.MemProfile)
	if err != nil {
		return fmt.Errorf("failed to create memory profile file: %w", err)
	}
	defer file.Close()

	// GC перед снятием профиля для точной картины кучи
	runtime.GC()

	if err := pprof.WriteHeapProfile(file); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}

	p.logger.Info("Written memory profile", zap.String("file", p.config.MemProfile))
	return nil
}
