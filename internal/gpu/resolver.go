package gpu

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"sysmon/internal/collector"

	"go.uber.org/zap"
)

// Идентификаторы бэкендов в поле "backend" отчета
const (
	BackendNvidiaSMI = "nvidia-smi"
	BackendSysfs     = "sysfs"
)

const nvidiaQueryTimeout = 2 * time.Second

var cardDirRe = regexp.MustCompile(`^card\d+$`)

// Resolver выбирает источник данных GPU по фиксированному приоритету:
// сначала nvidia-smi, затем перечисление через sysfs DRM. Доступность
// бэкендов определяется один раз при старте и дальше читается как данные.
type Resolver struct {
	logger     *zap.Logger
	nvidiaPath string // пустая строка — nvidia-smi не найден
	sysfsRoot  string // пустая строка — DRM недоступен

	// Подменяется в тестах вместо реального запуска nvidia-smi
	run func(ctx context.Context, path string, args ...string) ([]byte, error)
}

// Detect определяет доступные бэкенды GPU на этом хосте
func Detect(logger *zap.Logger) *Resolver {
	r := &Resolver{
		logger: logger,
		run:    runCommand,
	}

	if path, err := exec.LookPath("nvidia-smi"); err == nil {
		r.nvidiaPath = path
	}

	const drmRoot = "/sys/class/drm"
	if matches, err := filepath.Glob(filepath.Join(drmRoot, "card*", "device")); err == nil && len(matches) > 0 {
		r.sysfsRoot = drmRoot
	}

	logger.Debug("GPU backend detection completed",
		zap.Bool("nvidia_smi", r.nvidiaPath != ""),
		zap.Bool("sysfs", r.sysfsRoot != ""))

	return r
}

// Report возвращает данные первого успешного бэкенда. Любой отказ ведет
// к переходу на следующий бэкенд; nil означает хост без GPU и не является
// ошибкой.
func (r *Resolver) Report(ctx context.Context) *collector.GPUReport {
	if r.nvidiaPath != "" {
		if gpus := r.queryNvidiaSMI(ctx); len(gpus) > 0 {
			return &collector.GPUReport{Backend: BackendNvidiaSMI, GPUs: gpus}
		}
	}
	if r.sysfsRoot != "" {
		if gpus := r.querySysfs(); len(gpus) > 0 {
			return &collector.GPUReport{Backend: BackendSysfs, GPUs: gpus}
		}
	}
	return nil
}

// queryNvidiaSMI запрашивает отчет с фиксированными колонками в CSV без
// заголовка и единиц измерения
func (r *Resolver) queryNvidiaSMI(ctx context.Context) []collector.GPUInfo {
	out, err := r.run(ctx, r.nvidiaPath,
		"--query-gpu=index,name,driver_version,memory.total,memory.used,utilization.gpu,temperature.gpu",
		"--format=csv,noheader,nounits")
	if err != nil {
		r.logger.Debug("nvidia-smi invocation failed", zap.Error(err))
		return nil
	}
	return parseNvidiaSMI(out)
}

// parseNvidiaSMI разбирает построчный CSV-вывод nvidia-smi.
// Строки с неполным или нечисловым содержимым пропускаются.
func parseNvidiaSMI(out []byte) []collector.GPUInfo {
	var gpus []collector.GPUInfo

	sc := bufio.NewScanner(strings.NewReader(string(out)))
	for sc.Scan() {
		parts := strings.Split(sc.Text(), ",")
		if len(parts) < 7 {
			continue
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		index, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			continue
		}
		memTotal, err := strconv.ParseFloat(parts[3], 64)
		if err != nil {
			continue
		}
		memUsed, err := strconv.ParseFloat(parts[4], 64)
		if err != nil {
			continue
		}
		util, err := strconv.ParseFloat(parts[5], 64)
		if err != nil {
			continue
		}
		temp, err := strconv.ParseFloat(parts[6], 64)
		if err != nil {
			continue
		}

		driver := parts[2]
		gpus = append(gpus, collector.GPUInfo{
			Index:         int(index),
			Name:          parts[1],
			DriverVersion: &driver,
			MemoryTotalMB: memTotal,
			MemoryUsedMB:  memUsed,
			UtilPercent:   util,
			TemperatureC:  temp,
		})
	}

	return gpus
}

// querySysfs перечисляет GPU через DRM: запасной универсальный бэкенд
// для хостов без nvidia-smi. Все метрики читаются по возможности.
func (r *Resolver) querySysfs() []collector.GPUInfo {
	entries, err := os.ReadDir(r.sysfsRoot)
	if err != nil {
		return nil
	}

	var gpus []collector.GPUInfo
	for _, e := range entries {
		if !cardDirRe.MatchString(e.Name()) {
			continue
		}
		device := filepath.Join(r.sysfsRoot, e.Name(), "device")
		if _, err := os.Stat(device); err != nil {
			continue
		}

		index, _ := strconv.Atoi(strings.TrimPrefix(e.Name(), "card"))
		info := collector.GPUInfo{
			Index: index,
			Name:  sysfsCardName(device),
			UUID:  readTrimmed(filepath.Join(device, "unique_id")),
		}

		if total, err := readFloatFile(filepath.Join(device, "mem_info_vram_total")); err == nil {
			info.MemoryTotalMB = total / 1024 / 1024
		}
		if used, err := readFloatFile(filepath.Join(device, "mem_info_vram_used")); err == nil {
			info.MemoryUsedMB = used / 1024 / 1024
		}
		if busy, err := readFloatFile(filepath.Join(device, "gpu_busy_percent")); err == nil {
			info.UtilPercent = busy
		}
		if temp, ok := sysfsTemperature(device); ok {
			info.TemperatureC = temp
		}

		gpus = append(gpus, info)
	}

	return gpus
}

// sysfsCardName составляет имя из драйвера и PCI-идентификатора вендора
func sysfsCardName(device string) string {
	vendor := readTrimmed(filepath.Join(device, "vendor"))

	var driver string
	uevent := readTrimmed(filepath.Join(device, "uevent"))
	for _, line := range strings.Split(uevent, "\n") {
		if v, ok := strings.CutPrefix(line, "DRIVER="); ok {
			driver = v
			break
		}
	}

	switch {
	case driver != "" && vendor != "":
		return driver + " " + vendor
	case driver != "":
		return driver
	case vendor != "":
		return vendor
	}
	return "unknown"
}

// sysfsTemperature берет первое показание hwmon устройства (миллиградусы)
func sysfsTemperature(device string) (float64, bool) {
	matches, err := filepath.Glob(filepath.Join(device, "hwmon", "hwmon*", "temp1_input"))
	if err != nil || len(matches) == 0 {
		return 0, false
	}
	milli, err := readFloatFile(matches[0])
	if err != nil {
		return 0, false
	}
	return milli / 1000, true
}

func readTrimmed(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func readFloatFile(path string) (float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
}

func runCommand(ctx context.Context, path string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, nvidiaQueryTimeout)
	defer cancel()
	return exec.CommandContext(ctx, path, args...).Output()
}
