package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// Окно измерения мгновенной загрузки CPU внутри одного тика
const cpuSampleWindow = 200 * time.Millisecond

// GPUSource предоставляет данные GPU от первого доступного бэкенда.
// nil-отчет означает отсутствие GPU — это не ошибка.
type GPUSource interface {
	Report(ctx context.Context) *GPUReport
}

// Collector собирает все домены телеметрии и составляет из них Snapshot.
// Обязательными считаются только OS/CPU/память; остальные домены при
// недоступности отсутствуют в снимке вместо ошибки.
type Collector struct {
	logger *zap.Logger
	gpu    GPUSource
	ranker *Ranker
	topN   int

	// Корни sysfs/procfs; переопределяются в тестах
	powerSupplyRoot string
	netSysRoot      string
	cpufreqRoot     string
	procVersionPath string
}

// New создает новый сборщик снимков
func New(logger *zap.Logger, gpu GPUSource, topN int) *Collector {
	if topN <= 0 {
		topN = 10
	}
	return &Collector{
		logger:          logger,
		gpu:             gpu,
		ranker:          NewRanker(logger),
		topN:            topN,
		powerSupplyRoot: "/sys/class/power_supply",
		netSysRoot:      "/sys/class/net",
		cpufreqRoot:     "/sys/devices/system/cpu/cpu0/cpufreq",
		procVersionPath: "/proc/sys/kernel/version",
	}
}

// Probe проверяет доступность провайдера телеметрии. Вызывается один раз
// при старте: отказ здесь означает фатальную ошибку до первого тика.
func Probe(ctx context.Context) error {
	if _, err := host.InfoWithContext(ctx); err != nil {
		return fmt.Errorf("host telemetry provider unavailable: %w", err)
	}
	if _, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		return fmt.Errorf("host telemetry provider unavailable: %w", err)
	}
	return nil
}

// Collect собирает один полный снимок. Все чтения выполняются
// последовательно внутри тика; экспортеры видят только готовый снимок.
func (c *Collector) Collect(ctx context.Context) (*Snapshot, error) {
	c.logger.Debug("Starting snapshot collection")

	snap := &Snapshot{
		Timestamp: time.Now().UTC(),
	}

	osInfo, err := c.collectOS(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect OS info: %w", err)
	}
	snap.OS = *osInfo

	cpuInfo, err := c.collectCPU(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect CPU info: %w", err)
	}
	snap.CPU = *cpuInfo

	memInfo, err := c.collectMemory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect memory info: %w", err)
	}
	snap.Memory = *memInfo

	// Дальше — опциональные домены: отказ любого из них не прерывает сборку
	snap.Disks = c.collectDisks(ctx)
	snap.Network = c.collectNetwork(ctx)
	snap.Battery = c.collectBattery()
	snap.Temperatures = c.collectTemperatures(ctx)

	if c.gpu != nil {
		snap.GPUs = c.gpu.Report(ctx)
	}

	if pids, err := process.PidsWithContext(ctx); err == nil {
		snap.ProcessCount = len(pids)
	} else {
		c.logger.Warn("Failed to enumerate processes", zap.Error(err))
	}

	top, err := c.ranker.Top(ctx, c.topN)
	switch {
	case err == nil:
		snap.TopProcesses = top
	case ctx.Err() != nil:
		// Отмена во время ранжирования — снимок не достроен и наружу
		// не отдается; деградировать тут нельзя, иначе уйдет снимок
		// с процессами, но пустым топом
		return nil, fmt.Errorf("snapshot collection interrupted: %w", err)
	default:
		c.logger.Warn("Failed to rank processes", zap.Error(err))
	}

	c.logger.Debug("Snapshot collection completed",
		zap.Time("timestamp", snap.Timestamp),
		zap.Int("process_count", snap.ProcessCount))

	return snap, nil
}

// collectOS собирает сведения об ОС и хосте
func (c *Collector) collectOS(ctx context.Context) (*OSInfo, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get host info: %w", err)
	}

	bootSec, err := host.BootTimeWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get boot time: %w", err)
	}

	processor := info.KernelArch
	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		processor = cpus[0].ModelName
	}

	return &OSInfo{
		System:         info.OS,
		Node:           info.Hostname,
		Release:        info.KernelVersion,
		Version:        c.osVersion(info.PlatformVersion),
		Machine:        info.KernelArch,
		Processor:      processor,
		RuntimeVersion: runtime.Version(),
		BootTime:       time.Unix(int64(bootSec), 0).UTC(),
	}, nil
}

// osVersion возвращает версию ОС в духе uname -v: на Linux это строка
// сборки ядра из procfs, на прочих платформах — версия платформы как
// ближайшее доступное приближение
func (c *Collector) osVersion(fallback string) string {
	if v := readSysfsString(c.procVersionPath); v != "" {
		return v
	}
	return fallback
}

// collectCPU собирает метрики процессора. Частоты и load average
// опциональны: их отсутствие — штатная ситуация, не ошибка.
func (c *Collector) collectCPU(ctx context.Context) (*CPUInfo, error) {
	physical, err := cpu.CountsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get physical core count: %w", err)
	}

	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get logical core count: %w", err)
	}

	perCore, err := cpu.PercentWithContext(ctx, cpuSampleWindow, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get CPU usage: %w", err)
	}
	for i := range perCore {
		perCore[i] = clampPercent(perCore[i])
	}

	var total float64
	for _, p := range perCore {
		total += p
	}
	if len(perCore) > 0 {
		total = clampPercent(total / float64(len(perCore)))
	}

	info := &CPUInfo{
		PhysicalCores: physical,
		TotalCores:    logical,
		UsagePercent:  total,
		PerCore:       perCore,
	}

	info.FreqMHz, info.FreqMinMHz, info.FreqMaxMHz = c.cpuFrequencies(ctx)

	if avg, err := load.AvgWithContext(ctx); err == nil {
		info.LoadAverage = &LoadAverage{
			Load1:  avg.Load1,
			Load5:  avg.Load5,
			Load15: avg.Load15,
		}
	} else {
		// Нет load average — структурное отсутствие, как на Windows
		c.logger.Debug("Load average not available", zap.Error(err))
	}

	return info, nil
}

// cpuFrequencies читает текущую/мин/макс частоту. Сначала cpufreq в sysfs
// (там частоты в кГц), затем gopsutil как запасной источник текущей.
func (c *Collector) cpuFrequencies(ctx context.Context) (cur, min, max *float64) {
	readKHz := func(name string) *float64 {
		raw, err := os.ReadFile(filepath.Join(c.cpufreqRoot, name))
		if err != nil {
			return nil
		}
		khz, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
		if err != nil {
			return nil
		}
		mhz := khz / 1000
		return &mhz
	}

	cur = readKHz("scaling_cur_freq")
	min = readKHz("cpuinfo_min_freq")
	max = readKHz("cpuinfo_max_freq")

	if cur == nil {
		if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 && cpus[0].Mhz > 0 {
			mhz := cpus[0].Mhz
			cur = &mhz
		}
	}
	return cur, min, max
}

// collectMemory собирает метрики RAM и swap
func (c *Collector) collectMemory(ctx context.Context) (*MemoryInfo, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get virtual memory: %w", err)
	}

	info := &MemoryInfo{
		RAMTotal:     vm.Total,
		RAMAvailable: vm.Available,
		RAMUsed:      vm.Used,
		RAMPercent:   clampPercent(vm.UsedPercent),
	}

	if swap, err := mem.SwapMemoryWithContext(ctx); err == nil {
		info.SwapTotal = swap.Total
		info.SwapUsed = swap.Used
		info.SwapPercent = clampPercent(swap.UsedPercent)
	} else {
		c.logger.Warn("Failed to get swap memory", zap.Error(err))
	}

	return info, nil
}

// collectDisks перечисляет разделы и счетчики ввода-вывода. Отказ одной
// точки монтирования оставляет пустыми только поля размера этого раздела.
func (c *Collector) collectDisks(ctx context.Context) DiskInfo {
	info := DiskInfo{IOCounters: map[string]DiskIOCounters{}}

	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		c.logger.Warn("Failed to list disk partitions", zap.Error(err))
	}
	for _, p := range parts {
		entry := Partition{
			Device:     p.Device,
			Mountpoint: p.Mountpoint,
			Fstype:     p.Fstype,
		}
		if usage, err := disk.UsageWithContext(ctx, p.Mountpoint); err == nil {
			total, used := usage.Total, usage.Used
			pct := clampPercent(usage.UsedPercent)
			entry.Total = &total
			entry.Used = &used
			entry.UsedPercent = &pct
		} else {
			c.logger.Debug("Failed to stat mountpoint",
				zap.String("mountpoint", p.Mountpoint),
				zap.Error(err))
		}
		info.Partitions = append(info.Partitions, entry)
	}

	if counters, err := disk.IOCountersWithContext(ctx); err == nil {
		for dev, st := range counters {
			info.IOCounters[dev] = DiskIOCounters{
				ReadCount:  st.ReadCount,
				WriteCount: st.WriteCount,
				ReadBytes:  st.ReadBytes,
				WriteBytes: st.WriteBytes,
				ReadTime:   st.ReadTime,
				WriteTime:  st.WriteTime,
			}
		}
	} else {
		c.logger.Debug("Failed to get disk IO counters", zap.Error(err))
	}

	return info
}

// collectNetwork собирает состояние интерфейсов и их счетчики трафика
func (c *Collector) collectNetwork(ctx context.Context) NetworkInfo {
	info := NetworkInfo{Interfaces: map[string]InterfaceInfo{}}

	ifaces, err := net.InterfacesWithContext(ctx)
	if err != nil {
		c.logger.Warn("Failed to list network interfaces", zap.Error(err))
		return info
	}

	perNIC := map[string]net.IOCountersStat{}
	if counters, err := net.IOCountersWithContext(ctx, true); err == nil {
		for _, st := range counters {
			perNIC[st.Name] = st
		}
	}

	for _, iface := range ifaces {
		entry := InterfaceInfo{
			Addresses: []string{},
		}
		for _, flag := range iface.Flags {
			if flag == "up" {
				entry.IsUp = true
				break
			}
		}
		if iface.MTU > 0 {
			mtu := iface.MTU
			entry.MTU = &mtu
		}
		for _, addr := range iface.Addrs {
			if addr.Addr != "" {
				entry.Addresses = append(entry.Addresses, addr.Addr)
			}
		}
		entry.SpeedMbps = c.linkSpeed(iface.Name)
		if st, ok := perNIC[iface.Name]; ok {
			entry.IO = &NetIOCounters{
				BytesSent:   st.BytesSent,
				BytesRecv:   st.BytesRecv,
				PacketsSent: st.PacketsSent,
				PacketsRecv: st.PacketsRecv,
			}
		}
		info.Interfaces[iface.Name] = entry
	}

	return info
}

// linkSpeed читает скорость линка из sysfs; вне Linux значения нет
func (c *Collector) linkSpeed(name string) *int64 {
	raw, err := os.ReadFile(filepath.Join(c.netSysRoot, name, "speed"))
	if err != nil {
		return nil
	}
	speed, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil || speed < 0 {
		return nil
	}
	return &speed
}

// collectTemperatures группирует показания датчиков по имени чипа.
// Пустой результат означает отсутствие датчиков на хосте.
func (c *Collector) collectTemperatures(ctx context.Context) map[string][]TemperatureReading {
	stats, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil || len(stats) == 0 {
		return nil
	}

	out := map[string][]TemperatureReading{}
	for _, st := range stats {
		chip, label := splitSensorKey(st.SensorKey)
		reading := TemperatureReading{
			Label:   label,
			Current: st.Temperature,
		}
		if st.High > 0 {
			high := st.High
			reading.High = &high
		}
		if st.Critical > 0 {
			crit := st.Critical
			reading.Critical = &crit
		}
		out[chip] = append(out[chip], reading)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// splitSensorKey делит ключ вида "coretemp_core_0" на чип и метку
func splitSensorKey(key string) (chip, label string) {
	if i := strings.Index(key, "_"); i > 0 && i < len(key)-1 {
		return key[:i], key[i+1:]
	}
	return key, key
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
