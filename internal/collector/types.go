package collector

import "time"

// Snapshot содержит полный снимок телеметрии хоста на один момент времени.
// После сборки снимок не изменяется — каждый тик порождает новый экземпляр.
type Snapshot struct {
	Timestamp    time.Time                       `json:"timestamp"`
	OS           OSInfo                          `json:"os"`
	CPU          CPUInfo                         `json:"cpu"`
	Memory       MemoryInfo                      `json:"memory"`
	Disks        DiskInfo                        `json:"disks"`
	Network      NetworkInfo                     `json:"network"`
	Battery      *BatteryInfo                    `json:"battery"`
	Temperatures map[string][]TemperatureReading `json:"temperatures"`
	GPUs         *GPUReport                      `json:"gpus"`
	ProcessCount int                             `json:"process_count"`
	TopProcesses []ProcessSample                 `json:"top_processes"`
}

// OSInfo содержит сведения об операционной системе и хосте
type OSInfo struct {
	System         string    `json:"system"`
	Node           string    `json:"node"`
	Release        string    `json:"release"`
	Version        string    `json:"version"`
	Machine        string    `json:"machine"`
	Processor      string    `json:"processor"`
	RuntimeVersion string    `json:"runtime_version"`
	BootTime       time.Time `json:"boot_time"`
}

// LoadAverage содержит средние значения нагрузки за 1/5/15 минут.
// Отсутствует на платформах без этого понятия (Windows).
type LoadAverage struct {
	Load1  float64 `json:"1min"`
	Load5  float64 `json:"5min"`
	Load15 float64 `json:"15min"`
}

// CPUInfo содержит метрики процессора
type CPUInfo struct {
	PhysicalCores int          `json:"physical_cores"`
	TotalCores    int          `json:"total_cores"`
	UsagePercent  float64      `json:"usage_percent_total"`
	PerCore       []float64    `json:"usage_percent_per_core"`
	FreqMHz       *float64     `json:"frequency_mhz"`
	FreqMinMHz    *float64     `json:"frequency_min_mhz"`
	FreqMaxMHz    *float64     `json:"frequency_max_mhz"`
	LoadAverage   *LoadAverage `json:"load_average"`
}

// MemoryInfo содержит метрики оперативной памяти и swap
type MemoryInfo struct {
	RAMTotal     uint64  `json:"ram_total"`
	RAMAvailable uint64  `json:"ram_available"`
	RAMUsed      uint64  `json:"ram_used"`
	RAMPercent   float64 `json:"ram_percent"`
	SwapTotal    uint64  `json:"swap_total"`
	SwapUsed     uint64  `json:"swap_used"`
	SwapPercent  float64 `json:"swap_percent"`
}

// Partition описывает один смонтированный раздел. Поля размера
// отсутствуют, если точку монтирования не удалось опросить.
type Partition struct {
	Device      string   `json:"device"`
	Mountpoint  string   `json:"mountpoint"`
	Fstype      string   `json:"fstype"`
	Total       *uint64  `json:"total"`
	Used        *uint64  `json:"used"`
	UsedPercent *float64 `json:"percent"`
}

// DiskIOCounters содержит счетчики ввода-вывода одного устройства
type DiskIOCounters struct {
	ReadCount  uint64 `json:"read_count"`
	WriteCount uint64 `json:"write_count"`
	ReadBytes  uint64 `json:"read_bytes"`
	WriteBytes uint64 `json:"write_bytes"`
	ReadTime   uint64 `json:"read_time"`
	WriteTime  uint64 `json:"write_time"`
}

// DiskInfo содержит состояние дисковой подсистемы
type DiskInfo struct {
	Partitions []Partition               `json:"partitions"`
	IOCounters map[string]DiskIOCounters `json:"io_counters"`
}

// NetIOCounters содержит счетчики трафика одного интерфейса
type NetIOCounters struct {
	BytesSent   uint64 `json:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv"`
}

// InterfaceInfo описывает один сетевой интерфейс
type InterfaceInfo struct {
	IsUp      bool           `json:"isup"`
	SpeedMbps *int64         `json:"speed_mbps"`
	MTU       *int           `json:"mtu"`
	Addresses []string       `json:"addresses"`
	IO        *NetIOCounters `json:"io"`
}

// NetworkInfo содержит состояние всех сетевых интерфейсов
type NetworkInfo struct {
	Interfaces map[string]InterfaceInfo `json:"interfaces"`
}

// BatteryInfo содержит состояние батареи. SecsLeft отсутствует,
// когда остаток времени неизвестен или батарея заряжается.
type BatteryInfo struct {
	Percent      float64 `json:"percent"`
	SecsLeft     *int64  `json:"secsleft"`
	PowerPlugged bool    `json:"power_plugged"`
}

// TemperatureReading содержит одно показание температурного датчика
type TemperatureReading struct {
	Label    string   `json:"label"`
	Current  float64  `json:"current"`
	High     *float64 `json:"high"`
	Critical *float64 `json:"critical"`
}

// ProcessSample содержит метрики одного процесса из топа.
// CPUPercent может превышать 100 на многоядерных системах.
type ProcessSample struct {
	PID        int32   `json:"pid"`
	Name       string  `json:"name"`
	CPUPercent float64 `json:"cpu_percent"`
	RSSBytes   uint64  `json:"rss_bytes"`
}

// GPUInfo содержит метрики одного GPU в общем для всех бэкендов виде
type GPUInfo struct {
	Index         int     `json:"index"`
	Name          string  `json:"name"`
	DriverVersion *string `json:"driver_version"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	MemoryUsedMB  float64 `json:"memory_used_mb"`
	UtilPercent   float64 `json:"utilization_percent"`
	TemperatureC  float64 `json:"temperature_c"`
	UUID          string  `json:"uuid,omitempty"`
}

// GPUReport содержит данные GPU и имя бэкенда, который их предоставил
type GPUReport struct {
	Backend string    `json:"backend"`
	GPUs    []GPUInfo `json:"gpus"`
}
