package export

import (
	"time"

	"sysmon/internal/collector"
)

func floatPtr(v float64) *float64 { return &v }
func uintPtr(v uint64) *uint64    { return &v }
func intPtr(v int) *int           { return &v }

// testSnapshot строит снимок хоста без батареи и без GPU
func testSnapshot() *collector.Snapshot {
	total := uint64(100 << 30)
	used := uint64(40 << 30)

	return &collector.Snapshot{
		Timestamp: time.Date(2024, 5, 14, 12, 30, 0, 0, time.UTC),
		OS: collector.OSInfo{
			System:         "linux",
			Node:           "testhost",
			Release:        "6.8.0",
			Version:        "Ubuntu 24.04",
			Machine:        "x86_64",
			Processor:      "Test CPU @ 3.00GHz",
			RuntimeVersion: "go1.23",
			BootTime:       time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		},
		CPU: collector.CPUInfo{
			PhysicalCores: 4,
			TotalCores:    8,
			UsagePercent:  12.5,
			PerCore:       []float64{10, 15, 12, 13, 11, 14, 12, 13},
			FreqMHz:       floatPtr(2900),
			LoadAverage:   &collector.LoadAverage{Load1: 0.5, Load5: 0.4, Load15: 0.3},
		},
		Memory: collector.MemoryInfo{
			RAMTotal:     32 << 30,
			RAMAvailable: 20 << 30,
			RAMUsed:      12 << 30,
			RAMPercent:   37.5,
			SwapTotal:    8 << 30,
			SwapUsed:     1 << 30,
			SwapPercent:  12.5,
		},
		Disks: collector.DiskInfo{
			Partitions: []collector.Partition{
				{
					Device:      "/dev/sda1",
					Mountpoint:  "/",
					Fstype:      "ext4",
					Total:       &total,
					Used:        &used,
					UsedPercent: floatPtr(40),
				},
				// Недоступная точка монтирования: размеры отсутствуют
				{Device: "/dev/sdb1", Mountpoint: "/restricted", Fstype: "ext4"},
			},
			IOCounters: map[string]collector.DiskIOCounters{
				"sda": {ReadCount: 100, WriteCount: 50, ReadBytes: 1 << 20, WriteBytes: 512 << 10},
			},
		},
		Network: collector.NetworkInfo{
			Interfaces: map[string]collector.InterfaceInfo{
				"eth0": {
					IsUp:      true,
					MTU:       intPtr(1500),
					Addresses: []string{"192.0.2.10", "fe80::1"},
					IO: &collector.NetIOCounters{
						BytesSent:   1 << 20,
						BytesRecv:   10 << 20,
						PacketsSent: 1000,
						PacketsRecv: 2000,
					},
				},
				"lo": {IsUp: true, MTU: intPtr(65536), Addresses: []string{"127.0.0.1"}},
			},
		},
		Battery:      nil,
		Temperatures: nil,
		GPUs:         nil,
		ProcessCount: 321,
		TopProcesses: []collector.ProcessSample{
			{PID: 100, Name: "browser", CPUPercent: 55.5, RSSBytes: 2 << 30},
			{PID: 200, Name: "compiler", CPUPercent: 30.0, RSSBytes: 1 << 30},
		},
	}
}
