package export

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"sysmon/internal/collector"
	"sysmon/internal/units"
)

const tableWidth = 80

// TableExporter печатает снимок в человекочитаемом виде с разделами в
// фиксированном порядке. Отсутствующие опциональные значения выводятся
// как "n/a"; рендеринг никогда не прерывает работу.
type TableExporter struct {
	w io.Writer
}

// NewTable создает табличный экспортер, пишущий в w
func NewTable(w io.Writer) *TableExporter {
	return &TableExporter{w: w}
}

func (e *TableExporter) Name() string { return "table" }

// Export печатает снимок целиком
func (e *TableExporter) Export(snap *collector.Snapshot) error {
	rule := strings.Repeat("=", tableWidth)
	sep := strings.Repeat("-", tableWidth)

	fmt.Fprintln(e.w, rule)
	fmt.Fprintf(e.w, "%s — %s %s (%s) | %s\n",
		snap.OS.Node, snap.OS.System, snap.OS.Release, snap.OS.Machine, snap.OS.RuntimeVersion)
	fmt.Fprintf(e.w, "Boot: %s | Time: %s\n",
		snap.OS.BootTime.Format(time.RFC3339), snap.Timestamp.Format(time.RFC3339))

	e.writeCPU(snap, sep)
	e.writeMemory(snap, sep)
	e.writeDisks(snap, sep)
	e.writeNetwork(snap, sep)

	if snap.Battery != nil {
		fmt.Fprintln(e.w, sep)
		secs := "n/a"
		if snap.Battery.SecsLeft != nil {
			secs = fmt.Sprintf("%d", *snap.Battery.SecsLeft)
		}
		fmt.Fprintf(e.w, "Battery: %.0f%% | Plugged: %t | Secs left: %s\n",
			snap.Battery.Percent, snap.Battery.PowerPlugged, secs)
	}

	if len(snap.Temperatures) > 0 {
		fmt.Fprintln(e.w, sep)
		fmt.Fprintln(e.w, "Temperatures:")
		chips := make([]string, 0, len(snap.Temperatures))
		for chip := range snap.Temperatures {
			chips = append(chips, chip)
		}
		sort.Strings(chips)
		for _, chip := range chips {
			readings := snap.Temperatures[chip]
			if len(readings) > 3 {
				readings = readings[:3]
			}
			parts := make([]string, 0, len(readings))
			for _, r := range readings {
				label := r.Label
				if label == "" {
					label = chip
				}
				parts = append(parts, fmt.Sprintf("%s: %.1f°C", label, r.Current))
			}
			fmt.Fprintf(e.w, "  %s: %s\n", chip, strings.Join(parts, ", "))
		}
	}

	if snap.GPUs != nil {
		fmt.Fprintln(e.w, sep)
		fmt.Fprintf(e.w, "GPU (%s):\n", snap.GPUs.Backend)
		for _, g := range snap.GPUs.GPUs {
			driver := "n/a"
			if g.DriverVersion != nil {
				driver = *g.DriverVersion
			}
			fmt.Fprintf(e.w, "  [%d] %s | driver %s | mem %.0f/%.0f MB | util %.0f%% | %.0f°C\n",
				g.Index, g.Name, driver, g.MemoryUsedMB, g.MemoryTotalMB, g.UtilPercent, g.TemperatureC)
		}
	}

	fmt.Fprintln(e.w, sep)
	fmt.Fprintln(e.w, "Top processes (by CPU, then RSS):")
	for _, p := range snap.TopProcesses {
		fmt.Fprintf(e.w, "  PID %-6d %-22s CPU %5.1f%%  RSS %s\n",
			p.PID, p.Name, p.CPUPercent, units.FormatBytes(p.RSSBytes))
	}
	fmt.Fprintln(e.w, rule)

	return nil
}

func (e *TableExporter) writeCPU(snap *collector.Snapshot, sep string) {
	fmt.Fprintln(e.w, sep)

	freq := "n/a"
	if snap.CPU.FreqMHz != nil {
		freq = fmt.Sprintf("%.0f", *snap.CPU.FreqMHz)
	}
	fmt.Fprintf(e.w, "CPU: %d phys / %d total | Freq: %s MHz\n",
		snap.CPU.PhysicalCores, snap.CPU.TotalCores, freq)

	if la := snap.CPU.LoadAverage; la != nil {
		fmt.Fprintf(e.w, "CPU Usage: %.1f%% | Load avg: %.2f %.2f %.2f\n",
			snap.CPU.UsagePercent, la.Load1, la.Load5, la.Load15)
	} else {
		fmt.Fprintf(e.w, "CPU Usage: %.1f%%\n", snap.CPU.UsagePercent)
	}

	cores := make([]string, 0, len(snap.CPU.PerCore))
	for _, p := range snap.CPU.PerCore {
		cores = append(cores, fmt.Sprintf("%.1f%%", p))
	}
	fmt.Fprintf(e.w, "Per-core: %s\n", strings.Join(cores, ", "))
}

func (e *TableExporter) writeMemory(snap *collector.Snapshot, sep string) {
	fmt.Fprintln(e.w, sep)
	m := snap.Memory
	fmt.Fprintf(e.w, "RAM: %s/%s (%.1f%%) | Swap: %s/%s (%.1f%%)\n",
		units.FormatBytes(m.RAMUsed), units.FormatBytes(m.RAMTotal), m.RAMPercent,
		units.FormatBytes(m.SwapUsed), units.FormatBytes(m.SwapTotal), m.SwapPercent)
}

func (e *TableExporter) writeDisks(snap *collector.Snapshot, sep string) {
	fmt.Fprintln(e.w, sep)
	fmt.Fprintln(e.w, "Disks:")
	for _, p := range snap.Disks.Partitions {
		pct := "n/a"
		if p.UsedPercent != nil {
			pct = fmt.Sprintf("%.1f%%", *p.UsedPercent)
		}
		fmt.Fprintf(e.w, "  %s -> %s [%s] %s/%s (%s)\n",
			p.Device, p.Mountpoint, p.Fstype,
			units.FormatBytesPtr(p.Used), units.FormatBytesPtr(p.Total), pct)
	}
}

func (e *TableExporter) writeNetwork(snap *collector.Snapshot, sep string) {
	fmt.Fprintln(e.w, sep)
	fmt.Fprintln(e.w, "Network:")

	names := make([]string, 0, len(snap.Network.Interfaces))
	for name := range snap.Network.Interfaces {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		iface := snap.Network.Interfaces[name]
		state := "DOWN"
		if iface.IsUp {
			state = "UP"
		}
		speed := "n/a"
		if iface.SpeedMbps != nil {
			speed = fmt.Sprintf("%dMbps", *iface.SpeedMbps)
		}
		mtu := "n/a"
		if iface.MTU != nil {
			mtu = fmt.Sprintf("%d", *iface.MTU)
		}
		addrs := iface.Addresses
		if len(addrs) > 3 {
			addrs = addrs[:3]
		}
		fmt.Fprintf(e.w, "  %s [%s] %s MTU %s | %s\n",
			name, state, speed, mtu, strings.Join(addrs, ", "))
		if iface.IO != nil {
			fmt.Fprintf(e.w, "    Sent: %s, Recv: %s, Pkts: %d/%d\n",
				units.FormatBytes(iface.IO.BytesSent), units.FormatBytes(iface.IO.BytesRecv),
				iface.IO.PacketsSent, iface.IO.PacketsRecv)
		}
	}
}
