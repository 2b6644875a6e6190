package export

import (
	"bytes"
	"strings"
	"testing"

	"sysmon/internal/collector"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableRendersHostWithoutBatteryAndGPU(t *testing.T) {
	var buf bytes.Buffer
	snap := testSnapshot()

	require.NoError(t, NewTable(&buf).Export(snap))
	out := buf.String()

	assert.Contains(t, out, "testhost — linux 6.8.0 (x86_64)")
	assert.Contains(t, out, "CPU: 4 phys / 8 total")
	assert.Contains(t, out, "Load avg: 0.50 0.40 0.30")
	assert.Contains(t, out, "Per-core: 10.0%, 15.0%, 12.0%, 13.0%, 11.0%, 14.0%, 12.0%, 13.0%")
	assert.Contains(t, out, "RAM: 12.0 GiB/32.0 GiB (37.5%)")
	assert.Contains(t, out, "/dev/sda1 -> / [ext4] 40.0 GiB/100.0 GiB (40.0%)")
	assert.Contains(t, out, "Top processes (by CPU, then RSS):")
	assert.Contains(t, out, "browser")

	// Отсутствующие домены не печатаются вовсе
	assert.NotContains(t, out, "Battery:")
	assert.NotContains(t, out, "GPU (")
	assert.NotContains(t, out, "Temperatures:")
}

func TestTableRendersPlaceholdersForAbsentFields(t *testing.T) {
	var buf bytes.Buffer
	snap := testSnapshot()
	snap.CPU.FreqMHz = nil
	snap.CPU.LoadAverage = nil

	require.NoError(t, NewTable(&buf).Export(snap))
	out := buf.String()

	assert.Contains(t, out, "Freq: n/a MHz")
	assert.NotContains(t, out, "Load avg")
	// Раздел с недоступной точкой монтирования
	assert.Contains(t, out, "/dev/sdb1 -> /restricted [ext4] n/a/n/a (n/a)")
	// Скорость линка неизвестна
	assert.Contains(t, out, "eth0 [UP] n/a MTU 1500")
}

func TestTableRendersOptionalSections(t *testing.T) {
	var buf bytes.Buffer
	snap := testSnapshot()

	secs := int64(5400)
	snap.Battery = &collector.BatteryInfo{Percent: 88, SecsLeft: &secs, PowerPlugged: false}
	snap.Temperatures = map[string][]collector.TemperatureReading{
		"coretemp": {{Label: "core_0", Current: 48.5}},
	}
	driver := "535.161.07"
	snap.GPUs = &collector.GPUReport{
		Backend: "nvidia-smi",
		GPUs: []collector.GPUInfo{
			{Index: 0, Name: "RTX 3080", DriverVersion: &driver, MemoryTotalMB: 10240, MemoryUsedMB: 2048, UtilPercent: 37, TemperatureC: 62},
		},
	}

	require.NoError(t, NewTable(&buf).Export(snap))
	out := buf.String()

	assert.Contains(t, out, "Battery: 88% | Plugged: false | Secs left: 5400")
	assert.Contains(t, out, "coretemp: core_0: 48.5°C")
	assert.Contains(t, out, "GPU (nvidia-smi):")
	assert.Contains(t, out, "[0] RTX 3080 | driver 535.161.07 | mem 2048/10240 MB | util 37% | 62°C")
}

func TestTableSectionOrder(t *testing.T) {
	var buf bytes.Buffer
	snap := testSnapshot()
	snap.Battery = &collector.BatteryInfo{Percent: 50, PowerPlugged: true}

	require.NoError(t, NewTable(&buf).Export(snap))
	out := buf.String()

	positions := []int{
		strings.Index(out, "CPU:"),
		strings.Index(out, "RAM:"),
		strings.Index(out, "Disks:"),
		strings.Index(out, "Network:"),
		strings.Index(out, "Battery:"),
		strings.Index(out, "Top processes"),
	}
	for i, pos := range positions {
		require.GreaterOrEqual(t, pos, 0, "section %d missing", i)
		if i > 0 {
			assert.Greater(t, pos, positions[i-1], "section %d out of order", i)
		}
	}
}
