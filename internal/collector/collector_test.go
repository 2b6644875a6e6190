package collector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 0.0, clampPercent(-5))
	assert.Equal(t, 42.5, clampPercent(42.5))
	assert.Equal(t, 100.0, clampPercent(100.01))
}

func TestSplitSensorKey(t *testing.T) {
	tests := []struct {
		key   string
		chip  string
		label string
	}{
		{key: "coretemp_core_0", chip: "coretemp", label: "core_0"},
		{key: "acpitz", chip: "acpitz", label: "acpitz"},
		{key: "nvme_composite", chip: "nvme", label: "composite"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			chip, label := splitSensorKey(tt.key)
			assert.Equal(t, tt.chip, chip)
			assert.Equal(t, tt.label, label)
		})
	}
}

func TestLinkSpeed(t *testing.T) {
	root := t.TempDir()
	c := New(zap.NewNop(), nil, 10)
	c.netSysRoot = root

	eth := filepath.Join(root, "eth0")
	require.NoError(t, os.MkdirAll(eth, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(eth, "speed"), []byte("1000\n"), 0o644))

	speed := c.linkSpeed("eth0")
	require.NotNil(t, speed)
	assert.Equal(t, int64(1000), *speed)

	// Интерфейс без линка сообщает -1 — значения нет
	wl := filepath.Join(root, "wlan0")
	require.NoError(t, os.MkdirAll(wl, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(wl, "speed"), []byte("-1\n"), 0o644))
	assert.Nil(t, c.linkSpeed("wlan0"))

	assert.Nil(t, c.linkSpeed("missing0"))
}

func TestOSVersionPrefersKernelBuildString(t *testing.T) {
	c := New(zap.NewNop(), nil, 10)

	path := filepath.Join(t.TempDir(), "version")
	require.NoError(t, os.WriteFile(path, []byte("#1 SMP PREEMPT_DYNAMIC Fri Mar  1 12:00:00 UTC 2024\n"), 0o644))
	c.procVersionPath = path

	assert.Equal(t, "#1 SMP PREEMPT_DYNAMIC Fri Mar  1 12:00:00 UTC 2024", c.osVersion("24.04"))

	// Вне Linux строки сборки нет — остается версия платформы
	c.procVersionPath = filepath.Join(t.TempDir(), "missing")
	assert.Equal(t, "24.04", c.osVersion("24.04"))
}

// Отмена по ходу сбора прерывает тик целиком: недостроенный снимок
// никогда не возвращается вызывающему
func TestCollectAbortsWhenContextCancelled(t *testing.T) {
	c := New(zap.NewNop(), nil, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap, err := c.Collect(ctx)
	require.Error(t, err)
	assert.Nil(t, snap)
}

func TestCPUFrequenciesFromSysfs(t *testing.T) {
	root := t.TempDir()
	c := New(zap.NewNop(), nil, 10)
	c.cpufreqRoot = root

	require.NoError(t, os.WriteFile(filepath.Join(root, "scaling_cur_freq"), []byte("2900000\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "cpuinfo_min_freq"), []byte("800000\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "cpuinfo_max_freq"), []byte("4200000\n"), 0o644))

	cur, min, max := c.cpuFrequencies(context.Background())
	require.NotNil(t, cur)
	require.NotNil(t, min)
	require.NotNil(t, max)
	assert.Equal(t, 2900.0, *cur)
	assert.Equal(t, 800.0, *min)
	assert.Equal(t, 4200.0, *max)
}
