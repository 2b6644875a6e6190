package collector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeBatteryFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content+"\n"), 0o644))
}

func newBatteryCollector(t *testing.T) (*Collector, string) {
	t.Helper()
	root := t.TempDir()
	c := New(zap.NewNop(), nil, 10)
	c.powerSupplyRoot = root
	return c, root
}

func TestCollectBatteryAbsent(t *testing.T) {
	c, _ := newBatteryCollector(t)
	assert.Nil(t, c.collectBattery())
}

func TestCollectBatteryDischarging(t *testing.T) {
	c, root := newBatteryCollector(t)
	bat := filepath.Join(root, "BAT0")
	require.NoError(t, os.MkdirAll(bat, 0o755))
	writeBatteryFile(t, bat, "capacity", "73")
	writeBatteryFile(t, bat, "status", "Discharging")
	writeBatteryFile(t, bat, "energy_now", "36000000")
	writeBatteryFile(t, bat, "power_now", "12000000")

	info := c.collectBattery()
	require.NotNil(t, info)
	assert.Equal(t, 73.0, info.Percent)
	assert.False(t, info.PowerPlugged)
	require.NotNil(t, info.SecsLeft)
	// 36 Вт·ч при 12 Вт — три часа
	assert.Equal(t, int64(3*3600), *info.SecsLeft)
}

func TestCollectBatteryCharging(t *testing.T) {
	c, root := newBatteryCollector(t)
	bat := filepath.Join(root, "BAT0")
	require.NoError(t, os.MkdirAll(bat, 0o755))
	writeBatteryFile(t, bat, "capacity", "100")
	writeBatteryFile(t, bat, "status", "Full")

	info := c.collectBattery()
	require.NotNil(t, info)
	assert.Equal(t, 100.0, info.Percent)
	assert.True(t, info.PowerPlugged)
	assert.Nil(t, info.SecsLeft)
}

func TestCollectBatteryMalformedCapacity(t *testing.T) {
	c, root := newBatteryCollector(t)
	bat := filepath.Join(root, "BAT0")
	require.NoError(t, os.MkdirAll(bat, 0o755))
	writeBatteryFile(t, bat, "capacity", "not-a-number")

	assert.Nil(t, c.collectBattery())
}
