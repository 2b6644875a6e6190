package collector

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// collectBattery читает состояние батареи из /sys/class/power_supply.
// Отсутствие каталога BAT* означает хост без батареи — домен отсутствует.
func (c *Collector) collectBattery() *BatteryInfo {
	matches, err := filepath.Glob(filepath.Join(c.powerSupplyRoot, "BAT*", "capacity"))
	if err != nil {
		return nil
	}

	for _, capPath := range matches {
		base := filepath.Dir(capPath)

		pct, err := readSysfsFloat(capPath)
		if err != nil {
			continue
		}

		status := readSysfsString(filepath.Join(base, "status"))
		info := &BatteryInfo{
			Percent:      clampPercent(pct),
			PowerPlugged: status != "Discharging",
		}

		// Остаток времени считается только при разряде и только когда
		// ядро отдает и запас энергии, и текущую мощность
		if !info.PowerPlugged {
			energy, errE := readSysfsFloat(filepath.Join(base, "energy_now"))
			power, errP := readSysfsFloat(filepath.Join(base, "power_now"))
			if errE == nil && errP == nil && power > 0 {
				secs := int64(energy / power * 3600)
				info.SecsLeft = &secs
			}
		}

		return info
	}

	return nil
}

func readSysfsFloat(path string) (float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
}

func readSysfsString(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
