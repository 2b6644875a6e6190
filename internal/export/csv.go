package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"sysmon/internal/collector"
)

// Колонки компактного временного ряда
var csvHeader = []string{
	"timestamp",
	"host",
	"cpu_usage_percent",
	"ram_percent",
	"swap_percent",
	"process_count",
}

// CSVExporter дописывает по одной компактной строке на тик.
// Заголовок пишется только если файла еще не было; существующее
// содержимое никогда не переписывается.
type CSVExporter struct {
	path string
}

// NewCSV создает CSV-экспортер для указанного пути
func NewCSV(path string) *CSVExporter {
	return &CSVExporter{path: path}
}

func (e *CSVExporter) Name() string { return "csv" }

// Export добавляет строку снимка в конец файла
func (e *CSVExporter) Export(snap *collector.Snapshot) error {
	_, statErr := os.Stat(e.path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(e.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
	}

	row := []string{
		snap.Timestamp.Format(time.RFC3339),
		snap.OS.Node,
		strconv.FormatFloat(snap.CPU.UsagePercent, 'f', 1, 64),
		strconv.FormatFloat(snap.Memory.RAMPercent, 'f', 1, 64),
		strconv.FormatFloat(snap.Memory.SwapPercent, 'f', 1, 64),
		strconv.Itoa(snap.ProcessCount),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write csv row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return nil
}
