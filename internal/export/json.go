package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"sysmon/internal/collector"
)

// JSONExporter пишет полный снимок в файл, перезаписывая его на каждом
// тике. Запись идет во временный файл с последующим переименованием,
// чтобы читатель не увидел недописанный документ.
type JSONExporter struct {
	path string
}

// NewJSON создает JSON-экспортер для указанного пути
func NewJSON(path string) *JSONExporter {
	return &JSONExporter{path: path}
}

func (e *JSONExporter) Name() string { return "json" }

// Export сериализует снимок и атомарно подменяет файл
func (e *JSONExporter) Export(snap *collector.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	dir := filepath.Dir(e.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(e.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), e.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", e.path, err)
	}

	return nil
}
