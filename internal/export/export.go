package export

import "sysmon/internal/collector"

// Exporter записывает полностью собранный снимок в свой приемник.
// Экспортеры независимы: отказ одного не влияет на остальные.
type Exporter interface {
	Name() string
	Export(snap *collector.Snapshot) error
}
