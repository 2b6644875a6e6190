package units

import "fmt"

// Лестница двоичных приставок, как в выводе free/df -h
var suffixes = [...]string{"B", "KiB", "MiB", "GiB", "TiB"}

// FormatBytes форматирует число байт в человекочитаемую строку
// с двоичной приставкой (1024-я шкала) и одним знаком после запятой
func FormatBytes(n uint64) string {
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(suffixes)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", v, suffixes[i])
}

// FormatBytesPtr форматирует опциональное число байт,
// возвращая "n/a" для отсутствующего значения
func FormatBytesPtr(n *uint64) string {
	if n == nil {
		return "n/a"
	}
	return FormatBytes(*n)
}
