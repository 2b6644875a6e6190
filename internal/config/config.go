package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// Интервал по умолчанию для непрерывного режима; применяется и когда
// задан неположительный интервал
const DefaultInterval = 5 * time.Second

// DefaultTopN — размер топа процессов по умолчанию
const DefaultTopN = 10

// Config содержит всю конфигурацию приложения
type Config struct {
	// Режим работы
	Once     bool
	Interval time.Duration

	// Приемники
	JSONPath string
	CSVPath  string
	Quiet    bool

	// Сбор
	TopN int

	// Общие настройки
	LogLevel string

	// Профилирование
	ProfileEnable   bool
	ProfileHTTPPort int
	ProfileCPUFile  string
	ProfileMemFile  string
	ProfileTime     int
}

// NewConfig создает новую конфигурацию со значениями по умолчанию
func NewConfig() *Config {
	return &Config{
		Once:            false,
		Interval:        DefaultInterval,
		JSONPath:        "",
		CSVPath:         "",
		Quiet:           false,
		TopN:            DefaultTopN,
		LogLevel:        "info",
		ProfileEnable:   false,
		ProfileHTTPPort: 6060,
		ProfileCPUFile:  "",
		ProfileMemFile:  "",
		ProfileTime:     30,
	}
}

// Load загружает конфигурацию из переменных окружения и флагов командной
// строки; флаги имеют приоритет
func (c *Config) Load(cmd *cobra.Command) error {
	c.loadFromEnv()

	if cmd.Flags().Changed("once") {
		c.Once, _ = cmd.Flags().GetBool("once")
	}
	if cmd.Flags().Changed("interval") {
		intervalSec, _ := cmd.Flags().GetInt("interval")
		c.Interval = time.Duration(intervalSec) * time.Second
	}
	if cmd.Flags().Changed("json") {
		c.JSONPath, _ = cmd.Flags().GetString("json")
	}
	if cmd.Flags().Changed("csv") {
		c.CSVPath, _ = cmd.Flags().GetString("csv")
	}
	if cmd.Flags().Changed("quiet") {
		c.Quiet, _ = cmd.Flags().GetBool("quiet")
	}
	if cmd.Flags().Changed("top") {
		c.TopN, _ = cmd.Flags().GetInt("top")
	}
	if cmd.Flags().Changed("log-level") {
		c.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("profile") {
		c.ProfileEnable, _ = cmd.Flags().GetBool("profile")
	}
	if cmd.Flags().Changed("profile-http-port") {
		c.ProfileHTTPPort, _ = cmd.Flags().GetInt("profile-http-port")
	}
	if cmd.Flags().Changed("profile-cpu") {
		c.ProfileCPUFile, _ = cmd.Flags().GetString("profile-cpu")
	}
	if cmd.Flags().Changed("profile-mem") {
		c.ProfileMemFile, _ = cmd.Flags().GetString("profile-mem")
	}
	if cmd.Flags().Changed("profile-time") {
		c.ProfileTime, _ = cmd.Flags().GetInt("profile-time")
	}

	return c.Validate()
}

// loadFromEnv загружает конфигурацию из переменных окружения
func (c *Config) loadFromEnv() {
	if onceStr := os.Getenv("SYSMON_ONCE"); onceStr != "" {
		if once, err := strconv.ParseBool(onceStr); err == nil {
			c.Once = once
		}
	}
	if intervalStr := os.Getenv("SYSMON_INTERVAL"); intervalStr != "" {
		if intervalSec, err := strconv.Atoi(intervalStr); err == nil {
			c.Interval = time.Duration(intervalSec) * time.Second
		}
	}
	if jsonPath := os.Getenv("SYSMON_JSON"); jsonPath != "" {
		c.JSONPath = jsonPath
	}
	if csvPath := os.Getenv("SYSMON_CSV"); csvPath != "" {
		c.CSVPath = csvPath
	}
	if quietStr := os.Getenv("SYSMON_QUIET"); quietStr != "" {
		if quiet, err := strconv.ParseBool(quietStr); err == nil {
			c.Quiet = quiet
		}
	}
	if topStr := os.Getenv("SYSMON_TOP"); topStr != "" {
		if top, err := strconv.Atoi(topStr); err == nil {
			c.TopN = top
		}
	}
	if logLevel := os.Getenv("SYSMON_LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}
	if profileStr := os.Getenv("SYSMON_PROFILE_ENABLE"); profileStr != "" {
		if profile, err := strconv.ParseBool(profileStr); err == nil {
			c.ProfileEnable = profile
		}
	}
	if portStr := os.Getenv("SYSMON_PROFILE_HTTP_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			c.ProfileHTTPPort = port
		}
	}
	if cpuFile := os.Getenv("SYSMON_PROFILE_CPU_FILE"); cpuFile != "" {
		c.ProfileCPUFile = cpuFile
	}
	if memFile := os.Getenv("SYSMON_PROFILE_MEM_FILE"); memFile != "" {
		c.ProfileMemFile = memFile
	}
	if profileTimeStr := os.Getenv("SYSMON_PROFILE_TIME"); profileTimeStr != "" {
		if profileTime, err := strconv.Atoi(profileTimeStr); err == nil {
			c.ProfileTime = profileTime
		}
	}
}

// Validate проверяет и нормализует конфигурацию. Неположительный интервал
// и размер топа не ошибка — они заменяются значениями по умолчанию.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.TopN <= 0 {
		c.TopN = DefaultTopN
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	if c.ProfileEnable {
		if c.ProfileHTTPPort <= 0 || c.ProfileHTTPPort > 65535 {
			return fmt.Errorf("invalid profile HTTP port: %d", c.ProfileHTTPPort)
		}
		if c.ProfileTime <= 0 {
			return fmt.Errorf("profile time must be positive")
		}
	}

	return nil
}

// AddFlags добавляет флаги в cobra команду
func AddFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("once", false, "Run a single sample and exit")
	cmd.Flags().Int("interval", 5, "Sampling interval in seconds for continuous mode")
	cmd.Flags().String("json", "", "Write full snapshot to a JSON file (overwritten per tick)")
	cmd.Flags().String("csv", "", "Append a compact time-series row to a CSV file per tick")
	cmd.Flags().Bool("quiet", false, "Suppress console table output")
	cmd.Flags().Int("top", 10, "Number of top processes to report")
	cmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")

	// Флаги профилирования
	cmd.Flags().Bool("profile", false, "Enable profiling")
	cmd.Flags().Int("profile-http-port", 6060, "HTTP port for pprof endpoints")
	cmd.Flags().String("profile-cpu", "", "CPU profile output file")
	cmd.Flags().String("profile-mem", "", "Memory profile output file")
	cmd.Flags().Int("profile-time", 30, "CPU profile duration in seconds")
}
