package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Calendar struct {
		Path          string `yaml:"path"`
		ReloadSeconds int    `yaml:"reload_seconds"`
	} `yaml:"calendar"`

	BankHolidays struct {
		Enabled           bool    `yaml:"enabled"`
		BaseURL           string  `yaml:"base_url"`
		Division          string  `yaml:"division"`
		CacheTTLSeconds   int     `yaml:"cache_ttl_seconds"`
		TimeoutSeconds    int     `yaml:"timeout_seconds"`
		RetryCount        int     `yaml:"retry_count"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"bank_holidays"`

	Report struct {
		Workers                      int    `yaml:"workers"`
		FailFast                     bool   `yaml:"fail_fast"`
		DefaultTurnaroundWorkingDays *int   `yaml:"default_turnaround_working_days"`
		TurnaroundLookbackDays       int    `yaml:"turnaround_lookback_days"`
		OutputDir                    string `yaml:"output_dir"`
		RetentionDays                int    `yaml:"retention_days"`
		ScheduleEnabled              bool   `yaml:"schedule_enabled"`
		RunOnStart                   bool   `yaml:"run_on_start"`
	} `yaml:"report"`

	Monitoring struct {
		HealthCheckPort   int    `yaml:"health_check_port"`
		PrometheusEnabled bool   `yaml:"prometheus_enabled"`
		PrometheusPort    int    `yaml:"prometheus_port"`
		Namespace         string `yaml:"namespace"`
	} `yaml:"monitoring"`
}

// Load reads the YAML config at path, expanding ${ENV_VAR} placeholders.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = "data/bedreport.db"
	}
	if c.Backup.Path == "" {
		c.Backup.Path = "data/backups"
	}
	if c.Calendar.Path == "" {
		c.Calendar.Path = "configs/calendar.yaml"
	}
	if c.Report.Workers <= 0 {
		c.Report.Workers = 8
	}
	if c.Report.TurnaroundLookbackDays <= 0 {
		c.Report.TurnaroundLookbackDays = 31
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = "reports"
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Monitoring.Namespace == "" {
		c.Monitoring.Namespace = "bedreport"
	}
}

// Validate rejects values that defaults cannot repair.
func (c *Config) Validate() error {
	if c.Report.DefaultTurnaroundWorkingDays != nil && *c.Report.DefaultTurnaroundWorkingDays < 0 {
		return fmt.Errorf("report.default_turnaround_working_days: must not be negative")
	}
	if c.Report.RetentionDays < 0 {
		return fmt.Errorf("report.retention_days: must not be negative")
	}
	if c.BankHolidays.CacheTTLSeconds < 0 {
		return fmt.Errorf("bank_holidays.cache_ttl_seconds: must not be negative")
	}
	return nil
}

// TurnaroundWorkingDays returns the default turnaround for bookings without one.
func (c *Config) TurnaroundWorkingDays() int {
	if c.Report.DefaultTurnaroundWorkingDays == nil {
		return 2
	}
	return *c.Report.DefaultTurnaroundWorkingDays
}

func (c *Config) CalendarReloadInterval() time.Duration {
	if c.Calendar.ReloadSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Calendar.ReloadSeconds) * time.Second
}

func (c *Config) BankHolidayCacheTTL() time.Duration {
	return time.Duration(c.BankHolidays.CacheTTLSeconds) * time.Second
}

func (c *Config) BankHolidayTimeout() time.Duration {
	if c.BankHolidays.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.BankHolidays.TimeoutSeconds) * time.Second
}

func (c *Config) BackupInterval() time.Duration {
	if c.Backup.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}
