package config

import (
	"os"
	"strings"
	"time"

	"github.com/mhalver/msiecctl/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	GPUFallbackNone = "none"
	GPUFallbackNVML = "nvml"

	// Defaults match the values the daemon has always shipped with:
	// engage at 60°C, release at 55°C, hold each state for at least 60s,
	// sample every 3s.
	defaultInterval     = 3
	defaultOnThreshold  = 60
	defaultOffThreshold = 55
	defaultDwell        = 60
	defaultTelemetryDB  = "/var/lib/msiecctl/telemetry.db"
)

type Config struct {
	Interval      int    `mapstructure:"interval"`
	OnThreshold   int    `mapstructure:"on_threshold"`
	OffThreshold  int    `mapstructure:"off_threshold"`
	Dwell         int    `mapstructure:"dwell"`
	Monitor       bool   `mapstructure:"monitor"`
	Debug         bool   `mapstructure:"debug"`
	Verbose       bool   `mapstructure:"verbose"`
	LogLevel      string `mapstructure:"log_level"`
	Telemetry     bool   `mapstructure:"telemetry"`
	TelemetryDB   string `mapstructure:"database"`
	GPUFallback   string `mapstructure:"gpu_fallback"`
	DisableOnExit bool   `mapstructure:"disable_on_exit"`
	ECPath        string `mapstructure:"ec_path"`

	// One-shot actions; CLI-only, never read from file or environment
	CPUTemp     bool   `mapstructure:"-"`
	GPUTemp     bool   `mapstructure:"-"`
	CoolerBoost string `mapstructure:"-"`
	Status      bool   `mapstructure:"-"`
}

// PollInterval returns the sampling period as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// MinDwell returns the minimum time between boost transitions as a duration
func (c *Config) MinDwell() time.Duration {
	return time.Duration(c.Dwell) * time.Second
}

func Load() (*Config, error) {
	errFactory := errors.New()
	config := &Config{}

	// Define flags
	fs := pflag.NewFlagSet("msiecctl", pflag.ContinueOnError)
	fs.IntVar(&config.Interval, "interval", defaultInterval, "Seconds between temperature checks")
	fs.IntVar(&config.OnThreshold, "on-threshold", defaultOnThreshold, "Temperature at which cooler boost engages")
	fs.IntVar(&config.OffThreshold, "off-threshold", defaultOffThreshold, "Temperature at which cooler boost disengages")
	fs.IntVar(&config.Dwell, "dwell", defaultDwell, "Minimum seconds between boost state changes")
	fs.BoolVar(&config.Monitor, "monitor", false, "Only log temperatures, never write the actuator")
	fs.BoolVar(&config.Debug, "debug", false, "Enable debugging mode")
	fs.BoolVar(&config.Verbose, "verbose", false, "Enable verbose logging")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.BoolVar(&config.Telemetry, "telemetry", false, "Record samples to the telemetry database")
	fs.StringVar(&config.TelemetryDB, "database", defaultTelemetryDB, "Path to the telemetry database")
	fs.StringVar(&config.GPUFallback, "gpu-fallback", GPUFallbackNone, "GPU temperature source when the EC sensor is missing (none, nvml)")
	fs.BoolVar(&config.DisableOnExit, "disable-on-exit", false, "Switch cooler boost off on shutdown")
	fs.StringVar(&config.ECPath, "ec-path", "", "Override the msi-ec sysfs base path")
	fs.BoolVar(&config.CPUTemp, "cpu-temp", false, "Print the CPU temperature and exit")
	fs.BoolVar(&config.GPUTemp, "gpu-temp", false, "Print the GPU temperature and exit")
	fs.StringVar(&config.CoolerBoost, "cooler-boost", "", "Set cooler boost state and exit (on, off)")
	fs.BoolVar(&config.Status, "status", false, "Print all current values and exit")

	// Parse flags
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetDefault("interval", defaultInterval)
	v.SetDefault("on_threshold", defaultOnThreshold)
	v.SetDefault("off_threshold", defaultOffThreshold)
	v.SetDefault("dwell", defaultDwell)
	v.SetDefault("monitor", false)
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("telemetry", false)
	v.SetDefault("database", defaultTelemetryDB)
	v.SetDefault("gpu_fallback", GPUFallbackNone)
	v.SetDefault("disable_on_exit", false)
	v.SetDefault("ec_path", "")

	// Load configuration from file
	v.SetConfigName("msiecctl")
	v.SetConfigType("toml")
	v.AddConfigPath("/etc")
	if path := os.Getenv("MSIECCTL_CONFIG"); path != "" {
		v.SetConfigFile(path)
	}
	v.SetEnvPrefix("MSIECCTL")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file: "+err.Error())
		}
	}

	// Override file and environment values with command line flags
	fs.Visit(func(f *pflag.Flag) {
		v.Set(strings.ReplaceAll(f.Name, "-", "_"), f.Value.String())
	})

	// Unmarshal the configuration
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the invariants the control loop depends on
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}

	if c.OnThreshold <= c.OffThreshold {
		return errFactory.WithData(errors.ErrInvalidThresholds,
			map[string]int{"on_threshold": c.OnThreshold, "off_threshold": c.OffThreshold})
	}

	if c.Dwell < 0 {
		return errFactory.WithData(errors.ErrInvalidDwell, c.Dwell)
	}

	if !isValidLogLevel(c.LogLevel) {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if c.GPUFallback != GPUFallbackNone && c.GPUFallback != GPUFallbackNVML {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "gpu_fallback must be none or nvml")
	}

	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "telemetry enabled without a database path")
	}

	if c.CoolerBoost != "" && c.CoolerBoost != "on" && c.CoolerBoost != "off" {
		return errFactory.WithMessage(errors.ErrInvalidArgument, "cooler-boost must be on or off")
	}

	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warning", "warn", "error":
		return true
	default:
		return false
	}
}
