package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mhalver/msiecctl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setArgs replaces os.Args for the duration of a test so the test runner's
// own flags never reach the parser.
func setArgs(t *testing.T, args ...string) {
	t.Helper()
	oldArgs := os.Args
	os.Args = append([]string{"msiecctl"}, args...)
	t.Cleanup(func() { os.Args = oldArgs })
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "msiecctl.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	return configPath
}

func TestLoad(t *testing.T) {
	setArgs(t)
	configPath := writeConfig(t, `
interval = 5
on_threshold = 75
off_threshold = 65
dwell = 45
monitor = true
log_level = "debug"
telemetry = true
database = "/path/to/telemetry.db"
gpu_fallback = "nvml"
disable_on_exit = true
`)
	t.Setenv("MSIECCTL_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Interval, "Expected Interval 5")
	assert.Equal(t, 75, cfg.OnThreshold, "Expected OnThreshold 75")
	assert.Equal(t, 65, cfg.OffThreshold, "Expected OffThreshold 65")
	assert.Equal(t, 45, cfg.Dwell, "Expected Dwell 45")
	assert.True(t, cfg.Monitor, "Expected Monitor true")
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
	assert.True(t, cfg.Telemetry, "Expected Telemetry true")
	assert.Equal(t, "/path/to/telemetry.db", cfg.TelemetryDB, "Expected TelemetryDB /path/to/telemetry.db")
	assert.Equal(t, config.GPUFallbackNVML, cfg.GPUFallback, "Expected GPUFallback nvml")
	assert.True(t, cfg.DisableOnExit, "Expected DisableOnExit true")
}

func TestLoadDefaults(t *testing.T) {
	setArgs(t)
	t.Setenv("MSIECCTL_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, 3, cfg.Interval, "Expected default Interval 3")
	assert.Equal(t, 60, cfg.OnThreshold, "Expected default OnThreshold 60")
	assert.Equal(t, 55, cfg.OffThreshold, "Expected default OffThreshold 55")
	assert.Equal(t, 60, cfg.Dwell, "Expected default Dwell 60")
	assert.False(t, cfg.Monitor, "Expected default Monitor false")
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel, "Expected default LogLevel info")
	assert.False(t, cfg.Telemetry, "Expected default Telemetry false")
	assert.Equal(t, config.GPUFallbackNone, cfg.GPUFallback, "Expected default GPUFallback none")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	setArgs(t)
	configPath := writeConfig(t, `
This is not a valid TOML file
`)
	t.Setenv("MSIECCTL_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestInvalidLogLevel(t *testing.T) {
	setArgs(t)
	configPath := writeConfig(t, `
log_level = "invalid"
`)
	t.Setenv("MSIECCTL_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid log level")
}

func TestInvalidThresholdOrdering(t *testing.T) {
	setArgs(t)
	configPath := writeConfig(t, `
on_threshold = 55
off_threshold = 60
`)
	t.Setenv("MSIECCTL_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "On threshold must be greater than off threshold")
}

func TestFlagOverridesFile(t *testing.T) {
	setArgs(t, "--interval", "7")
	configPath := writeConfig(t, `
interval = 5
`)
	t.Setenv("MSIECCTL_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Interval, "Expected flag to override the config file")
}

func TestEnvOverridesDefault(t *testing.T) {
	setArgs(t)
	t.Setenv("MSIECCTL_CONFIG", "")
	t.Setenv("MSIECCTL_INTERVAL", "9")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Interval, "Expected environment to override the default")
}

func TestOneShotFlags(t *testing.T) {
	setArgs(t, "--cpu-temp", "--cooler-boost", "on")
	t.Setenv("MSIECCTL_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.CPUTemp, "Expected CPUTemp true")
	assert.False(t, cfg.GPUTemp, "Expected GPUTemp false")
	assert.Equal(t, "on", cfg.CoolerBoost, "Expected CoolerBoost on")
}

func TestInvalidCoolerBoostValue(t *testing.T) {
	setArgs(t, "--cooler-boost", "auto")
	t.Setenv("MSIECCTL_CONFIG", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cooler-boost must be on or off")
}
