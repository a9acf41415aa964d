package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mhalver/msiecctl/internal/config"
	"github.com/mhalver/msiecctl/internal/ec"
	"github.com/mhalver/msiecctl/internal/gpu"
	"github.com/mhalver/msiecctl/internal/logger"
	"github.com/mhalver/msiecctl/internal/pid"
	"github.com/mhalver/msiecctl/internal/telemetry"
	"github.com/mhalver/msiecctl/internal/thermal"
)

var (
	cfg     *config.Config
	gateway *ec.SysfsGateway
)

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	if !cfg.Debug && !cfg.Verbose {
		if err := logger.SetLevelFromString(cfg.LogLevel); err != nil {
			fmt.Fprintf(os.Stderr, "invalid log level: %v\n", err)
			os.Exit(1)
		}
	}
	logger.Debug().Msg("Config loaded")

	gateway = ec.NewSysfsGateway(cfg.ECPath)
}

func main() {
	if code, handled := runOneShot(); handled {
		os.Exit(code)
	}

	os.Exit(runDaemon())
}

// runOneShot handles the CLI actions that perform a single gateway call and
// exit instead of entering the loop.
func runOneShot() (int, bool) {
	handled := false
	code := 0

	if cfg.CPUTemp {
		handled = true
		code = max(code, printTemperature(ec.SensorCPU))
	}
	if cfg.GPUTemp {
		handled = true
		code = max(code, printTemperature(ec.SensorGPU))
	}
	if cfg.CoolerBoost != "" {
		handled = true
		code = max(code, setCoolerBoost(cfg.CoolerBoost == "on"))
	}
	if cfg.Status {
		handled = true
		code = max(code, printStatus())
	}

	return code, handled
}

func printTemperature(sensor ec.Sensor) int {
	temp, err := gateway.Temperature(sensor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// The driver reports whole degrees; keep the historical output format.
	fmt.Printf("%s Temperature: %d.0°C\n", strings.ToUpper(string(sensor)), temp)

	return 0
}

func setCoolerBoost(enable bool) int {
	if err := gateway.SetBoost(enable); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if enable {
		fmt.Println("Cooler boost enabled")
	} else {
		fmt.Println("Cooler boost disabled")
	}

	return 0
}

func printStatus() int {
	fmt.Println("=== MSI EC Status ===")
	code := 0

	for _, sensor := range []ec.Sensor{ec.SensorCPU, ec.SensorGPU} {
		if temp, err := gateway.Temperature(sensor); err != nil {
			fmt.Printf("%s Temperature: Error - %v\n", strings.ToUpper(string(sensor)), err)
			code = 1
		} else {
			fmt.Printf("%s Temperature: %d.0°C\n", strings.ToUpper(string(sensor)), temp)
		}
	}

	if enabled, err := gateway.BoostEnabled(); err != nil {
		fmt.Printf("Cooler Boost: Error - %v\n", err)
		code = 1
	} else if enabled {
		fmt.Println("Cooler Boost: Enabled")
	} else {
		fmt.Println("Cooler Boost: Disabled")
	}

	return code
}

func runDaemon() int {
	if err := pid.Write(); err != nil {
		logger.Error().Err(err).Msg("Another instance appears to be running")
		return 1
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	collector, err := telemetry.NewService(telemetry.Config{
		Enabled: cfg.Telemetry,
		DBPath:  cfg.TelemetryDB,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize telemetry")
		return 1
	}
	defer func() {
		if err := collector.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close telemetry")
		}
	}()

	opts := []thermal.Option{thermal.WithCollector(collector)}
	if cfg.Monitor {
		opts = append(opts, thermal.WithMonitorOnly())
	}
	if cfg.GPUFallback == config.GPUFallbackNVML {
		device, err := gpu.New()
		if err != nil {
			logger.Warn().Err(err).Msg("NVML unavailable, continuing without GPU fallback")
		} else {
			defer func() {
				if err := device.Shutdown(); err != nil {
					logger.Warn().Err(err).Msg("Failed to shut down NVML")
				}
			}()
			opts = append(opts, thermal.WithGPUFallback(device))
		}
	}

	monitor := thermal.NewMonitor(gateway, thermal.Config{
		OnThreshold:  cfg.OnThreshold,
		OffThreshold: cfg.OffThreshold,
		MinDwell:     cfg.MinDwell(),
		PollInterval: cfg.PollInterval(),
	}, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := monitor.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Error in main loop")
		return 1
	}

	monitor.Shutdown(cfg.DisableOnExit)
	logger.Info().Msg("Exiting...")

	return 0
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
