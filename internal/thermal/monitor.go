package thermal

import (
	"context"
	"time"

	"github.com/mhalver/msiecctl/internal/ec"
	"github.com/mhalver/msiecctl/internal/logger"
	"github.com/mhalver/msiecctl/internal/telemetry"
)

// TemperatureSource supplies a reading from outside the EC, used as a
// fallback when the EC GPU sensor is missing.
type TemperatureSource interface {
	Temperature() (int, error)
}

// Monitor owns the polling loop and every hardware side effect. Decisions are
// delegated to Decide so they stay independently testable. The in-memory
// boost state is authoritative between ticks; the EC flag is only read once
// at startup.
type Monitor struct {
	gateway     ec.Gateway
	cfg         Config
	collector   telemetry.Collector
	gpuFallback TemperatureSource
	monitorOnly bool

	state          BoostState
	lastTransition time.Time
	now            func() time.Time
}

type Option func(*Monitor)

// WithCollector records a telemetry snapshot on every tick.
func WithCollector(c telemetry.Collector) Option {
	return func(m *Monitor) { m.collector = c }
}

// WithGPUFallback reads the GPU temperature from src when the EC fails.
func WithGPUFallback(src TemperatureSource) Option {
	return func(m *Monitor) { m.gpuFallback = src }
}

// WithMonitorOnly logs decisions without ever writing the actuator.
func WithMonitorOnly() Option {
	return func(m *Monitor) { m.monitorOnly = true }
}

func NewMonitor(gateway ec.Gateway, cfg Config, opts ...Option) *Monitor {
	m := &Monitor{
		gateway:   gateway,
		cfg:       cfg,
		collector: telemetry.Noop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// State returns the current in-memory boost state.
func (m *Monitor) State() BoostState {
	return m.state
}

// Run initializes the boost state from the actuator and polls until ctx is
// cancelled. Nothing inside the loop is fatal: sensor and actuator errors
// are logged and retried on later ticks.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.cfg.Validate(); err != nil {
		return err
	}

	m.initState()

	logger.Info().
		Int("on_threshold", m.cfg.OnThreshold).
		Int("off_threshold", m.cfg.OffThreshold).
		Dur("dwell", m.cfg.MinDwell).
		Dur("interval", m.cfg.PollInterval).
		Str("boost", m.state.String()).
		Bool("monitor", m.monitorOnly).
		Msg("Thermal monitor started")

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// Shutdown optionally drops cooler boost before exit; otherwise the last
// written value persists in the EC.
func (m *Monitor) Shutdown(disableBoost bool) {
	if !disableBoost || m.state != BoostOn || m.monitorOnly {
		return
	}

	if err := m.gateway.SetBoost(false); err != nil {
		logger.Error().Err(err).Msg("Failed to disable cooler boost on exit")
		return
	}

	m.state = BoostOff
	logger.Info().Msg("Cooler boost disabled on exit")
}

func (m *Monitor) initState() {
	enabled, err := m.gateway.BoostEnabled()
	if err != nil {
		logger.Warn().Err(err).Msg("Cannot read cooler boost state, assuming off")
		m.state = BoostOff
		return
	}

	if enabled {
		m.state = BoostOn
	} else {
		m.state = BoostOff
	}
}

func (m *Monitor) tick(ctx context.Context) {
	sample, err := m.readSample()
	if err != nil {
		logger.Warn().Err(err).Msg("Skipping tick: sensor read failed")
		return
	}

	next, transitioned := Decide(sample, m.state, m.lastTransition, sample.TakenAt, m.cfg)

	if transitioned {
		if m.monitorOnly {
			logger.Info().
				Str("boost", next.String()).
				Int("cpu", sample.CPU).
				Int("gpu", sample.GPU).
				Msg("Monitor mode: would switch cooler boost")
			m.record(ctx, sample, false)
			return
		}

		if err := m.gateway.SetBoost(next == BoostOn); err != nil {
			// The hardware may not have applied the write; keep the previous
			// in-memory state and let a later eligible tick retry.
			logger.Error().
				Err(err).
				Str("boost", next.String()).
				Msg("Failed to write cooler boost, keeping previous state")
			m.record(ctx, sample, false)
			return
		}

		logger.Info().
			Str("boost", next.String()).
			Int("cpu", sample.CPU).
			Int("gpu", sample.GPU).
			Msg("Cooler boost switched")
		m.state = next
		m.lastTransition = sample.TakenAt
		m.record(ctx, sample, true)
		return
	}

	logger.Debug().
		Int("cpu", sample.CPU).
		Int("gpu", sample.GPU).
		Str("boost", m.state.String()).
		Msg("Temperatures checked")
	m.record(ctx, sample, false)
}

func (m *Monitor) readSample() (Sample, error) {
	cpu, err := m.gateway.Temperature(ec.SensorCPU)
	if err != nil {
		return Sample{}, err
	}

	gpu, err := m.gateway.Temperature(ec.SensorGPU)
	if err != nil {
		if m.gpuFallback == nil {
			return Sample{}, err
		}
		logger.Debug().Err(err).Msg("EC GPU sensor unavailable, using fallback source")
		if gpu, err = m.gpuFallback.Temperature(); err != nil {
			return Sample{}, err
		}
	}

	return Sample{CPU: cpu, GPU: gpu, TakenAt: m.now()}, nil
}

func (m *Monitor) record(ctx context.Context, sample Sample, transitioned bool) {
	snapshot := &telemetry.Snapshot{
		Timestamp:    sample.TakenAt,
		CPUTemp:      sample.CPU,
		GPUTemp:      sample.GPU,
		MaxTemp:      sample.Max(),
		BoostOn:      m.state == BoostOn,
		Transitioned: transitioned,
	}

	if err := m.collector.Record(ctx, snapshot); err != nil {
		logger.Debug().Err(err).Msg("Failed to record telemetry snapshot")
	}
}
