package thermal

import (
	"fmt"
	"time"

	"github.com/mhalver/msiecctl/internal/errors"
)

// BoostState is the binary cooler boost mode.
type BoostState int

const (
	BoostOff BoostState = iota
	BoostOn
)

func (s BoostState) String() string {
	if s == BoostOn {
		return "on"
	}
	return "off"
}

// Sample is one reading of both temperature sensors.
type Sample struct {
	CPU     int
	GPU     int
	TakenAt time.Time
}

// Max returns the hotter of the two readings; decisions always follow the
// hotter component.
func (s Sample) Max() int {
	if s.CPU > s.GPU {
		return s.CPU
	}
	return s.GPU
}

// Config holds the hysteresis parameters. OnThreshold must be strictly
// greater than OffThreshold; the gap between them is the dead band.
type Config struct {
	OnThreshold  int
	OffThreshold int
	MinDwell     time.Duration
	PollInterval time.Duration
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.PollInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.PollInterval.String())
	}

	if c.OnThreshold <= c.OffThreshold {
		return errFactory.WithData(errors.ErrInvalidThresholds,
			fmt.Sprintf("on=%d off=%d", c.OnThreshold, c.OffThreshold))
	}

	if c.MinDwell < 0 {
		return errFactory.WithData(errors.ErrInvalidDwell, c.MinDwell.String())
	}

	return nil
}

// Decide maps a sample and the current boost state to the next state.
//
// Two independent mechanisms prevent flapping: the dead band (a candidate
// transition requires crossing the far threshold, not merely recrossing the
// near one) and the dwell timer (a candidate differing from the current state
// commits only when at least MinDwell has passed since the last committed
// transition). A zero lastTransition means no transition has happened yet,
// so the dwell gate is open.
//
// Decide performs no I/O; the caller owns all hardware access.
func Decide(sample Sample, current BoostState, lastTransition, now time.Time, cfg Config) (BoostState, bool) {
	candidate := current
	maxTemp := sample.Max()

	switch current {
	case BoostOff:
		if maxTemp >= cfg.OnThreshold {
			candidate = BoostOn
		}
	case BoostOn:
		if maxTemp <= cfg.OffThreshold {
			candidate = BoostOff
		}
	}

	if candidate == current {
		return current, false
	}

	if !lastTransition.IsZero() && now.Sub(lastTransition) < cfg.MinDwell {
		return current, false
	}

	return candidate, true
}
