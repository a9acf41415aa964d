package telemetry

import (
	"context"
	"time"
)

// Collector records per-tick thermal snapshots
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Snapshot is one polling tick as persisted
type Snapshot struct {
	Timestamp    time.Time
	CPUTemp      int
	GPUTemp      int
	MaxTemp      int
	BoostOn      bool
	Transitioned bool
}
