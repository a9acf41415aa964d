package telemetry

import (
	"context"

	"github.com/mhalver/msiecctl/internal/errors"
	"github.com/mhalver/msiecctl/internal/logger"
)

type service struct {
	repo Repository
	cfg  Config
}

// NewService returns a Collector; when telemetry is disabled the returned
// collector is a no-op.
func NewService(cfg Config) (Collector, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		logger.Debug().Msg("Telemetry disabled, using no-op collector")
		return Noop(), nil
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		return nil, err // Already wrapped with appropriate error
	}

	return &service{
		repo: repo,
		cfg:  cfg,
	}, nil
}

func (s *service) Record(ctx context.Context, snapshot *Snapshot) error {
	errFactory := errors.New()

	if snapshot == nil {
		return errFactory.New(ErrInvalidSnapshot)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		if err := s.repo.Store(ctx, snapshot); err != nil {
			return errFactory.Wrap(ErrRecordFailed, err)
		}
	}

	return nil
}

func (s *service) Close() error {
	errFactory := errors.New()

	if err := s.repo.Close(); err != nil {
		return errFactory.Wrap(ErrServiceShutdown, err)
	}
	return nil
}

type noopCollector struct{}

// Noop returns a collector that drops every snapshot.
func Noop() Collector {
	return noopCollector{}
}

func (noopCollector) Record(_ context.Context, _ *Snapshot) error {
	return nil
}

func (noopCollector) Close() error {
	return nil
}
