package telemetry

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"github.com/mhalver/msiecctl/internal/errors"
	"github.com/mhalver/msiecctl/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

type Repository interface {
	Store(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRepository(cfg Config) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	logger.Debug().Msgf("Initializing telemetry repository at: %s", cfg.DBPath)

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	return &sqliteRepository{
		db: db,
	}, nil
}

func (r *sqliteRepository) Store(ctx context.Context, snapshot *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Ticks can share a second; the last write for a timestamp wins.
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO boost_log (
            timestamp, cpu_temp, gpu_temp, max_temp,
            boost_on, transitioned
        ) VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(timestamp) DO UPDATE SET
            cpu_temp = excluded.cpu_temp,
            gpu_temp = excluded.gpu_temp,
            max_temp = excluded.max_temp,
            boost_on = excluded.boost_on,
            transitioned = excluded.transitioned
    `,
		snapshot.Timestamp.Unix(),
		snapshot.CPUTemp,
		snapshot.GPUTemp,
		snapshot.MaxTemp,
		boolToInt(snapshot.BoostOn),
		boolToInt(snapshot.Transitioned),
	)
	if err != nil {
		return errors.New().Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}
	return nil
}
