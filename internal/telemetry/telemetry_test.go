package telemetry_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/mhalver/msiecctl/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopWhenDisabled(t *testing.T) {
	collector, err := telemetry.NewService(telemetry.Config{Enabled: false})
	require.NoError(t, err)

	err = collector.Record(context.Background(), &telemetry.Snapshot{Timestamp: time.Now()})
	require.NoError(t, err)
	require.NoError(t, collector.Close())
}

func TestEnabledWithoutPath(t *testing.T) {
	_, err := telemetry.NewService(telemetry.Config{Enabled: true})
	require.Error(t, err)
}

func TestRecordRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")
	collector, err := telemetry.NewService(telemetry.Config{Enabled: true, DBPath: dbPath})
	require.NoError(t, err)

	taken := time.Unix(1700000000, 0)
	err = collector.Record(context.Background(), &telemetry.Snapshot{
		Timestamp:    taken,
		CPUTemp:      72,
		GPUTemp:      64,
		MaxTemp:      72,
		BoostOn:      true,
		Transitioned: true,
	})
	require.NoError(t, err)
	require.NoError(t, collector.Close())

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var cpu, gpu, maxTemp, boostOn, transitioned int
	err = db.QueryRow(`
        SELECT cpu_temp, gpu_temp, max_temp, boost_on, transitioned
        FROM boost_log WHERE timestamp = ?
    `, taken.Unix()).Scan(&cpu, &gpu, &maxTemp, &boostOn, &transitioned)
	require.NoError(t, err)

	assert.Equal(t, 72, cpu)
	assert.Equal(t, 64, gpu)
	assert.Equal(t, 72, maxTemp)
	assert.Equal(t, 1, boostOn)
	assert.Equal(t, 1, transitioned)
}

func TestRecordNilSnapshot(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")
	collector, err := telemetry.NewService(telemetry.Config{Enabled: true, DBPath: dbPath})
	require.NoError(t, err)
	defer collector.Close()

	err = collector.Record(context.Background(), nil)
	require.Error(t, err)
}
