package telemetry

import (
	"database/sql"

	"github.com/mhalver/msiecctl/internal/errors"
)

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS boost_log (
            timestamp INTEGER PRIMARY KEY,
            cpu_temp INTEGER NOT NULL,
            gpu_temp INTEGER NOT NULL,
            max_temp INTEGER NOT NULL,
            boost_on INTEGER NOT NULL CHECK (boost_on IN (0, 1)),
            transitioned INTEGER NOT NULL CHECK (transitioned IN (0, 1))
        )
    `)
	if err != nil {
		return errors.New().Wrap(ErrSchemaInitFailed, err)
	}

	return nil
}
