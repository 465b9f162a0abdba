package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/pagegrid-go/pkg/config"
)

// remoteProbeTimeout bounds the startup round trip to a Turso database.
const remoteProbeTimeout = 10 * time.Second

// ProbeRemote opens a throwaway libsql connection and runs SELECT 1 so a bad
// URL or token fails startup with a clear message instead of on first use.
func ProbeRemote(opts Options, logger *logging.ChanneledLogger) error {
	start := time.Now()
	dsn, err := opts.DataSourceName()
	if err != nil {
		return err
	}

	db, err := sql.Open(DriverLibSQL, dsn)
	if err != nil {
		return fmt.Errorf("failed to open connection to %s: %w", opts.URL, err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), remoteProbeTimeout)
	defer cancel()

	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		logger.Database().Error("Remote database probe failed", "databaseURL", opts.URL, "error", err.Error())
		return fmt.Errorf("probe query against %s failed: %w", opts.URL, err)
	}

	logger.Database().Info("Remote database reachable", "databaseURL", opts.URL, "duration", time.Since(start))
	return nil
}

// CheckAndLogSlowQuery logs query on the slow-query channel when duration
// exceeds config.SlowQueryThreshold.
func CheckAndLogSlowQuery(logger *logging.ChanneledLogger, query string, duration time.Duration) {
	if threshold := config.SlowQueryThreshold; threshold > 0 && duration > threshold {
		logger.LogSlowQuery(query, duration)
	}
}
