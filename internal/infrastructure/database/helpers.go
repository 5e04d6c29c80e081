package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	pgx "github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// Close closes every connection in the pool. Safe to call more than once.
func (db *PostgresDB) Close() error {
	if db.Pool == nil {
		return nil
	}

	db.Pool.Close()
	db.Pool = nil

	log.Info().Msg("postgres connection pool closed")
	return nil
}

// PoolStats is a snapshot of connection pool metrics.
type PoolStats struct {
	AcquireCount         int64         `json:"acquire_count"`
	AcquireDuration      time.Duration `json:"acquire_duration"`
	AcquiredConns        int32         `json:"acquired_conns"`
	CanceledAcquireCount int64         `json:"canceled_acquire_count"`
	IdleConns            int32         `json:"idle_conns"`
	MaxConns             int32         `json:"max_conns"`
	TotalConns           int32         `json:"total_conns"`
}

func (db *PostgresDB) Stats() (*PoolStats, error) {
	if db.Pool == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	raw := db.Pool.Stat()
	return &PoolStats{
		AcquireCount:         raw.AcquireCount(),
		AcquireDuration:      raw.AcquireDuration(),
		AcquiredConns:        raw.AcquiredConns(),
		CanceledAcquireCount: raw.CanceledAcquireCount(),
		IdleConns:            raw.IdleConns(),
		MaxConns:             raw.MaxConns(),
		TotalConns:           raw.TotalConns(),
	}, nil
}

func calculateAvgDuration(totalDuration time.Duration, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return totalDuration / time.Duration(count)
}

// TxIsoLevel is a transaction isolation level as spelled in SQL.
type TxIsoLevel string

const (
	// ReadCommitted: each statement sees data committed before it began.
	ReadCommitted TxIsoLevel = "read committed"

	// RepeatableRead: the whole transaction sees one snapshot.
	RepeatableRead TxIsoLevel = "repeatable read"

	// Serializable: may fail with serialization_failure, callers must retry.
	Serializable TxIsoLevel = "serializable"
)

// ParseIsoLevel accepts the SQL spelling or its snake_case form,
// case-insensitive, empty meaning read committed.
func ParseIsoLevel(s string) (TxIsoLevel, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", " ")
	switch level := TxIsoLevel(normalized); level {
	case "":
		return ReadCommitted, nil
	case ReadCommitted, RepeatableRead, Serializable:
		return level, nil
	default:
		return "", fmt.Errorf("unsupported isolation level %q", s)
	}
}

// TxOptions returns pgx options for read-write units at the given level.
func TxOptions(level TxIsoLevel) pgx.TxOptions {
	opts := pgx.TxOptions{AccessMode: pgx.ReadWrite, DeferrableMode: pgx.NotDeferrable}

	switch level {
	case RepeatableRead:
		opts.IsoLevel = pgx.RepeatableRead
	case Serializable:
		opts.IsoLevel = pgx.Serializable
	default:
		opts.IsoLevel = pgx.ReadCommitted
	}
	return opts
}

// StartPoolMonitor runs MonitorPoolHealth in the background. The returned
// stop func blocks until the monitor has exited.
func (db *PostgresDB) StartPoolMonitor(interval time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		db.MonitorPoolHealth(ctx, interval)
	}()

	return func() {
		cancel()
		<-done
	}
}

// MonitorPoolHealth logs pool saturation until ctx is done.
func (db *PostgresDB) MonitorPoolHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats, err := db.Stats()
			if err != nil {
				log.Warn().Err(err).Msg("pool monitor: failed to get stats")
				continue
			}

			if stats.MaxConns > 0 {
				utilization := float64(stats.AcquiredConns) / float64(stats.MaxConns) * 100
				if utilization > 80 {
					log.Warn().
						Float64("utilization_pct", utilization).
						Int32("acquired", stats.AcquiredConns).
						Int32("max", stats.MaxConns).
						Msg("high pool utilization")
				}
			}

			if avg := calculateAvgDuration(stats.AcquireDuration, stats.AcquireCount); avg > 100*time.Millisecond {
				log.Warn().Dur("avg_acquire", avg).Msg("high acquire latency")
			}

		case <-ctx.Done():
			log.Debug().Msg("pool monitor stopped")
			return
		}
	}
}
