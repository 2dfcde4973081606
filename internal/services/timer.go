package services

import (
	"context"
	"time"

	"github.com/hackfiles/file-vault/internal/models"
)

// DefaultDeadlineWindow is how far out the deadline sits when the timer
// config is first materialized.
const DefaultDeadlineWindow = 30 * 24 * time.Hour

// TimerGate answers the upload-window question from the timer_config
// singleton row. The clock is passed in by the caller so the core can run
// against fixed times in tests.
type TimerGate struct {
	pg *PostgresStorage
}

func NewTimerGate(pg *PostgresStorage) *TimerGate {
	return &TimerGate{pg: pg}
}

// IsOpen reports whether uploads are permitted: the row must be active and
// the deadline still ahead of now. A missing row means the deadline feature
// was never configured, so uploads are allowed.
func (g *TimerGate) IsOpen(ctx context.Context, now time.Time) (bool, error) {
	cfg, found, err := g.pg.GetTimerConfig(ctx)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}
	return cfg.IsActive && now.Before(cfg.Deadline), nil
}

// EnsureTimerConfig returns the timer config, creating the default row
// (deadline 30 days out, active) on first read.
func (g *TimerGate) EnsureTimerConfig(ctx context.Context) (models.TimerConfig, error) {
	cfg, found, err := g.pg.GetTimerConfig(ctx)
	if err != nil {
		return models.TimerConfig{}, err
	}
	if found {
		return cfg, nil
	}
	return g.pg.UpsertTimerConfig(ctx, time.Now().Add(DefaultDeadlineWindow), true)
}
