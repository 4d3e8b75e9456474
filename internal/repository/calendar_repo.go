package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"prodplan/internal/calendar"
)

// CalendarRepository persists the calendar configuration as a single JSONB
// document under a fixed row id.
type CalendarRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCalendarRepository(db *pgxpool.Pool, logger *zap.Logger) *CalendarRepository {
	return &CalendarRepository{db: db, logger: logger}
}

func (r *CalendarRepository) Load(ctx context.Context) (*calendar.Config, error) {
	var payload []byte
	err := r.db.QueryRow(ctx, `SELECT config FROM calendar_config WHERE id = 1`).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to load calendar configuration", zap.Error(err))
		return nil, err
	}

	var cfg calendar.Config
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal calendar config: %w", err)
	}
	return &cfg, nil
}

func (r *CalendarRepository) Save(ctx context.Context, cfg *calendar.Config) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal calendar config: %w", err)
	}

	query := `
        INSERT INTO calendar_config (id, config, updated_at)
        VALUES (1, $1, NOW())
        ON CONFLICT (id) DO UPDATE SET config = EXCLUDED.config, updated_at = NOW()
    `
	if _, err := r.db.Exec(ctx, query, payload); err != nil {
		r.logger.Error("Failed to save calendar configuration", zap.Error(err))
		return err
	}

	r.logger.Debug("Calendar configuration saved",
		zap.Int("holidays", len(cfg.Holidays)),
	)
	return nil
}
