package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"prodplan/internal/model"
)

// ErrPlanNotFound is returned when a named plan does not exist.
var ErrPlanNotFound = errors.New("plan not found")

// PlanRepository stores named plans. Saving is replace-by-name with
// last-write-wins semantics; there is no merge.
type PlanRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPlanRepository(db *pgxpool.Pool, logger *zap.Logger) *PlanRepository {
	return &PlanRepository{db: db, logger: logger}
}

func (r *PlanRepository) Save(ctx context.Context, name string, plan *model.Plan) error {
	r.logger.Debug("Saving plan", zap.String("name", name))

	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}

	query := `
        INSERT INTO plans (name, plan, created_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (name) DO UPDATE SET plan = EXCLUDED.plan, created_at = NOW()
    `
	if _, err := r.db.Exec(ctx, query, name, payload); err != nil {
		r.logger.Error("Failed to save plan",
			zap.Error(err),
			zap.String("name", name),
		)
		return err
	}

	r.logger.Info("Plan saved successfully",
		zap.String("name", name),
		zap.Int("orders", plan.Summary.TotalOrders),
	)
	return nil
}

func (r *PlanRepository) Load(ctx context.Context, name string) (*model.Plan, error) {
	r.logger.Debug("Loading plan", zap.String("name", name))

	var payload []byte
	err := r.db.QueryRow(ctx, `SELECT plan FROM plans WHERE name = $1`, name).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		r.logger.Error("Failed to load plan",
			zap.Error(err),
			zap.String("name", name),
		)
		return nil, err
	}

	var plan model.Plan
	if err := json.Unmarshal(payload, &plan); err != nil {
		return nil, fmt.Errorf("unmarshal plan %q: %w", name, err)
	}
	return &plan, nil
}

func (r *PlanRepository) List(ctx context.Context) ([]model.PlanInfo, error) {
	query := `
        SELECT name, created_at, plan
        FROM plans
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list plans", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	infos := []model.PlanInfo{}
	for rows.Next() {
		var (
			name      string
			createdAt time.Time
			payload   []byte
		)
		if err := rows.Scan(&name, &createdAt, &payload); err != nil {
			return nil, err
		}

		var plan model.Plan
		if err := json.Unmarshal(payload, &plan); err != nil {
			r.logger.Warn("Skipping plan with corrupt payload",
				zap.String("name", name),
				zap.Error(err),
			)
			continue
		}

		infos = append(infos, model.PlanInfo{
			Name:          name,
			CreatedAt:     createdAt.Format(time.RFC3339),
			TotalOrders:   plan.Summary.TotalOrders,
			TotalMachines: plan.Summary.TotalMachines,
			TotalHours:    plan.Summary.TotalHours,
		})
	}

	r.logger.Info("Plans listed successfully", zap.Int("count", len(infos)))
	return infos, nil
}
