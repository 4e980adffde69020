package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/craftplan/internal/plan"
)

// ErrPlanNotFound is returned by Get for an unknown plan id.
var ErrPlanNotFound = errors.New("plan not found")

// PlanSummary is the listing view of a stored plan.
type PlanSummary struct {
	ID         uuid.UUID `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	StepCount  int       `json:"step_count"`
	RouteCount int       `json:"route_count"`
}

// PlanRepository stores built plans as JSON documents.
type PlanRepository struct {
	db *pgxpool.Pool
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(db *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{db: db}
}

// Save stores p with one summary row per route. Saving the same plan id
// twice fails.
func (r *PlanRepository) Save(ctx context.Context, p *plan.Plan) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding plan %s: %w", p.ID, err)
	}
	routes := p.Routes()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "planID", p.ID, "error", err)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO crafting_plans (id, created_at, step_count, route_count, body)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.CreatedAt, len(p.Primary.Steps), len(routes), body)
	if err != nil {
		return fmt.Errorf("inserting plan %s: %w", p.ID, err)
	}

	rows := make([][]any, 0, len(routes))
	for i, route := range routes {
		satisfiable := 0
		for _, o := range route.Options {
			if o.Satisfiable {
				satisfiable++
			}
		}
		rows = append(rows, []any{p.ID, int16(i), route.Name, int16(satisfiable), int16(len(route.Options))})
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"crafting_plan_routes"},
		[]string{"plan_id", "position", "name", "satisfiable_count", "option_count"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting routes of plan %s: %w", p.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.Debug("saved plan",
		"planID", p.ID,
		"routes", len(routes))

	return nil
}

// Get loads a stored plan. Unknown ids yield ErrPlanNotFound.
func (r *PlanRepository) Get(ctx context.Context, id uuid.UUID) (*plan.Plan, error) {
	var body []byte
	err := r.db.QueryRow(ctx, `SELECT body FROM crafting_plans WHERE id = $1`, id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("plan %s: %w", id, ErrPlanNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying plan %s: %w", id, err)
	}

	var p plan.Plan
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decoding plan %s: %w", id, err)
	}
	return &p, nil
}

// ListRecent returns the newest plans first.
func (r *PlanRepository) ListRecent(ctx context.Context, limit int) ([]PlanSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, created_at, step_count, route_count
		FROM crafting_plans
		ORDER BY created_at DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer rows.Close()

	out := make([]PlanSummary, 0, limit)
	for rows.Next() {
		var s PlanSummary
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.StepCount, &s.RouteCount); err != nil {
			return nil, fmt.Errorf("scanning plan row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plan rows: %w", err)
	}
	return out, nil
}
