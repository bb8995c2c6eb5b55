package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
)

func (r *Repository) CreatePlan(plan *domain.Plan) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO plans (user_id, name, description, starting_balance, target_ending_balance, minimum_balance)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	args := []any{plan.UserID, plan.Name, plan.Description, plan.StartingBalance, plan.TargetEndingBalance, plan.MinimumBalance}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&plan.ID, &plan.CreatedAt, &plan.Version); err != nil {
		return err
	}

	if err := insertPlanEntries(ctx, tx, plan.ID, "expense", plan.Expenses); err != nil {
		return err
	}
	if err := insertPlanEntries(ctx, tx, plan.ID, "deposit", plan.Deposits); err != nil {
		return err
	}

	return tx.Commit()
}

func insertPlanEntries(ctx context.Context, tx *sql.Tx, planID int64, kind string, entries []domain.PlanEntry) error {
	query := `
		INSERT INTO plan_entries (plan_id, kind, day, amount)
		VALUES ($1, $2, $3, $4)
	`

	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx, query, planID, kind, entry.Day, entry.Amount); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) GetPlanByID(id int64) (*domain.Plan, error) {
	query := `
		SELECT
			p.user_id,
			p.name,
			p.description,
			p.starting_balance,
			p.target_ending_balance,
			p.minimum_balance,
			p.created_at,
			p.version,
			pe.kind,
			pe.day,
			pe.amount
		FROM plans p
		LEFT JOIN plan_entries pe ON p.id = pe.plan_id
		WHERE p.id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plan := &domain.Plan{
		ID:       id,
		Expenses: make([]domain.PlanEntry, 0),
		Deposits: make([]domain.PlanEntry, 0),
	}
	found := false

	for rows.Next() {
		var row struct {
			kind   sql.NullString
			day    sql.NullInt32
			amount sql.NullFloat64
		}

		dst := []any{
			&plan.UserID,
			&plan.Name,
			&plan.Description,
			&plan.StartingBalance,
			&plan.TargetEndingBalance,
			&plan.MinimumBalance,
			&plan.CreatedAt,
			&plan.Version,
			&row.kind,
			&row.day,
			&row.amount,
		}

		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		found = true

		if !row.kind.Valid {
			// 这个计划没有任何支出和存入，是合法的
			continue
		}

		entry := domain.PlanEntry{Day: row.day.Int32, Amount: row.amount.Float64}
		switch row.kind.String {
		case "expense":
			plan.Expenses = append(plan.Expenses, entry)
		case "deposit":
			plan.Deposits = append(plan.Deposits, entry)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !found {
		return nil, sql.ErrNoRows
	}

	return plan, nil
}

func (r *Repository) GetPlansByUserID(userID int64) ([]*domain.Plan, error) {
	query := `
		SELECT id, name, description, starting_balance, target_ending_balance, minimum_balance, created_at, version
		FROM plans
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// 列表接口不带支出和存入明细，明细在获取单个计划时加载
	plans := make([]*domain.Plan, 0)
	for rows.Next() {
		plan := &domain.Plan{UserID: userID}
		dst := []any{&plan.ID, &plan.Name, &plan.Description, &plan.StartingBalance, &plan.TargetEndingBalance, &plan.MinimumBalance, &plan.CreatedAt, &plan.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *Repository) UpdatePlan(plan *domain.Plan) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE plans
		SET
			name = $1,
			description = $2,
			starting_balance = $3,
			target_ending_balance = $4,
			minimum_balance = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING created_at, version
	`

	args := []any{plan.Name, plan.Description, plan.StartingBalance, plan.TargetEndingBalance, plan.MinimumBalance, plan.ID, plan.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&plan.CreatedAt, &plan.Version); err != nil {
		return err
	}

	// 支出和存入直接重建
	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_entries WHERE plan_id = $1`, plan.ID); err != nil {
		return err
	}
	if err := insertPlanEntries(ctx, tx, plan.ID, "expense", plan.Expenses); err != nil {
		return err
	}
	if err := insertPlanEntries(ctx, tx, plan.ID, "deposit", plan.Deposits); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) DeletePlan(id int64) error {
	query := `DELETE FROM plans WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
