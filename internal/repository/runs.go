package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
)

func (r *Repository) CreateRun(run *domain.OptimizationRun) error {
	query := `
		INSERT INTO optimization_runs (plan_id, status, seed)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{run.PlanID, run.Status, run.Seed}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&run.ID, &run.CreatedAt, &run.Version); err != nil {
		return err
	}

	return nil
}

// FinishRun 将运行的终态结果和最优班表写入数据库
func (r *Repository) FinishRun(run *domain.OptimizationRun) error {
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
		UPDATE optimization_runs
		SET
			status = $1,
			best_fitness = $2,
			final_balance = $3,
			work_days_count = $4,
			violations = $5,
			generations_run = $6,
			elapsed_ms = $7,
			is_crisis_mode = $8,
			error_message = $9,
			version = version + 1
		WHERE id = $10
		RETURNING version
	`

	args := []any{
		run.Status,
		run.BestFitness,
		run.FinalBalance,
		run.WorkDaysCount,
		run.Violations,
		run.GenerationsRun,
		run.ElapsedMs,
		run.IsCrisisMode,
		run.ErrorMessage,
		run.ID,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&run.Version); err != nil {
		return err
	}

	query = `
		INSERT INTO optimization_run_days (run_id, day, shifts)
		VALUES ($1, $2, $3)
	`

	for _, day := range run.Schedule {
		shifts := make([]string, len(day.Shifts))
		for i, s := range day.Shifts {
			shifts[i] = string(s)
		}
		if _, err := tx.ExecContext(ctx, query, run.ID, day.Day, strings.Join(shifts, ",")); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) GetRunByID(id int64) (*domain.OptimizationRun, error) {
	query := `
		SELECT
			orun.plan_id,
			orun.status,
			orun.seed,
			orun.best_fitness,
			orun.final_balance,
			orun.work_days_count,
			orun.violations,
			orun.generations_run,
			orun.elapsed_ms,
			orun.is_crisis_mode,
			orun.error_message,
			orun.created_at,
			orun.version,
			ord.day,
			ord.shifts
		FROM optimization_runs orun
		LEFT JOIN optimization_run_days ord ON orun.id = ord.run_id
		WHERE orun.id = $1
		ORDER BY ord.day
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	run := &domain.OptimizationRun{
		ID:       id,
		Schedule: make([]domain.ScheduleDay, 0),
	}
	found := false

	for rows.Next() {
		var row struct {
			day    sql.NullInt32
			shifts sql.NullString
		}
		var res runResultColumns

		dst := []any{
			&run.PlanID,
			&run.Status,
			&run.Seed,
			&res.bestFitness,
			&res.finalBalance,
			&res.workDaysCount,
			&res.violations,
			&res.generationsRun,
			&res.elapsedMs,
			&res.isCrisisMode,
			&res.errorMessage,
			&run.CreatedAt,
			&run.Version,
			&row.day,
			&row.shifts,
		}

		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		found = true
		res.applyTo(run)

		if !row.day.Valid {
			// 运行还没有结束或者失败时没有班表
			continue
		}

		run.Schedule = append(run.Schedule, scheduleDayFromRow(row.day.Int32, row.shifts.String))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !found {
		return nil, sql.ErrNoRows
	}

	return run, nil
}

func (r *Repository) GetRunsByPlanID(planID int64) ([]*domain.OptimizationRun, error) {
	query := `
		SELECT id, status, seed, best_fitness, final_balance, work_days_count, violations, generations_run, elapsed_ms, is_crisis_mode, error_message, created_at, version
		FROM optimization_runs
		WHERE plan_id = $1
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// 列表接口不带班表明细
	runs := make([]*domain.OptimizationRun, 0)
	for rows.Next() {
		run := &domain.OptimizationRun{PlanID: planID}
		var res runResultColumns
		dst := []any{&run.ID, &run.Status, &run.Seed, &res.bestFitness, &res.finalBalance, &res.workDaysCount, &res.violations, &res.generationsRun, &res.elapsedMs, &res.isCrisisMode, &res.errorMessage, &run.CreatedAt, &run.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		res.applyTo(run)
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

// 结果列在运行结束前为 NULL，结束前读到的是零值
type runResultColumns struct {
	bestFitness    sql.NullFloat64
	finalBalance   sql.NullFloat64
	workDaysCount  sql.NullInt32
	violations     sql.NullInt32
	generationsRun sql.NullInt32
	elapsedMs      sql.NullInt64
	isCrisisMode   sql.NullBool
	errorMessage   sql.NullString
}

func (c *runResultColumns) applyTo(run *domain.OptimizationRun) {
	run.BestFitness = c.bestFitness.Float64
	run.FinalBalance = c.finalBalance.Float64
	run.WorkDaysCount = c.workDaysCount.Int32
	run.Violations = c.violations.Int32
	run.GenerationsRun = c.generationsRun.Int32
	run.ElapsedMs = c.elapsedMs.Int64
	run.IsCrisisMode = c.isCrisisMode.Bool
	run.ErrorMessage = c.errorMessage.String
}

func scheduleDayFromRow(day int32, shifts string) domain.ScheduleDay {
	sd := domain.ScheduleDay{Day: day, Shifts: make([]domain.ShiftType, 0, 2)}
	if shifts == "" {
		return sd
	}
	for _, s := range strings.Split(shifts, ",") {
		sd.Shifts = append(sd.Shifts, domain.ShiftType(s))
	}
	return sd
}
