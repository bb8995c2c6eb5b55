package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
)

func TestRunResultColumns_NullBeforeFinish(t *testing.T) {
	// 运行结束前结果列都是 NULL，读出来必须是零值而不是扫描错误
	var res runResultColumns
	run := &domain.OptimizationRun{ID: 1, Status: domain.RunStatusRunning}

	res.applyTo(run)

	assert.Equal(t, 0.0, run.BestFitness)
	assert.Equal(t, 0.0, run.FinalBalance)
	assert.Equal(t, int32(0), run.WorkDaysCount)
	assert.Equal(t, int32(0), run.Violations)
	assert.Equal(t, int32(0), run.GenerationsRun)
	assert.Equal(t, int64(0), run.ElapsedMs)
	assert.False(t, run.IsCrisisMode)
	assert.Empty(t, run.ErrorMessage)
	assert.Equal(t, domain.RunStatusRunning, run.Status)
}

func TestRunResultColumns_Finished(t *testing.T) {
	res := runResultColumns{
		bestFitness:    sql.NullFloat64{Float64: 42.5, Valid: true},
		finalBalance:   sql.NullFloat64{Float64: 1100, Valid: true},
		workDaysCount:  sql.NullInt32{Int32: 8, Valid: true},
		violations:     sql.NullInt32{Int32: 0, Valid: true},
		generationsRun: sql.NullInt32{Int32: 120, Valid: true},
		elapsedMs:      sql.NullInt64{Int64: 350, Valid: true},
		isCrisisMode:   sql.NullBool{Bool: true, Valid: true},
		errorMessage:   sql.NullString{String: "", Valid: true},
	}
	run := &domain.OptimizationRun{}

	res.applyTo(run)

	assert.Equal(t, 42.5, run.BestFitness)
	assert.Equal(t, 1100.0, run.FinalBalance)
	assert.Equal(t, int32(8), run.WorkDaysCount)
	assert.Equal(t, int32(120), run.GenerationsRun)
	assert.Equal(t, int64(350), run.ElapsedMs)
	assert.True(t, run.IsCrisisMode)
}

func TestScheduleDayFromRow(t *testing.T) {
	tests := []struct {
		name     string
		day      int32
		shifts   string
		expected []domain.ShiftType
	}{
		{"空天", 3, "", []domain.ShiftType{}},
		{"单班", 5, "large", []domain.ShiftType{domain.ShiftLarge}},
		{"双班", 8, "large,medium", []domain.ShiftType{domain.ShiftLarge, domain.ShiftMedium}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sd := scheduleDayFromRow(tt.day, tt.shifts)
			assert.Equal(t, tt.day, sd.Day)
			assert.Equal(t, tt.expected, sd.Shifts)
		})
	}
}
