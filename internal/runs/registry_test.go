package runs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
	"github.com/sysu-oasis/balance-planner/backend/internal/optimizer"
)

func TestFinishedRun_DoesNotMutateStartedRecord(t *testing.T) {
	// Start 返回给调用方的记录可能正在被序列化，终态必须写在副本上
	started := &domain.OptimizationRun{
		ID:     7,
		PlanID: 3,
		Status: domain.RunStatusRunning,
		Seed:   42,
	}

	result := &optimizer.Result{
		Status:         optimizer.StatusConverged,
		BestFitness:    12.5,
		FinalBalance:   1100,
		WorkDaysCount:  8,
		Violations:     0,
		GenerationsRun: 120,
		ElapsedMs:      350,
		IsCrisisMode:   true,
		BestSchedule:   make([]domain.ScheduleDay, domain.HorizonLength),
	}

	finished := finishedRun(started, result, nil)

	require.NotSame(t, started, finished)

	// 原记录保持启动时的样子
	assert.Equal(t, domain.RunStatusRunning, started.Status)
	assert.Equal(t, 0.0, started.BestFitness)
	assert.Nil(t, started.Schedule)
	assert.Empty(t, started.ErrorMessage)

	// 副本带上全部终态字段
	assert.Equal(t, int64(7), finished.ID)
	assert.Equal(t, domain.RunStatusConverged, finished.Status)
	assert.Equal(t, 12.5, finished.BestFitness)
	assert.Equal(t, 1100.0, finished.FinalBalance)
	assert.Equal(t, int32(8), finished.WorkDaysCount)
	assert.Equal(t, int32(120), finished.GenerationsRun)
	assert.True(t, finished.IsCrisisMode)
	assert.Len(t, finished.Schedule, domain.HorizonLength)
}

func TestFinishedRun_CarriesError(t *testing.T) {
	started := &domain.OptimizationRun{ID: 1, Status: domain.RunStatusRunning}
	result := &optimizer.Result{Status: optimizer.StatusFailed}

	finished := finishedRun(started, result, errors.New("评估失败"))

	assert.Equal(t, domain.RunStatusFailed, finished.Status)
	assert.Equal(t, "评估失败", finished.ErrorMessage)
	assert.Empty(t, started.ErrorMessage)
}

func TestCancel_Idempotent(t *testing.T) {
	g := NewRegistry(nil, nil, nil, nil)

	// 不在运行中的 ID 返回 false
	assert.False(t, g.Cancel(99))

	ctx, cancel := context.WithCancel(context.Background())
	g.cancels[1] = cancel

	assert.True(t, g.Cancel(1))
	select {
	case <-ctx.Done():
	default:
		t.Fatal("取消后上下文应已关闭")
	}

	// 重复取消同一次运行也不报错
	assert.True(t, g.Cancel(1))
}
