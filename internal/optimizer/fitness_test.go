package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
)

func testCatalog() domain.ShiftCatalog {
	return domain.ShiftCatalog{
		domain.ShiftSmall:  {Net: 40, Gross: 55},
		domain.ShiftMedium: {Net: 70, Gross: 90},
		domain.ShiftLarge:  {Net: 100, Gross: 130},
	}
}

func noCrisis() *CrisisContext {
	return &CrisisContext{CriticalDays: map[int32]bool{}}
}

func TestEvaluate_EmptyScheduleOnTrivialPlan(t *testing.T) {
	// 起始余额即目标余额、没有约束压力的配置下，全空班表就是最优解
	plan := &domain.Plan{
		StartingBalance:     1000,
		TargetEndingBalance: 1000,
		MinimumBalance:      0,
	}

	eval, err := Evaluate(make([]domain.DayAssignment, domain.HorizonLength), plan, testCatalog(), noCrisis())
	require.NoError(t, err)

	assert.Equal(t, 0.0, eval.Fitness)
	assert.Equal(t, int32(0), eval.Violations)
	assert.Equal(t, int32(0), eval.WorkDaysCount)
	assert.Equal(t, 1000.0, eval.FinalBalance)
	assert.True(t, eval.WithinTolerance)
}

func TestEvaluate_ViolationsDominate(t *testing.T) {
	// 每天都低于最低余额，30 次违规的惩罚远大于其他所有项
	plan := &domain.Plan{
		StartingBalance:     100,
		TargetEndingBalance: 100,
		MinimumBalance:      200,
	}

	eval, err := Evaluate(make([]domain.DayAssignment, domain.HorizonLength), plan, testCatalog(), noCrisis())
	require.NoError(t, err)

	assert.Equal(t, int32(30), eval.Violations)
	assert.Equal(t, 30*ViolationPenalty, eval.Fitness)
	assert.False(t, eval.WithinTolerance)
}

func TestEvaluate_ExactTargetIsZero(t *testing.T) {
	plan := &domain.Plan{
		StartingBalance:     1000,
		TargetEndingBalance: 1100,
		MinimumBalance:      0,
	}
	crisis := noCrisis()
	crisis.MinWorkDays = 1

	days := make([]domain.DayAssignment, domain.HorizonLength)
	days[0] = domain.DayAssignment{First: domain.ShiftLarge}

	eval, err := Evaluate(days, plan, testCatalog(), crisis)
	require.NoError(t, err)

	assert.Equal(t, 0.0, eval.Fitness)
	assert.Equal(t, 1100.0, eval.FinalBalance)
}

func TestEvaluate_OvershootCostsDouble(t *testing.T) {
	crisis := noCrisis()
	crisis.MinWorkDays = 1

	days := make([]domain.DayAssignment, domain.HorizonLength)
	days[0] = domain.DayAssignment{First: domain.ShiftLarge}

	// 超出目标 100：距离按 2 倍计，再按目标余额归一化
	over := &domain.Plan{StartingBalance: 1000, TargetEndingBalance: 1000}
	evalOver, err := Evaluate(days, over, testCatalog(), crisis)
	require.NoError(t, err)
	assert.InDelta(t, FinalBalancePenalty*200.0/1000.0, evalOver.Fitness, 1e-9)

	// 低于目标 100：距离不加倍
	under := &domain.Plan{StartingBalance: 1000, TargetEndingBalance: 1200}
	evalUnder, err := Evaluate(days, under, testCatalog(), crisis)
	require.NoError(t, err)
	assert.InDelta(t, FinalBalancePenalty*100.0/1200.0, evalUnder.Fitness, 1e-9)
}

func TestEvaluate_WorkDayDeviation(t *testing.T) {
	plan := &domain.Plan{
		StartingBalance:     1000,
		TargetEndingBalance: 1100,
		MinimumBalance:      0,
	}
	crisis := noCrisis()
	crisis.MinWorkDays = 3

	days := make([]domain.DayAssignment, domain.HorizonLength)
	days[0] = domain.DayAssignment{First: domain.ShiftLarge}

	eval, err := Evaluate(days, plan, testCatalog(), crisis)
	require.NoError(t, err)

	// 只工作 1 天，偏离最少 3 天的要求 2 天
	assert.InDelta(t, 2*WorkDayDiffPenalty, eval.Fitness, 1e-9)
}

func TestEvaluate_ConsecutiveAndClustering(t *testing.T) {
	// 连续 6 个大班：一段超长连班 + 三个超标的滑动窗口
	plan := &domain.Plan{
		StartingBalance:     1000,
		TargetEndingBalance: 1600,
		MinimumBalance:      0,
	}
	crisis := noCrisis()
	crisis.MinWorkDays = 6

	days := make([]domain.DayAssignment, domain.HorizonLength)
	for i := 0; i < 6; i++ {
		days[i] = domain.DayAssignment{First: domain.ShiftLarge}
	}

	eval, err := Evaluate(days, plan, testCatalog(), crisis)
	require.NoError(t, err)

	assert.InDelta(t, ConsecutiveDayPenalty+3*ClusteringPenalty, eval.Fitness, 1e-9)
}

func TestEvaluate_ShortGap(t *testing.T) {
	// 第 1、3 天工作，中间只休息 1 天
	plan := &domain.Plan{
		StartingBalance:     1000,
		TargetEndingBalance: 1200,
		MinimumBalance:      0,
	}
	crisis := noCrisis()
	crisis.MinWorkDays = 2

	days := make([]domain.DayAssignment, domain.HorizonLength)
	days[0] = domain.DayAssignment{First: domain.ShiftLarge}
	days[2] = domain.DayAssignment{First: domain.ShiftLarge}

	eval, err := Evaluate(days, plan, testCatalog(), crisis)
	require.NoError(t, err)

	assert.InDelta(t, SmallGapPenalty, eval.Fitness, 1e-9)
}

func TestEvaluate_GapVariance(t *testing.T) {
	// 第 1、4、9 天工作：间隔为 2 和 4，都不算过短，但方差为 1
	plan := &domain.Plan{
		StartingBalance:     1000,
		TargetEndingBalance: 1300,
		MinimumBalance:      0,
	}
	crisis := noCrisis()
	crisis.MinWorkDays = 3

	days := make([]domain.DayAssignment, domain.HorizonLength)
	days[0] = domain.DayAssignment{First: domain.ShiftLarge}
	days[3] = domain.DayAssignment{First: domain.ShiftLarge}
	days[8] = domain.DayAssignment{First: domain.ShiftLarge}

	eval, err := Evaluate(days, plan, testCatalog(), crisis)
	require.NoError(t, err)

	assert.InDelta(t, GapVarianceWeight*1.0, eval.Fitness, 1e-9)
}

func TestEvaluate_CriticalDayBuffer(t *testing.T) {
	// 关键日的余额高于最低余额但在缓冲区内，施加软惩罚
	plan := &domain.Plan{
		StartingBalance:     100,
		TargetEndingBalance: 100,
		MinimumBalance:      0,
	}
	crisis := &CrisisContext{CriticalDays: map[int32]bool{5: true}}

	eval, err := Evaluate(make([]domain.DayAssignment, domain.HorizonLength), plan, testCatalog(), crisis)
	require.NoError(t, err)

	assert.InDelta(t, FinalBalancePenalty, eval.Fitness, 1e-9)
	assert.Equal(t, int32(0), eval.Violations)
}

func TestEvaluate_UnknownShiftTypeFails(t *testing.T) {
	plan := &domain.Plan{StartingBalance: 1000, TargetEndingBalance: 1000}

	days := make([]domain.DayAssignment, domain.HorizonLength)
	days[0] = domain.DayAssignment{First: domain.ShiftType("night")}

	_, err := Evaluate(days, plan, testCatalog(), noCrisis())
	assert.ErrorIs(t, err, domain.ErrUnknownShiftType)
}
