package optimizer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
)

func TestExpectedNetPerWorkDay(t *testing.T) {
	// (0.3*100 + 0.06*70 + 0.04*40) / 0.4 = 89.5
	assert.InDelta(t, 89.5, expectedNetPerWorkDay(testCatalog()), 1e-9)
	assert.InDelta(t, 0.4, normalFillProbability(), 1e-9)
}

func TestAnalyzeCrisis_RelaxedPlan(t *testing.T) {
	plan := &domain.Plan{
		StartingBalance:     1000,
		TargetEndingBalance: 1100,
		MinimumBalance:      0,
	}

	ctx := analyzeCrisis(plan, testCatalog(), rand.New(rand.NewSource(1)))

	assert.False(t, ctx.IsCrisis)
	// ceil(100 / 89.5) = 2
	assert.Equal(t, int32(2), ctx.MinWorkDays)
}

func TestAnalyzeCrisis_DemandTriggersCrisis(t *testing.T) {
	// 所需收入 2000 超过正常模式的期望收入 30*0.4*89.5 = 1074
	plan := &domain.Plan{
		StartingBalance:     0,
		TargetEndingBalance: 2000,
		MinimumBalance:      0,
	}

	ctx := analyzeCrisis(plan, testCatalog(), rand.New(rand.NewSource(1)))

	assert.True(t, ctx.IsCrisis)
	// ceil(2000 / 89.5) = 23
	assert.Equal(t, int32(23), ctx.MinWorkDays)
}

func TestAnalyzeCrisis_ProjectedBreachTriggersCrisis(t *testing.T) {
	// 总量上可行，但大额支出出现得太早，均匀摊开的收入撑不住最低余额
	plan := &domain.Plan{
		StartingBalance:     300,
		TargetEndingBalance: 300,
		MinimumBalance:      100,
		Expenses:            []domain.PlanEntry{{Day: 5, Amount: 600}},
	}

	ctx := analyzeCrisis(plan, testCatalog(), rand.New(rand.NewSource(1)))

	assert.True(t, ctx.IsCrisis)
}

func TestAnalyzeCrisis_CriticalDays(t *testing.T) {
	plan := &domain.Plan{
		StartingBalance:     300,
		TargetEndingBalance: 300,
		MinimumBalance:      100,
		Expenses:            []domain.PlanEntry{{Day: 5, Amount: 600}},
	}

	ctx := analyzeCrisis(plan, testCatalog(), rand.New(rand.NewSource(1)))

	// 大额支出（超过大班净收入）前的几天一定是关键日
	for day := int32(1); day <= 3; day++ {
		assert.True(t, ctx.IsCriticalDay(day), "第 %d 天应为关键日", day)
	}
	// 支出前一天在最小间隔之内，不是关键日
	assert.False(t, ctx.IsCriticalDay(4))

	// 月末锚点：第 29 天无论随机偏移如何都是关键日
	assert.True(t, ctx.IsCriticalDay(29))
	// 偏移最大也到不了第 10 天
	assert.False(t, ctx.IsCriticalDay(10))
}

func TestAnalyzeCrisis_SmallExpenseIsNotAnchor(t *testing.T) {
	// 不超过大班净收入的支出不会产生关键日锚点
	plan := &domain.Plan{
		StartingBalance:     1000,
		TargetEndingBalance: 1000,
		MinimumBalance:      0,
		Expenses:            []domain.PlanEntry{{Day: 15, Amount: 80}},
	}

	ctx := analyzeCrisis(plan, testCatalog(), rand.New(rand.NewSource(1)))
	require.False(t, ctx.IsCrisis)

	for day := int32(10); day <= 13; day++ {
		assert.False(t, ctx.IsCriticalDay(day))
	}
}
