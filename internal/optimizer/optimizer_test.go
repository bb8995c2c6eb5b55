package optimizer

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
)

func smallParams() *Parameters {
	p := DefaultParameters()
	p.PopulationSize = 30
	p.MaxGenerations = 40
	p.MinEliteSize = 5
	p.TournamentSize = 5
	p.ProgressInterval = 10
	return p
}

func TestNew_RejectsInvalidInput(t *testing.T) {
	plan := relaxedPlan()
	catalog := testCatalog()

	t.Run("缺少随机数生成器", func(t *testing.T) {
		_, err := New(DefaultParameters(), plan, catalog, nil)
		assert.Error(t, err)
	})

	t.Run("非法参数", func(t *testing.T) {
		params := DefaultParameters()
		params.PopulationSize = -1
		_, err := New(params, plan, catalog, rand.New(rand.NewSource(1)))
		assert.Error(t, err)
	})

	t.Run("不完整的班次目录", func(t *testing.T) {
		_, err := New(DefaultParameters(), plan, domain.ShiftCatalog{}, rand.New(rand.NewSource(1)))
		assert.Error(t, err)
	})

	t.Run("第一天即不可满足的配置", func(t *testing.T) {
		impossible := &domain.Plan{
			StartingBalance:     0,
			TargetEndingBalance: 1000,
			MinimumBalance:      500,
			Expenses:            []domain.PlanEntry{{Day: 1, Amount: 300}},
		}
		_, err := New(DefaultParameters(), impossible, catalog, rand.New(rand.NewSource(1)))
		assert.Error(t, err)
	})
}

func TestRun_Deterministic(t *testing.T) {
	run := func() *Result {
		o, err := New(smallParams(), relaxedPlan(), testCatalog(), rand.New(rand.NewSource(12345)))
		require.NoError(t, err)

		result, err := o.Run(context.Background(), nil)
		require.NoError(t, err)
		return result
	}

	r1 := run()
	r2 := run()

	assert.Equal(t, r1.BestFitness, r2.BestFitness)
	assert.Equal(t, r1.GenerationsRun, r2.GenerationsRun)
	assert.Equal(t, r1.Violations, r2.Violations)
	assert.Equal(t, r1.BestSchedule, r2.BestSchedule)
}

func TestRun_RelaxedPlan(t *testing.T) {
	o, err := New(smallParams(), relaxedPlan(), testCatalog(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.False(t, o.Crisis().IsCrisis)

	result, err := o.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, StatusConverged, result.Status)
	assert.False(t, result.IsCrisisMode)
	// 最低余额为 0 且没有支出，任何班表都不可能违规
	assert.Equal(t, int32(0), result.Violations)
	assert.GreaterOrEqual(t, result.FinalBalance, 1000.0)
	assert.Len(t, result.BestSchedule, domain.HorizonLength)
	assert.Positive(t, result.GenerationsRun)
	assert.LessOrEqual(t, result.GenerationsRun, smallParams().MaxGenerations)
}

func TestRun_CrisisPlan(t *testing.T) {
	plan := &domain.Plan{
		StartingBalance:     300,
		TargetEndingBalance: 2000,
		MinimumBalance:      100,
		Expenses: []domain.PlanEntry{
			{Day: 5, Amount: 400},
			{Day: 12, Amount: 500},
			{Day: 25, Amount: 300},
		},
		Deposits: []domain.PlanEntry{{Day: 8, Amount: 150}},
	}

	params := smallParams()
	params.PopulationSize = 100
	params.MaxGenerations = 200

	o, err := New(params, plan, testCatalog(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.True(t, o.Crisis().IsCrisis)

	result, err := o.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.True(t, result.IsCrisisMode)
	assert.Equal(t, int32(0), result.Violations)
	assert.Greater(t, result.FinalBalance, plan.StartingBalance)
	assert.Positive(t, result.WorkDaysCount)
}

func TestRun_StagnationCountsFromFirstGeneration(t *testing.T) {
	// 交叉和变异都关掉后种群不会产生新基因，最优适应度从第 1 代起停滞；
	// 第 0 代只确立基线，停滞上限为 1 时应该恰好跑完两代
	params := smallParams()
	params.CrossoverRate = 0
	params.MutationRate = 0
	params.StagnationLimit = 1
	params.MaxGenerations = 500

	o, err := New(params, relaxedPlan(), testCatalog(), rand.New(rand.NewSource(9)))
	require.NoError(t, err)

	result, err := o.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, StatusConverged, result.Status)
	assert.Equal(t, int32(2), result.GenerationsRun)
}

func TestRun_CancelBeforeFirstGeneration(t *testing.T) {
	o, err := New(smallParams(), relaxedPlan(), testCatalog(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := o.Run(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, StatusStopped, result.Status)
	assert.Equal(t, int32(0), result.GenerationsRun)
	// 取消时也要带回初始种群中的最优个体
	assert.Len(t, result.BestSchedule, domain.HorizonLength)
}

func TestRun_ProgressSnapshots(t *testing.T) {
	o, err := New(smallParams(), relaxedPlan(), testCatalog(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	progress := make(chan Progress, 256)
	result, err := o.Run(context.Background(), progress)
	require.NoError(t, err)
	close(progress)

	var snapshots []Progress
	for p := range progress {
		snapshots = append(snapshots, p)
	}
	require.NotEmpty(t, snapshots)

	// 历史最优的适应度单调不增，代数单调不减
	for i := 1; i < len(snapshots); i++ {
		assert.LessOrEqual(t, snapshots[i].BestFitness, snapshots[i-1].BestFitness)
		assert.GreaterOrEqual(t, snapshots[i].Generation, snapshots[i-1].Generation)
	}

	last := snapshots[len(snapshots)-1]
	assert.Equal(t, result.BestFitness, last.BestFitness)
	assert.Len(t, last.BestPreview, domain.HorizonLength)
}

func TestParametersApplyDefaults(t *testing.T) {
	p := &Parameters{PopulationSize: 50}
	p.ApplyDefaults()

	assert.Equal(t, int32(50), p.PopulationSize)
	assert.Equal(t, int32(DefaultMaxGenerations), p.MaxGenerations)
	assert.Equal(t, DefaultCrossoverRate, p.CrossoverRate)
	assert.Equal(t, DefaultMutationRate, p.MutationRate)
	assert.NoError(t, p.Validate())
}

func TestParametersValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Parameters)
	}{
		{"种群大小为负", func(p *Parameters) { p.PopulationSize = -1 }},
		{"交叉概率越界", func(p *Parameters) { p.CrossoverRate = 1.5 }},
		{"变异概率越界", func(p *Parameters) { p.MutationRate = -0.1 }},
		{"锦标赛规模超过种群", func(p *Parameters) { p.TournamentSize = p.PopulationSize + 1 }},
		{"停滞上限为零", func(p *Parameters) { p.StagnationLimit = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParameters()
			tt.mutate(p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestParametersEliteCount(t *testing.T) {
	p := &Parameters{PopulationSize: 200, ElitePercentage: 0.2, MinEliteSize: 30}
	assert.Equal(t, 40, p.EliteCount())

	// 比例太小时落到下限
	p = &Parameters{PopulationSize: 50, ElitePercentage: 0.1, MinEliteSize: 30}
	assert.Equal(t, 30, p.EliteCount())

	// 下限超过种群时整体截断
	p = &Parameters{PopulationSize: 20, ElitePercentage: 0.1, MinEliteSize: 30}
	assert.Equal(t, 20, p.EliteCount())
}
