package optimizer

import (
	"math"
	"math/rand"

	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
)

// CrisisContext: 危机分析的输出，供种群操作和适应度评估使用
type CrisisContext struct {
	IsCrisis     bool
	CriticalDays map[int32]bool
	// 达到目标所需的最少工作天数估计
	MinWorkDays int32
}

// IsCriticalDay 判断 1..30 的某一天是否为关键日
func (c *CrisisContext) IsCriticalDay(day int32) bool {
	return c.CriticalDays[day]
}

// 正常模式下单个工作日的期望净收入（以工作为条件的类型分布加权）
func expectedNetPerWorkDay(catalog domain.ShiftCatalog) float64 {
	weighted := 0.0
	gateSum := 0.0
	for _, tw := range normalTypeWeights {
		p := tw.weight * normalFillGate[tw.shift]
		weighted += p * catalog[tw.shift].Net
		gateSum += p
	}
	if gateSum == 0 {
		return 0
	}
	return weighted / gateSum
}

// 正常模式下每天的期望填充率
func normalFillProbability() float64 {
	p := 0.0
	for _, tw := range normalTypeWeights {
		p += tw.weight * normalFillGate[tw.shift]
	}
	return p
}

// analyzeCrisis 在一次运行开始时判断财务配置在正常概率分布下是否不可行，
// 并标记大额支出和月末前的关键日
func analyzeCrisis(plan *domain.Plan, catalog domain.ShiftCatalog, rng *rand.Rand) *CrisisContext {
	ctx := &CrisisContext{
		CriticalDays: make(map[int32]bool),
	}

	required := plan.RequiredEarnings()
	perWorkDay := expectedNetPerWorkDay(catalog)
	fill := normalFillProbability()
	achievable := float64(domain.HorizonLength) * fill * perWorkDay

	if perWorkDay > 0 {
		ctx.MinWorkDays = int32(math.Ceil(required / perWorkDay))
		if ctx.MinWorkDays > domain.HorizonLength {
			ctx.MinWorkDays = domain.HorizonLength
		}
	}

	// 所需收入超过正常模式的期望收入，进入危机模式
	if required > achievable {
		ctx.IsCrisis = true
	}

	// 按均匀摊开的朴素预测检查最低余额是否会被击穿
	if !ctx.IsCrisis {
		expensesByDay := make(map[int32]float64)
		for _, e := range plan.Expenses {
			expensesByDay[e.Day] += e.Amount
		}
		depositsByDay := make(map[int32]float64)
		for _, d := range plan.Deposits {
			depositsByDay[d.Day] += d.Amount
		}

		dailyEarnings := achievable / float64(domain.HorizonLength)
		balance := plan.StartingBalance
		for day := int32(1); day <= domain.HorizonLength; day++ {
			balance += dailyEarnings - expensesByDay[day] + depositsByDay[day]
			if balance < plan.MinimumBalance {
				ctx.IsCrisis = true
				break
			}
		}
	}

	// 大额支出（超过大班净收入）前的 [MinDaysBefore, MaxDaysBefore] 天为关键日，
	// 每个锚点附加一个随机偏移，避免同一配置多次运行时的确定性聚集
	largeNet := catalog[domain.ShiftLarge].Net
	anchors := []int32{domain.HorizonLength + 1} // 月末也是一个锚点
	for _, e := range plan.Expenses {
		if e.Amount > largeNet {
			anchors = append(anchors, e.Day)
		}
	}

	for _, anchor := range anchors {
		offset := int32(rng.Intn(RandomRange + 1))
		for day := anchor - MaxDaysBefore - offset; day <= anchor-MinDaysBefore; day++ {
			if day >= 1 && day <= domain.HorizonLength {
				ctx.CriticalDays[day] = true
			}
		}
	}

	return ctx
}
