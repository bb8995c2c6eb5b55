package optimizer

import (
	"math"

	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
)

// Evaluation: 一次适应度评估的详细结果
type Evaluation struct {
	Fitness       float64
	Violations    int32
	FinalBalance  float64
	WorkDaysCount int32
	// 是否所有天的余额都在最低余额的容差范围内
	WithinTolerance bool
}

/**
 * Evaluate 计算某个班表在给定财务配置下的惩罚得分，越低越好，0 为理论最优
 * fitness = 余额惩罚 + 工作日惩罚 + 聚集惩罚
 * 其中:
 * 		1. 余额惩罚确保每天不击穿最低余额、月末接近目标余额（超出目标按倍数加重）
 * 		2. 工作日惩罚使工作总量接近所需最少天数、避免过长连班和过短休息
 * 		3. 聚集惩罚使用滑动窗口避免工作日扎堆
 * 纯函数，无副作用；全空班表是合法输入，得分高但不报错
 */
func Evaluate(days []domain.DayAssignment, plan *domain.Plan, catalog domain.ShiftCatalog, crisis *CrisisContext) (Evaluation, error) {
	balances, err := domain.ProjectBalances(days, plan, catalog)
	if err != nil {
		return Evaluation{}, err
	}

	eval := Evaluation{
		FinalBalance:    balances[domain.HorizonLength],
		WorkDaysCount:   domain.CountWorkDays(days),
		WithinTolerance: true,
	}

	fitness := 0.0

	// 余额约束：每个击穿最低余额的天都加一次大额惩罚
	for day := int32(1); day <= domain.HorizonLength; day++ {
		if balances[day] < plan.MinimumBalance {
			eval.Violations++
			fitness += ViolationPenalty
		}
		if balances[day] < plan.MinimumBalance-BalanceTolerance {
			eval.WithinTolerance = false
		}
		// 关键日附近收紧余额缓冲，引导搜索在截止日前囤积收入
		if crisis.IsCriticalDay(day) && balances[day] >= plan.MinimumBalance && balances[day] < plan.MinimumBalance+CriticalDayBuffer {
			fitness += FinalBalancePenalty
		}
	}

	// 月末余额与目标的归一化距离，超出目标按倍数加重
	diff := eval.FinalBalance - plan.TargetEndingBalance
	distance := -diff
	if diff > 0 {
		distance = diff * OvershootMultiplier
	}
	norm := math.Abs(plan.TargetEndingBalance)
	if norm < 1 {
		norm = 1
	}
	fitness += FinalBalancePenalty * distance / norm

	// 工作天数偏离所需最少天数的惩罚
	dayDiff := eval.WorkDaysCount - crisis.MinWorkDays
	if dayDiff < 0 {
		dayDiff = -dayDiff
	}
	fitness += WorkDayDiffPenalty * float64(dayDiff)

	fitness += consecutivePenalty(days)
	fitness += gapPenalty(days)
	fitness += clusteringPenalty(days)

	eval.Fitness = fitness
	return eval, nil
}

// 超过 MaxConsecutiveDays 的连续工作段，每段一次惩罚
func consecutivePenalty(days []domain.DayAssignment) float64 {
	penalty := 0.0
	run := 0
	for i := 0; i <= len(days); i++ {
		if i < len(days) && !days[i].IsEmpty() {
			run++
			continue
		}
		if run > MaxConsecutiveDays {
			penalty += ConsecutiveDayPenalty
		}
		run = 0
	}
	return penalty
}

// 工作段之间的休息间隔：过短的间隔单独惩罚，间隔长度的方差加权惩罚
func gapPenalty(days []domain.DayAssignment) float64 {
	var gaps []int
	current := 0
	seenWork := false

	for _, a := range days {
		if a.IsEmpty() {
			if seenWork {
				current++
			}
			continue
		}
		if seenWork && current > 0 {
			gaps = append(gaps, current)
		}
		seenWork = true
		current = 0
	}
	// 末尾的空闲不算间隔

	if len(gaps) == 0 {
		return 0
	}

	penalty := 0.0
	mean := 0.0
	for _, g := range gaps {
		if g < MinGapDays {
			penalty += SmallGapPenalty
		}
		mean += float64(g)
	}
	mean /= float64(len(gaps))

	variance := 0.0
	for _, g := range gaps {
		variance += math.Pow(float64(g)-mean, 2)
	}
	variance /= float64(len(gaps))

	return penalty + GapVarianceWeight*variance
}

// 滑动窗口内工作日过多的惩罚，每个超标窗口一次
func clusteringPenalty(days []domain.DayAssignment) float64 {
	if len(days) < WindowSize {
		return 0
	}

	penalty := 0.0
	inWindow := 0
	for i := 0; i < len(days); i++ {
		if !days[i].IsEmpty() {
			inWindow++
		}
		if i >= WindowSize {
			if !days[i-WindowSize].IsEmpty() {
				inWindow--
			}
		}
		if i >= WindowSize-1 && inWindow > MaxWorkDaysInWindow {
			penalty += ClusteringPenalty
		}
	}
	return penalty
}
