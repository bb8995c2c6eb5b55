package optimizer

import (
	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
)

// 按相对权重抽取一个班次类型
func (o *Optimizer) drawShiftType() domain.ShiftType {
	total := 0.0
	for _, tw := range normalTypeWeights {
		total += tw.weight
	}
	pick := o.rng.Float64() * total
	partial := 0.0
	for _, tw := range normalTypeWeights {
		partial += tw.weight
		if pick < partial {
			return tw.shift
		}
	}
	return normalTypeWeights[len(normalTypeWeights)-1].shift
}

// 正常模式下某一天的随机排班：先抽类型，再按该类型的填充概率决定是否工作
func (o *Optimizer) drawNormalAssignment() domain.DayAssignment {
	shift := o.drawShiftType()
	if o.rng.Float64() < normalFillGate[shift] {
		return domain.DayAssignment{First: shift}
	}
	return domain.DayAssignment{}
}

// 危机模式下关键日的随机排班：双班组合前置收入
func (o *Optimizer) drawCrisisAssignment() domain.DayAssignment {
	total := 0.0
	for _, ca := range crisisAssignments {
		total += ca.weight
	}
	pick := o.rng.Float64() * total
	partial := 0.0
	for _, ca := range crisisAssignments {
		partial += ca.weight
		if pick < partial {
			return ca.assignment
		}
	}
	return crisisAssignments[len(crisisAssignments)-1].assignment
}

// randomInitChromosome 随机初始化一个染色体
func (o *Optimizer) randomInitChromosome() *Chromosome {
	days := make([]domain.DayAssignment, domain.HorizonLength)

	for i := range days {
		day := int32(i + 1)
		if o.crisis.IsCrisis && o.crisis.IsCriticalDay(day) {
			if o.rng.Float64() < CrisisModeUsage {
				days[i] = o.drawCrisisAssignment()
			}
			continue
		}
		days[i] = o.drawNormalAssignment()
	}

	return &Chromosome{days: days}
}

// 锦标赛选择：不放回地抽 TournamentSize 个个体，保留适应度最低的那个
func (o *Optimizer) selectByTournament(pop []*Chromosome) *Chromosome {
	size := int(o.params.TournamentSize)

	// 部分 Fisher-Yates，只洗出前 size 个下标
	indices := make([]int, len(pop))
	for i := range indices {
		indices[i] = i
	}
	for i := 0; i < size; i++ {
		j := i + o.rng.Intn(len(indices)-i)
		indices[i], indices[j] = indices[j], indices[i]
	}

	best := pop[indices[0]]
	for i := 1; i < size; i++ {
		if pop[indices[i]].fitness < best.fitness {
			best = pop[indices[i]]
		}
	}
	return best
}

// 单点交叉：交换两个染色体在随机切点之后的天数，长度不变
func (o *Optimizer) singlePointCrossover(ch1 *Chromosome, ch2 *Chromosome) {
	point := o.rng.Intn(domain.HorizonLength)
	for i := point; i < domain.HorizonLength; i++ {
		ch1.days[i], ch2.days[i] = ch2.days[i], ch1.days[i]
	}
}

// 按相对权重从变异表中选取一个动作
func (o *Optimizer) drawMutationAction(critical bool) mutationAction {
	table := normalMutationWeights
	if o.crisis.IsCrisis && critical {
		table = crisisMutationWeights
	}

	total := 0.0
	for _, aw := range table {
		total += aw.weight
	}
	pick := o.rng.Float64() * total
	partial := 0.0
	for _, aw := range table {
		partial += aw.weight
		if pick < partial {
			return aw.action
		}
	}
	return table[len(table)-1].action
}

// mutate 对每个槽位以 MutationRate 概率触发变异，触发后恰好执行一个动作
func (o *Optimizer) mutate(ch *Chromosome) {
	for i := range ch.days {
		if o.rng.Float64() >= o.params.MutationRate {
			continue
		}

		day := int32(i + 1)
		critical := o.crisis.IsCriticalDay(day)

		switch o.drawMutationAction(critical) {
		case mutationRemove:
			ch.days[i] = domain.DayAssignment{}
		case mutationToSmall:
			ch.days[i] = domain.DayAssignment{First: domain.ShiftSmall}
		case mutationToMedium:
			ch.days[i] = domain.DayAssignment{First: domain.ShiftMedium}
		case mutationToLarge:
			ch.days[i] = domain.DayAssignment{First: domain.ShiftLarge}
		case mutationAddShift:
			if o.crisis.IsCrisis && critical {
				// 关键日上把空天或单班加成双班
				if ch.days[i].IsEmpty() {
					ch.days[i] = o.drawCrisisAssignment()
				} else if !ch.days[i].IsDouble() {
					ch.days[i].Second = domain.ShiftLarge
				}
				continue
			}
			if ch.days[i].IsEmpty() {
				ch.days[i] = domain.DayAssignment{First: o.drawShiftType()}
			}
		}
	}
}
