package optimizer

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
	"github.com/sysu-oasis/balance-planner/backend/internal/utils"
)

type Status string

const (
	StatusConverged Status = "converged"
	StatusStopped   Status = "stopped"
	StatusFailed    Status = "failed"
)

// Progress: 运行过程中周期性发布的进度快照
type Progress struct {
	Generation    int32
	BestFitness   float64
	Violations    int32
	WorkDaysCount int32
	IsCrisisMode  bool
	BestPreview   []domain.ScheduleDay
}

// Result: 一次优化运行的终态结果，取消时也会带回目前为止的最优个体
type Result struct {
	Status         Status
	BestSchedule   []domain.ScheduleDay
	BestFitness    float64
	FinalBalance   float64
	WorkDaysCount  int32
	Violations     int32
	GenerationsRun int32
	ElapsedMs      int64
	IsCrisisMode   bool
}

// Optimizer: 针对单个财务配置的一次性优化器，不同运行之间不共享任何状态
type Optimizer struct {
	params  *Parameters
	plan    *domain.Plan
	catalog domain.ShiftCatalog
	rng     *rand.Rand
	crisis  *CrisisContext
}

// New 校验输入并构建优化器
// 随机数生成器由调用方注入，保证相同种子下逐代的适应度轨迹完全一致
func New(params *Parameters, plan *domain.Plan, catalog domain.ShiftCatalog, rng *rand.Rand) (*Optimizer, error) {
	if rng == nil {
		return nil, fmt.Errorf("随机数生成器未初始化")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	if err := utils.ValidatePlan(plan, catalog); err != nil {
		return nil, err
	}

	return &Optimizer{
		params:  params,
		plan:    plan,
		catalog: catalog,
		rng:     rng,
		crisis:  analyzeCrisis(plan, catalog, rng),
	}, nil
}

// Crisis 返回本次运行的危机分析结果
func (o *Optimizer) Crisis() *CrisisContext {
	return o.crisis
}

/**
 * Run 执行代际循环：评估 → 排序 → 精英保留 → 选择/交叉/变异 → 终止检查
 * 取消是协作式的，只在代与代之间检查一次，取消后仍返回目前为止的最优结果
 * 进度发布是单向非阻塞的，消费方过慢时中间快照会被丢弃
 */
func (o *Optimizer) Run(ctx context.Context, progress chan<- Progress) (*Result, error) {
	start := time.Now()

	// 初始化种群并评估第 0 代
	pop := make([]*Chromosome, o.params.PopulationSize)
	for i := range pop {
		pop[i] = o.randomInitChromosome()
		if err := o.evaluate(pop[i]); err != nil {
			return o.buildResult(StatusFailed, nil, 0, start), err
		}
	}

	// 先从初始种群中取出最优个体，保证即使在第 0 代被取消也能返回结果
	best := pop[0].clone()
	for _, ch := range pop[1:] {
		if ch.fitness < best.fitness {
			best = ch.clone()
		}
	}

	stagnation := int32(0)
	generationsRun := int32(0)
	status := StatusConverged

	for gen := int32(0); gen < o.params.MaxGenerations; gen++ {
		// 每代边界检查一次取消信号
		select {
		case <-ctx.Done():
			return o.buildResult(StatusStopped, best, generationsRun, start), nil
		default:
		}

		// 按适应度升序排序，越低越好
		sort.SliceStable(pop, func(i, j int) bool {
			return pop[i].fitness < pop[j].fitness
		})

		// 更新历史最优并维护停滞计数
		// 第 0 代只是确立基线，从第 1 代起才算"没有改进"
		if gen == 0 || pop[0].fitness < best.fitness*ImprovementThreshold {
			stagnation = 0
		} else {
			stagnation++
		}
		if pop[0].fitness < best.fitness {
			best = pop[0].clone()
		}

		generationsRun = gen + 1

		if progress != nil && gen%o.params.ProgressInterval == 0 {
			o.emitProgress(progress, gen, best)
		}
		if gen%o.params.LogInterval == 0 {
			slog.Debug("优化进行中",
				"generation", gen,
				"bestFitness", best.fitness,
				"violations", best.eval.Violations,
				"stagnation", stagnation,
				"isCrisis", o.crisis.IsCrisis,
			)
		}

		if o.shouldTerminate(gen, best, stagnation) {
			break
		}

		// 繁殖下一代：精英无条件保留，其余由锦标赛选择 + 交叉 + 变异产生
		eliteCount := o.params.EliteCount()
		newPop := make([]*Chromosome, 0, o.params.PopulationSize)
		for i := 0; i < eliteCount && i < len(pop); i++ {
			newPop = append(newPop, pop[i])
		}

		for len(newPop) < int(o.params.PopulationSize) {
			p1 := o.selectByTournament(pop).clone()
			p2 := o.selectByTournament(pop).clone()

			if o.rng.Float64() < o.params.CrossoverRate {
				o.singlePointCrossover(p1, p2)
			}

			o.mutate(p1)
			o.mutate(p2)

			if err := o.evaluate(p1); err != nil {
				return o.buildResult(StatusFailed, best, generationsRun, start), err
			}
			newPop = append(newPop, p1)

			if len(newPop) < int(o.params.PopulationSize) {
				if err := o.evaluate(p2); err != nil {
					return o.buildResult(StatusFailed, best, generationsRun, start), err
				}
				newPop = append(newPop, p2)
			}
		}

		pop = newPop
	}

	result := o.buildResult(status, best, generationsRun, start)
	if progress != nil {
		o.emitProgress(progress, generationsRun, best)
	}
	return result, nil
}

func (o *Optimizer) evaluate(ch *Chromosome) error {
	eval, err := Evaluate(ch.days, o.plan, o.catalog, o.crisis)
	if err != nil {
		return err
	}
	ch.eval = eval
	ch.fitness = eval.Fitness
	return nil
}

// 分级提前终止：停滞、末段高质量解、中段可接受解、早段完美解
func (o *Optimizer) shouldTerminate(gen int32, best *Chromosome, stagnation int32) bool {
	if stagnation >= o.params.StagnationLimit {
		return true
	}

	remaining := o.params.MaxGenerations - gen
	switch {
	case remaining <= FinalCheck && best.fitness <= ExtendedThreshold && best.eval.WithinTolerance:
		return true
	case remaining <= SecondCheck && best.fitness <= FitnessThreshold:
		return true
	case remaining <= FirstCheck && best.fitness == 0:
		return true
	}
	return false
}

// 非阻塞发布进度，消费方来不及收的快照直接丢弃
func (o *Optimizer) emitProgress(progress chan<- Progress, gen int32, best *Chromosome) {
	p := Progress{
		Generation:    gen,
		BestFitness:   best.fitness,
		Violations:    best.eval.Violations,
		WorkDaysCount: best.eval.WorkDaysCount,
		IsCrisisMode:  o.crisis.IsCrisis,
		BestPreview:   domain.ToScheduleDays(best.days),
	}
	select {
	case progress <- p:
	default:
	}
}

func (o *Optimizer) buildResult(status Status, best *Chromosome, generationsRun int32, start time.Time) *Result {
	result := &Result{
		Status:         status,
		GenerationsRun: generationsRun,
		ElapsedMs:      time.Since(start).Milliseconds(),
		IsCrisisMode:   o.crisis.IsCrisis,
	}

	if best != nil && best.days != nil {
		result.BestSchedule = domain.ToScheduleDays(best.days)
		result.BestFitness = best.fitness
		result.FinalBalance = best.eval.FinalBalance
		result.WorkDaysCount = best.eval.WorkDaysCount
		result.Violations = best.eval.Violations
	}

	return result
}
