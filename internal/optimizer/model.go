package optimizer

import (
	"errors"

	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
)

// Chromosome: 一个候选班表
type Chromosome struct {
	days    []domain.DayAssignment
	fitness float64
	eval    Evaluation
}

// 深拷贝，防止繁殖过程中基因被后续操作修改
func (c *Chromosome) clone() *Chromosome {
	days := make([]domain.DayAssignment, len(c.days))
	copy(days, c.days)
	return &Chromosome{
		days:    days,
		fitness: c.fitness,
		eval:    c.eval,
	}
}

// 遗传算法参数，零值字段会被 applyDefaults 填充为默认值
type Parameters struct {
	PopulationSize   int32   `json:"populationSize"`
	MaxGenerations   int32   `json:"maxGenerations"`
	CrossoverRate    float64 `json:"crossoverRate"`
	MutationRate     float64 `json:"mutationRate"`
	ElitePercentage  float64 `json:"elitePercentage"`
	MinEliteSize     int32   `json:"minEliteSize"`
	TournamentSize   int32   `json:"tournamentSize"`
	StagnationLimit  int32   `json:"stagnationLimit"`
	ProgressInterval int32   `json:"progressInterval"`
	LogInterval      int32   `json:"logInterval"`
}

func DefaultParameters() *Parameters {
	return &Parameters{
		PopulationSize:   DefaultPopulationSize,
		MaxGenerations:   DefaultMaxGenerations,
		CrossoverRate:    DefaultCrossoverRate,
		MutationRate:     DefaultMutationRate,
		ElitePercentage:  DefaultElitePercentage,
		MinEliteSize:     DefaultMinEliteSize,
		TournamentSize:   DefaultTournamentSize,
		StagnationLimit:  DefaultStagnationLimit,
		ProgressInterval: DefaultProgressInterval,
		LogInterval:      DefaultLogInterval,
	}
}

// ApplyDefaults 将未指定（零值）的参数填充为默认值
func (p *Parameters) ApplyDefaults() {
	defaults := DefaultParameters()
	if p.PopulationSize == 0 {
		p.PopulationSize = defaults.PopulationSize
	}
	if p.MaxGenerations == 0 {
		p.MaxGenerations = defaults.MaxGenerations
	}
	if p.CrossoverRate == 0 {
		p.CrossoverRate = defaults.CrossoverRate
	}
	if p.MutationRate == 0 {
		p.MutationRate = defaults.MutationRate
	}
	if p.ElitePercentage == 0 {
		p.ElitePercentage = defaults.ElitePercentage
	}
	if p.MinEliteSize == 0 {
		p.MinEliteSize = defaults.MinEliteSize
	}
	if p.TournamentSize == 0 {
		p.TournamentSize = defaults.TournamentSize
	}
	if p.StagnationLimit == 0 {
		p.StagnationLimit = defaults.StagnationLimit
	}
	if p.ProgressInterval == 0 {
		p.ProgressInterval = defaults.ProgressInterval
	}
	if p.LogInterval == 0 {
		p.LogInterval = defaults.LogInterval
	}
}

// Validate 拒绝退化的参数，而不是默默产生空结果
func (p *Parameters) Validate() error {
	if p.PopulationSize <= 0 {
		return errors.New("种群大小必须为正数")
	}
	if p.MaxGenerations <= 0 {
		return errors.New("最大迭代次数必须为正数")
	}
	if p.CrossoverRate < 0 || p.CrossoverRate > 1 {
		return errors.New("交叉概率必须在 [0,1] 范围内")
	}
	if p.MutationRate < 0 || p.MutationRate > 1 {
		return errors.New("变异概率必须在 [0,1] 范围内")
	}
	if p.ElitePercentage < 0 || p.ElitePercentage > 1 {
		return errors.New("精英比例必须在 [0,1] 范围内")
	}
	if p.MinEliteSize < 0 {
		return errors.New("最小精英数量不能为负数")
	}
	if p.TournamentSize <= 0 {
		return errors.New("锦标赛规模必须为正数")
	}
	if p.TournamentSize > p.PopulationSize {
		return errors.New("锦标赛规模不能超过种群大小")
	}
	if p.StagnationLimit <= 0 {
		return errors.New("停滞上限必须为正数")
	}
	if p.ProgressInterval <= 0 || p.LogInterval <= 0 {
		return errors.New("进度和日志间隔必须为正数")
	}
	return nil
}

// EliteCount 返回每代无条件保留的精英数量
func (p *Parameters) EliteCount() int {
	count := int(p.ElitePercentage * float64(p.PopulationSize))
	if count < int(p.MinEliteSize) {
		count = int(p.MinEliteSize)
	}
	if count > int(p.PopulationSize) {
		count = int(p.PopulationSize)
	}
	return count
}
