package optimizer

import "github.com/sysu-oasis/balance-planner/backend/internal/domain"

// 遗传算法默认参数
const (
	DefaultPopulationSize   = 200
	DefaultMaxGenerations   = 500
	DefaultCrossoverRate    = 0.7
	DefaultMutationRate     = 0.15
	DefaultElitePercentage  = 0.2
	DefaultMinEliteSize     = 30
	DefaultTournamentSize   = 7
	DefaultStagnationLimit  = 150
	DefaultProgressInterval = 50
	DefaultLogInterval      = 100
)

// 适应度各项惩罚权重，越低越好，0 为理论最优
const (
	// ViolationPenalty 远大于其他项，使得余额约束在字典序上优先于一切
	ViolationPenalty    = 5000.0
	FinalBalancePenalty = 100.0
	// 超出目标余额的距离先乘以这个倍数再加权，多赚不如少干
	OvershootMultiplier = 2.0
	// 关键日附近要求余额高出最低余额这个缓冲量
	CriticalDayBuffer = 200.0

	WorkDayDiffPenalty    = 200.0
	MaxConsecutiveDays    = 5
	ConsecutiveDayPenalty = 500.0
	MinGapDays            = 2
	SmallGapPenalty       = 150.0
	GapVarianceWeight     = 150.0

	WindowSize          = 5
	MaxWorkDaysInWindow = 3
	ClusteringPenalty   = 300.0
)

// 提前终止的分级检查
const (
	ImprovementThreshold = 0.99
	FirstCheck           = 300
	SecondCheck          = 100
	FinalCheck           = 50
	FitnessThreshold     = 1000.0
	ExtendedThreshold    = 100.0
	BalanceTolerance     = 5.0
)

// 危机模式与关键日
const (
	MinDaysBefore   = 2
	MaxDaysBefore   = 5
	RandomRange     = 4
	CrisisModeUsage = 0.9
)

// 正常模式下每天的排班概率：先按权重抽班次类型，再按该类型的填充概率决定是否工作
// 期望填充率为 0.6*0.5 + 0.2*0.3 + 0.2*0.2 = 0.4
var normalTypeWeights = []struct {
	shift  domain.ShiftType
	weight float64
}{
	{domain.ShiftLarge, 0.6},
	{domain.ShiftMedium, 0.2},
	{domain.ShiftSmall, 0.2},
}

var normalFillGate = map[domain.ShiftType]float64{
	domain.ShiftLarge:  0.5,
	domain.ShiftMedium: 0.3,
	domain.ShiftSmall:  0.2,
}

// 危机模式下关键日的排班组合：用双班前置收入
var crisisAssignments = []struct {
	assignment domain.DayAssignment
	weight     float64
}{
	{domain.DayAssignment{First: domain.ShiftLarge, Second: domain.ShiftLarge}, 0.4},
	{domain.DayAssignment{First: domain.ShiftLarge, Second: domain.ShiftMedium}, 0.4},
	{domain.DayAssignment{First: domain.ShiftMedium, Second: domain.ShiftMedium}, 0.2},
}

type mutationAction int

const (
	mutationRemove mutationAction = iota
	mutationToSmall
	mutationToMedium
	mutationToLarge
	mutationAddShift
)

// 变异动作的相对权重，触发变异的槽位只会选中一个动作
var normalMutationWeights = []struct {
	action mutationAction
	weight float64
}{
	{mutationRemove, 0.2},
	{mutationToSmall, 0.3},
	{mutationToMedium, 0.2},
	{mutationToLarge, 0.15},
	{mutationAddShift, 0.5},
}

// 危机模式下关键日的变异偏向高收入动作
var crisisMutationWeights = []struct {
	action mutationAction
	weight float64
}{
	{mutationRemove, 0.05},
	{mutationToMedium, 0.1},
	{mutationToLarge, 0.4},
	{mutationAddShift, 0.45},
}
