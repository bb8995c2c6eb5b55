package domain

import "time"

// PlanEntry: 发生在某一天的一笔支出或存入
type PlanEntry struct {
	Day    int32   `json:"day"`
	Amount float64 `json:"amount"`
}

// Plan: 一个月的财务配置，是优化器的输入
type Plan struct {
	ID                  int64       `json:"id"`
	UserID              int64       `json:"userID"`
	Name                string      `json:"name"`
	Description         string      `json:"description"`
	StartingBalance     float64     `json:"startingBalance"`
	TargetEndingBalance float64     `json:"targetEndingBalance"`
	MinimumBalance      float64     `json:"minimumBalance"`
	Expenses            []PlanEntry `json:"expenses"`
	Deposits            []PlanEntry `json:"deposits"`
	CreatedAt           time.Time   `json:"createdAt"`
	Version             int32       `json:"-"`
}

// TotalExpenses 返回计划内所有支出之和
func (p *Plan) TotalExpenses() float64 {
	total := 0.0
	for _, e := range p.Expenses {
		total += e.Amount
	}
	return total
}

// TotalDeposits 返回计划内所有存入之和
func (p *Plan) TotalDeposits() float64 {
	total := 0.0
	for _, d := range p.Deposits {
		total += d.Amount
	}
	return total
}

// RequiredEarnings 返回从起始余额到目标余额所需要的总收入（不会为负）
func (p *Plan) RequiredEarnings() float64 {
	required := p.TargetEndingBalance - p.StartingBalance + p.TotalExpenses() - p.TotalDeposits()
	if required < 0 {
		return 0
	}
	return required
}
