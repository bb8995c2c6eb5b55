package utils

import (
	"fmt"

	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
)

// ValidatePlan 在运行开始前检查财务配置是否合法
// 不合法的配置直接拒绝，而不是进入迭代后再失败
func ValidatePlan(plan *domain.Plan, catalog domain.ShiftCatalog) error {
	for i, e := range plan.Expenses {
		if e.Day < 1 || e.Day > domain.HorizonLength {
			return fmt.Errorf("第 %d 项支出的日期 %d 超出 [1,%d] 范围", i+1, e.Day, domain.HorizonLength)
		}
		if e.Amount < 0 {
			return fmt.Errorf("第 %d 项支出的金额不能为负数", i+1)
		}
	}
	for i, d := range plan.Deposits {
		if d.Day < 1 || d.Day > domain.HorizonLength {
			return fmt.Errorf("第 %d 项存入的日期 %d 超出 [1,%d] 范围", i+1, d.Day, domain.HorizonLength)
		}
		if d.Amount < 0 {
			return fmt.Errorf("第 %d 项存入的金额不能为负数", i+1)
		}
	}

	// 第一天无论怎么排班都会击穿最低余额的配置是显然不可满足的
	// 第一天最多连上两个大班
	maxDayOneEarnings := 2 * catalog[domain.ShiftLarge].Net
	dayOneExpenses := 0.0
	for _, e := range plan.Expenses {
		if e.Day == 1 {
			dayOneExpenses += e.Amount
		}
	}
	dayOneDeposits := 0.0
	for _, d := range plan.Deposits {
		if d.Day == 1 {
			dayOneDeposits += d.Amount
		}
	}
	if plan.StartingBalance+maxDayOneEarnings+dayOneDeposits-dayOneExpenses < plan.MinimumBalance {
		return fmt.Errorf("第一天即使连上两个大班余额也会低于最低余额，配置不可满足")
	}

	return nil
}
