package seed

import (
	"log/slog"

	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
	"github.com/sysu-oasis/balance-planner/backend/internal/repository"
)

// 有代表性的演示计划：从宽松到紧张，方便前端联调和算法观察
var demoPlans = []*domain.Plan{
	{
		Name:                "宽松月份",
		Description:         "目标不高，支出分散，正常模式即可完成",
		StartingBalance:     1000,
		TargetEndingBalance: 1500,
		MinimumBalance:      200,
		Expenses: []domain.PlanEntry{
			{Day: 10, Amount: 300},
			{Day: 20, Amount: 250},
		},
		Deposits: []domain.PlanEntry{
			{Day: 15, Amount: 200},
		},
	},
	{
		Name:                "房租月份",
		Description:         "月中有一笔大额房租，月末还有一笔水电",
		StartingBalance:     800,
		TargetEndingBalance: 1200,
		MinimumBalance:      100,
		Expenses: []domain.PlanEntry{
			{Day: 15, Amount: 900},
			{Day: 28, Amount: 200},
		},
	},
	{
		Name:                "紧张月份",
		Description:         "起始余额低、目标高，预计触发危机模式",
		StartingBalance:     300,
		TargetEndingBalance: 2000,
		MinimumBalance:      100,
		Expenses: []domain.PlanEntry{
			{Day: 5, Amount: 400},
			{Day: 12, Amount: 500},
			{Day: 25, Amount: 300},
		},
		Deposits: []domain.PlanEntry{
			{Day: 8, Amount: 150},
		},
	},
}

// SeedDemoPlans 为数据库中的每个用户插入一套演示计划
func SeedDemoPlans(r *repository.Repository) {
	users, err := r.GetAllUsers()
	if err != nil {
		slog.Error("无法获取用户列表", "error", err)
		return
	}
	if len(users) == 0 {
		slog.Error("数据库中没有用户，请先插入用户")
		return
	}

	cnt := 0
	for _, user := range users {
		for _, tpl := range demoPlans {
			plan := &domain.Plan{
				UserID:              user.ID,
				Name:                tpl.Name,
				Description:         tpl.Description,
				StartingBalance:     tpl.StartingBalance,
				TargetEndingBalance: tpl.TargetEndingBalance,
				MinimumBalance:      tpl.MinimumBalance,
				Expenses:            tpl.Expenses,
				Deposits:            tpl.Deposits,
			}
			if err := r.CreatePlan(plan); err != nil {
				slog.Error("无法插入演示计划", "name", plan.Name, "error", err)
				continue
			}
			cnt++
		}
	}

	slog.Info("插入演示计划成功", slog.Int("count", cnt))
}
