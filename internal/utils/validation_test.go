package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
)

func testCatalog() domain.ShiftCatalog {
	return domain.ShiftCatalog{
		domain.ShiftSmall:  {Net: 40, Gross: 55},
		domain.ShiftMedium: {Net: 70, Gross: 90},
		domain.ShiftLarge:  {Net: 100, Gross: 130},
	}
}

func TestValidatePlan(t *testing.T) {
	tests := []struct {
		name    string
		plan    *domain.Plan
		wantErr bool
	}{
		{
			name: "合法配置",
			plan: &domain.Plan{
				StartingBalance:     500,
				TargetEndingBalance: 1000,
				MinimumBalance:      100,
				Expenses:            []domain.PlanEntry{{Day: 10, Amount: 200}},
				Deposits:            []domain.PlanEntry{{Day: 20, Amount: 100}},
			},
		},
		{
			name: "支出日期越界",
			plan: &domain.Plan{
				Expenses: []domain.PlanEntry{{Day: 31, Amount: 100}},
			},
			wantErr: true,
		},
		{
			name: "存入日期越界",
			plan: &domain.Plan{
				Deposits: []domain.PlanEntry{{Day: 0, Amount: 100}},
			},
			wantErr: true,
		},
		{
			name: "支出金额为负",
			plan: &domain.Plan{
				Expenses: []domain.PlanEntry{{Day: 5, Amount: -10}},
			},
			wantErr: true,
		},
		{
			name: "第一天必然击穿最低余额",
			plan: &domain.Plan{
				StartingBalance:     0,
				TargetEndingBalance: 1000,
				MinimumBalance:      500,
				Expenses:            []domain.PlanEntry{{Day: 1, Amount: 300}},
			},
			wantErr: true,
		},
		{
			name: "第一天靠两个大班勉强撑住",
			plan: &domain.Plan{
				StartingBalance:     300,
				TargetEndingBalance: 1000,
				MinimumBalance:      100,
				Expenses:            []domain.PlanEntry{{Day: 1, Amount: 400}},
			},
		},
		{
			name: "第一天的存入可以抵消支出",
			plan: &domain.Plan{
				StartingBalance:     0,
				TargetEndingBalance: 1000,
				MinimumBalance:      100,
				Expenses:            []domain.PlanEntry{{Day: 1, Amount: 300}},
				Deposits:            []domain.PlanEntry{{Day: 1, Amount: 300}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlan(tt.plan, testCatalog())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenerateRandomPlan(t *testing.T) {
	for i := 0; i < 50; i++ {
		plan := GenerateRandomPlan(1)
		assert.NoError(t, ValidatePlan(plan, testCatalog()), "随机计划必须通过校验")
	}
}
