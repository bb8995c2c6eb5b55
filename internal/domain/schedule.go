package domain

// HorizonLength: 规划窗口的天数，内部使用 0 起始的下标，对外输出时转换为 1..30 的日期
const HorizonLength = 30

// ScheduleDay: 对外输出的某一天的排班（日期为 1..30）
type ScheduleDay struct {
	Day    int32       `json:"day"`
	Shifts []ShiftType `json:"shifts"`
}

// DayEarnings 返回某一天所有班次的净收入之和
func DayEarnings(a DayAssignment, catalog ShiftCatalog) (float64, error) {
	earnings := 0.0
	for _, t := range a.Shifts() {
		v, err := catalog.Value(t)
		if err != nil {
			return 0, err
		}
		earnings += v.Net
	}
	return earnings, nil
}

// ProjectBalances 计算某个班表在给定财务配置下每天结束时的余额
// 返回长度为 HorizonLength+1 的数组，下标 0 为起始余额，下标 d 为第 d 天结束时的余额
// 余额只是 (班表, 配置) 的纯函数，按需计算，不存储在基因上
func ProjectBalances(days []DayAssignment, plan *Plan, catalog ShiftCatalog) ([]float64, error) {
	expensesByDay := make(map[int32]float64)
	for _, e := range plan.Expenses {
		expensesByDay[e.Day] += e.Amount
	}
	depositsByDay := make(map[int32]float64)
	for _, d := range plan.Deposits {
		depositsByDay[d.Day] += d.Amount
	}

	balances := make([]float64, HorizonLength+1)
	balances[0] = plan.StartingBalance

	for i := 0; i < HorizonLength; i++ {
		day := int32(i + 1)

		earnings := 0.0
		if i < len(days) {
			var err error
			earnings, err = DayEarnings(days[i], catalog)
			if err != nil {
				return nil, err
			}
		}

		balances[day] = balances[day-1] + earnings - expensesByDay[day] + depositsByDay[day]
	}

	return balances, nil
}

// CountWorkDays 返回班表中的工作天数（连上两个班的一天也只算一天）
func CountWorkDays(days []DayAssignment) int32 {
	count := int32(0)
	for _, a := range days {
		if !a.IsEmpty() {
			count++
		}
	}
	return count
}

// ToScheduleDays 将内部 0 起始的班表转换为对外输出的 1..30 日期格式
func ToScheduleDays(days []DayAssignment) []ScheduleDay {
	result := make([]ScheduleDay, len(days))
	for i, a := range days {
		result[i] = ScheduleDay{
			Day:    int32(i + 1),
			Shifts: a.Shifts(),
		}
	}
	return result
}
