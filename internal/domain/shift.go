package domain

import "fmt"

type ShiftType string

const (
	ShiftSmall  ShiftType = "small"
	ShiftMedium ShiftType = "medium"
	ShiftLarge  ShiftType = "large"
)

// ShiftValue: 某种班次的净收入和毛收入
type ShiftValue struct {
	Net   float64 `json:"net"`
	Gross float64 `json:"gross"`
}

// ShiftCatalog: 班次类型到收入的映射，从配置中加载一次，之后不再修改
type ShiftCatalog map[ShiftType]ShiftValue

// Value 返回某种班次的收入
// 如果班表中引用了目录中不存在的班次类型，说明种群操作存在编程缺陷，调用方应视为致命错误
func (c ShiftCatalog) Value(t ShiftType) (ShiftValue, error) {
	v, exists := c[t]
	if !exists {
		return ShiftValue{}, fmt.Errorf("%w: %s", ErrUnknownShiftType, t)
	}
	return v, nil
}

func (c ShiftCatalog) Validate() error {
	for _, t := range []ShiftType{ShiftSmall, ShiftMedium, ShiftLarge} {
		v, exists := c[t]
		if !exists {
			return fmt.Errorf("班次目录缺少类型 %s", t)
		}
		if v.Net <= 0 || v.Gross <= 0 {
			return fmt.Errorf("班次 %s 的收入必须为正数", t)
		}
	}
	return nil
}

// DayAssignment: 某一天的排班决策
// First 为空表示这一天不工作，Second 不为空表示这一天连上两个班（危机模式下用于集中收入）
type DayAssignment struct {
	First  ShiftType `json:"first,omitempty"`
	Second ShiftType `json:"second,omitempty"`
}

func (a DayAssignment) IsEmpty() bool {
	return a.First == ""
}

func (a DayAssignment) IsDouble() bool {
	return a.First != "" && a.Second != ""
}

// Shifts 返回这一天的所有班次（0、1 或 2 个）
func (a DayAssignment) Shifts() []ShiftType {
	if a.First == "" {
		return nil
	}
	if a.Second == "" {
		return []ShiftType{a.First}
	}
	return []ShiftType{a.First, a.Second}
}
