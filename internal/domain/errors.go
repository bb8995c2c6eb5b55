package domain

import "errors"

var (
	ErrUnknownShiftType = errors.New("未知的班次类型")
)
