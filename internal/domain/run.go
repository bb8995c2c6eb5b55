package domain

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusConverged RunStatus = "converged"
	RunStatusStopped   RunStatus = "stopped"
	RunStatusFailed    RunStatus = "failed"
)

// OptimizationRun: 一次优化运行的记录，终态时包含最优班表和各项统计
type OptimizationRun struct {
	ID             int64         `json:"id"`
	PlanID         int64         `json:"planID"`
	Status         RunStatus     `json:"status"`
	Seed           int64         `json:"seed"`
	BestFitness    float64       `json:"bestFitness"`
	FinalBalance   float64       `json:"finalBalance"`
	WorkDaysCount  int32         `json:"workDaysCount"`
	Violations     int32         `json:"violations"`
	GenerationsRun int32         `json:"generationsRun"`
	ElapsedMs      int64         `json:"elapsedMs"`
	IsCrisisMode   bool          `json:"isCrisisMode"`
	Schedule       []ScheduleDay `json:"schedule"`
	ErrorMessage   string        `json:"errorMessage,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	Version        int32         `json:"-"`
}

// RunProgress: 运行过程中对外发布的进度快照
type RunProgress struct {
	Generation    int32     `json:"generation"`
	BestFitness   float64   `json:"bestFitness"`
	Violations    int32     `json:"violations"`
	WorkDaysCount int32     `json:"workDaysCount"`
	IsCrisisMode  bool      `json:"isCrisisMode"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
