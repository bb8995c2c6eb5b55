package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type RunFinishedMailData struct {
	FullName       string  `json:"fullName"`
	PlanName       string  `json:"planName"`
	Status         string  `json:"status"`
	FinalBalance   float64 `json:"finalBalance"`
	WorkDaysCount  int32   `json:"workDaysCount"`
	Violations     int32   `json:"violations"`
	GenerationsRun int32   `json:"generationsRun"`
}
