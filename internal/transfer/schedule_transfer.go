package transfer

type ScheduleCreation struct {
	Name           string `json:"name"`
	CronExpression string `json:"cron_expression"`
	Enabled        *bool  `json:"enabled"`
}

type ScheduleUpdate struct {
	Name           *string `json:"name"`
	CronExpression *string `json:"cron_expression"`
	Enabled        *bool   `json:"enabled"`
}
