package models

// MonthlyGrowth количество пациентов, добавленных за месяц.
type MonthlyGrowth struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Count int64 `json:"count"`
}
