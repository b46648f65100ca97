package models

import (
	"database/sql"
	"time"
)

type Dataset struct {
	ID          string
	Name        string
	BaseYear    int
	PeriodCount int
	Employees   int
	CreatedAt   time.Time
}

// PeriodRow is one stored long-form record. Seq preserves reshape order.
type PeriodRow struct {
	Seq        int
	Employee   string
	Subgroup   string
	Label      string
	PeriodDate time.Time
	Year       int
	Cost       sql.NullFloat64
}
