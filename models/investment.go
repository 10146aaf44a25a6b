package models

import "time"

// Investment is an append-only log entry: user put Amount coins into a stylar.
type Investment struct {
	ID       string    `json:"id" gorm:"primaryKey"`
	StylarID string    `json:"stylar_id" gorm:"index;not null"`
	UserID   string    `json:"user_id" gorm:"index;not null"`
	Amount   int64     `json:"amount" gorm:"not null"`
	Date     time.Time `json:"date" gorm:"index"`
}

// InvestmentFilter narrows ListInvestments. Empty fields match everything.
type InvestmentFilter struct {
	UserID   string
	StylarID string
}

// Matches applies the filter to a single record.
func (f InvestmentFilter) Matches(inv Investment) bool {
	if f.UserID != "" && inv.UserID != f.UserID {
		return false
	}
	if f.StylarID != "" && inv.StylarID != f.StylarID {
		return false
	}
	return true
}
