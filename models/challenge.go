package models

import "time"

// ChallengeStatus is derived from the challenge window, never stored.
type ChallengeStatus string

const (
	ChallengeUpcoming  ChallengeStatus = "upcoming"
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
)

// Challenge is a themed competition stylars can be submitted to.
type Challenge struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Theme       string    `json:"theme" gorm:"not null"`
	Slug        string    `json:"slug" gorm:"index"`
	Description string    `json:"description" gorm:"type:text"`
	StartDate   time.Time `json:"start_date" gorm:"not null;index"`
	EndDate     time.Time `json:"end_date" gorm:"not null;index"`

	Submissions []string `json:"submissions" gorm:"serializer:json"`

	// Set once by the scheduler after the window closes.
	Finalized      bool   `json:"finalized" gorm:"default:false"`
	WinnerStylarID string `json:"winner_stylar_id,omitempty"`

	Timestamps
}

// Status places now relative to the challenge window. Both bounds are inclusive
// for the active state.
func (c Challenge) Status(now time.Time) ChallengeStatus {
	switch {
	case now.Before(c.StartDate):
		return ChallengeUpcoming
	case now.After(c.EndDate):
		return ChallengeCompleted
	default:
		return ChallengeActive
	}
}

// HasSubmission reports whether stylarID was already submitted.
func (c Challenge) HasSubmission(stylarID string) bool {
	return containsID(c.Submissions, stylarID)
}

// TimeLeft until the window closes; zero once completed.
func (c Challenge) TimeLeft(now time.Time) time.Duration {
	if d := c.EndDate.Sub(now); d > 0 {
		return d
	}
	return 0
}
