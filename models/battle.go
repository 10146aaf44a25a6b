package models

import "math"

// Battle is a head-to-head popularity vote between two stylars.
type Battle struct {
	ID        string   `json:"id" gorm:"primaryKey"`
	Name      string   `json:"name"`
	Stylar1ID string   `json:"stylar1_id" gorm:"index;not null"`
	Stylar2ID string   `json:"stylar2_id" gorm:"index;not null"`
	Votes1    int64    `json:"votes1"`
	Votes2    int64    `json:"votes2"`
	Voters    []string `json:"voters" gorm:"serializer:json"`

	Timestamps
}

// HasVoted reports whether voterID is already in the voter list.
func (b Battle) HasVoted(voterID string) bool {
	return containsID(b.Voters, voterID)
}

// Contains reports whether stylarID is one of the two contenders.
func (b Battle) Contains(stylarID string) bool {
	return stylarID != "" && (stylarID == b.Stylar1ID || stylarID == b.Stylar2ID)
}

func (b Battle) TotalVotes() int64 {
	return b.Votes1 + b.Votes2
}

// Percentages returns each side's share rounded to one decimal, 0/0 with no votes.
func (b Battle) Percentages() (float64, float64) {
	total := b.TotalVotes()
	if total == 0 {
		return 0, 0
	}
	p1 := math.Round(float64(b.Votes1)/float64(total)*1000) / 10
	p2 := math.Round(float64(b.Votes2)/float64(total)*1000) / 10
	return p1, p2
}
