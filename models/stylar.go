package models

import (
	"strings"
)

// Starting economics for a freshly created stylar.
const (
	DefaultStylarValue int64 = 100
	DefaultStylarScore int64 = 50

	// HighValueThreshold is the cut-off for the "high-value" feed.
	HighValueThreshold int64 = 500
)

// Stylar is a style submission users can invest in.
type Stylar struct {
	ID          string   `json:"id" gorm:"primaryKey"`
	Name        string   `json:"name" gorm:"not null"`
	Slug        string   `json:"slug" gorm:"index"`
	Description string   `json:"description" gorm:"type:text"`
	Style       string   `json:"style" gorm:"type:varchar(32);index"`
	Images      []string `json:"images" gorm:"serializer:json"`

	// value is moved by investments, score by battle votes
	Value int64 `json:"value"`
	Score int64 `json:"score"`

	CreatorID string `json:"creator_id" gorm:"index"`

	Timestamps
}

// CoverImage returns the first image or "" when the stylar has none.
func (s Stylar) CoverImage() string {
	if len(s.Images) == 0 {
		return ""
	}
	return s.Images[0]
}

// ParseList splits a comma-joined id/url list, dropping blanks.
func ParseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinList is the inverse of ParseList.
func JoinList(items []string) string {
	return strings.Join(items, ",")
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
