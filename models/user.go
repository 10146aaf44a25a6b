package models

// User is a StyleCoin holder. There is no real auth: the API acts on behalf of a
// configured "current user" unless the gateway forwards another id.
type User struct {
	ID           string   `json:"id" gorm:"primaryKey"`
	Username     string   `json:"username" gorm:"uniqueIndex;not null"`
	StyleCoins   int64    `json:"stylecoins"`
	OwnedStylars []string `json:"owned_stylars" gorm:"serializer:json"`
	Badges       []string `json:"badges" gorm:"serializer:json"`

	// Joined on read from the investment log, never persisted on the user row.
	Investments []Investment `json:"investments" gorm:"-"`

	Timestamps
}

// Owns reports whether stylarID is in the user's owned list.
func (u User) Owns(stylarID string) bool {
	return containsID(u.OwnedStylars, stylarID)
}

// HasBadge reports whether the badge name was already awarded.
func (u User) HasBadge(name string) bool {
	return containsID(u.Badges, name)
}

// TotalInvested sums the attached investment log.
func (u User) TotalInvested() int64 {
	var total int64
	for _, inv := range u.Investments {
		total += inv.Amount
	}
	return total
}
