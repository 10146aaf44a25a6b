package services

import (
	"context"
	"fmt"
	"math"

	"stylar-exchange/models"
	"stylar-exchange/storage"
)

// Profile levels by total value of the stylars a user created.
const (
	LevelNewcomer = "Newcomer"
	LevelRising   = "Rising"
	LevelExpert   = "Expert"
	LevelLegend   = "Legend"
)

func ProfileLevel(totalValue int64) string {
	switch {
	case totalValue >= 5000:
		return LevelLegend
	case totalValue >= 2000:
		return LevelExpert
	case totalValue >= 500:
		return LevelRising
	default:
		return LevelNewcomer
	}
}

type Portfolio struct {
	User          models.User     `json:"user"`
	Stylars       []models.Stylar `json:"stylars"`
	Value         int64           `json:"value"`
	Invested      int64           `json:"invested"`
	Profit        int64           `json:"profit"`
	ProfitPercent float64         `json:"profit_percent"`
}

type Achievement struct {
	models.BadgeType
	Earned bool `json:"earned"`
}

type Profile struct {
	User           models.User     `json:"user"`
	CreatedStylars []models.Stylar `json:"created_stylars"`
	Level          string          `json:"level"`
	Stats          CreatorStats    `json:"stats"`
	Achievements   []Achievement   `json:"achievements"`
}

type PortfolioService struct {
	Store  storage.Store
	Users  *UserService
	Badges *BadgeService
}

func NewPortfolioService(store storage.Store, users *UserService, badges *BadgeService) *PortfolioService {
	return &PortfolioService{Store: store, Users: users, Badges: badges}
}

// Portfolio values everything the user owns or created against what they put in.
func (s *PortfolioService) Portfolio(ctx context.Context, userID string) (Portfolio, error) {
	u, err := s.Users.Get(ctx, userID)
	if err != nil {
		return Portfolio{}, err
	}
	all, err := s.Store.ListStylars(ctx)
	if err != nil {
		return Portfolio{}, fmt.Errorf("list stylars: %w", err)
	}

	p := Portfolio{User: u, Stylars: make([]models.Stylar, 0)}
	for _, st := range all {
		if u.Owns(st.ID) || st.CreatorID == u.ID {
			p.Stylars = append(p.Stylars, st)
			p.Value += st.Value
		}
	}
	p.Invested = u.TotalInvested()
	p.Profit = p.Value - p.Invested
	if p.Invested > 0 {
		p.ProfitPercent = math.Round(float64(p.Profit)/float64(p.Invested)*1000) / 10
	}
	return p, nil
}

// Profile summarises a user's creations. Achievements show every catalogue
// entry, earned or not, from live stats.
func (s *PortfolioService) Profile(ctx context.Context, userID string) (Profile, error) {
	u, err := s.Users.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	stats, created, err := s.Badges.Stats(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	achievements := make([]Achievement, 0, len(models.BadgeTriggers))
	for _, b := range models.BadgeTriggers {
		achievements = append(achievements, Achievement{
			BadgeType: b,
			Earned:    u.HasBadge(b.Name) || meetsThreshold(stats, b.Threshold),
		})
	}

	return Profile{
		User:           u,
		CreatedStylars: created,
		Level:          ProfileLevel(stats.TotalValue),
		Stats:          stats,
		Achievements:   achievements,
	}, nil
}
