package services

import (
	"context"
	"fmt"

	"stylar-exchange/models"
	"stylar-exchange/storage"
)

// InvestmentService reads and appends the raw investment log. Balance-affecting
// investments go through UserService.Invest.
type InvestmentService struct {
	Store storage.Store
	Clock Clock
}

func NewInvestmentService(store storage.Store) *InvestmentService {
	return &InvestmentService{Store: store}
}

func (s *InvestmentService) List(ctx context.Context) ([]models.Investment, error) {
	return s.Store.ListInvestments(ctx, models.InvestmentFilter{})
}

func (s *InvestmentService) ListByUser(ctx context.Context, userID string) ([]models.Investment, error) {
	return s.Store.ListInvestments(ctx, models.InvestmentFilter{UserID: userID})
}

func (s *InvestmentService) ListByStylar(ctx context.Context, stylarID string) ([]models.Investment, error) {
	return s.Store.ListInvestments(ctx, models.InvestmentFilter{StylarID: stylarID})
}

type CreateInvestmentInput struct {
	StylarID string `json:"stylar_id"`
	UserID   string `json:"user_id"`
	Amount   int64  `json:"amount"`
}

// Create appends a log entry after checking both references exist.
func (s *InvestmentService) Create(ctx context.Context, in CreateInvestmentInput) (models.Investment, error) {
	if in.Amount <= 0 {
		return models.Investment{}, ErrInvalidAmount
	}
	if in.StylarID == "" {
		return models.Investment{}, invalid("stylar_id", "is required")
	}
	if in.UserID == "" {
		return models.Investment{}, invalid("user_id", "is required")
	}
	if _, err := s.Store.GetStylar(ctx, in.StylarID); err != nil {
		return models.Investment{}, err
	}
	if _, err := s.Store.GetUser(ctx, in.UserID); err != nil {
		return models.Investment{}, err
	}

	inv, err := s.Store.CreateInvestment(ctx, models.Investment{
		StylarID: in.StylarID,
		UserID:   in.UserID,
		Amount:   in.Amount,
		Date:     s.Clock.now(),
	})
	if err != nil {
		return models.Investment{}, fmt.Errorf("create investment: %w", err)
	}
	return inv, nil
}
