package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"stylar-exchange/metrics"
	"stylar-exchange/models"
	"stylar-exchange/storage"
)

// UserService manages balances and investments. There is no login: requests act
// as CurrentUserID unless the gateway forwards another user id.
type UserService struct {
	Store         storage.Store
	CurrentUserID string
	Clock         Clock
	Badges        *BadgeService
	Log           *logrus.Entry
}

func NewUserService(store storage.Store, currentUserID string) *UserService {
	return &UserService{
		Store:         store,
		CurrentUserID: currentUserID,
		Log:           logrus.WithField("service", "user"),
	}
}

// Current returns the configured current user with investments attached.
func (s *UserService) Current(ctx context.Context) (models.User, error) {
	return s.Get(ctx, s.CurrentUserID)
}

// Get returns a user with its investment log joined in.
func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	u, err := s.Store.GetUser(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	invs, err := s.Store.ListInvestments(ctx, models.InvestmentFilter{UserID: id})
	if err != nil {
		return models.User{}, fmt.Errorf("list investments for user %s: %w", id, err)
	}
	u.Investments = invs
	return u, nil
}

// InvestResult is what an investment changed.
type InvestResult struct {
	Investment models.Investment `json:"investment"`
	User       models.User       `json:"user"`
	Stylar     models.Stylar     `json:"stylar"`
}

// Invest moves amount coins from the user into the stylar. The log entry, the
// debit, the value credit and the ownership change commit together.
func (s *UserService) Invest(ctx context.Context, userID, stylarID string, amount int64) (InvestResult, error) {
	if amount <= 0 {
		return InvestResult{}, ErrInvalidAmount
	}

	var res InvestResult
	err := s.Store.Atomic(ctx, func(tx storage.Store) error {
		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		st, err := tx.GetStylar(ctx, stylarID)
		if err != nil {
			return err
		}
		if u.StyleCoins < amount {
			return fmt.Errorf("%w: balance %d, requested %d", ErrInsufficientCoins, u.StyleCoins, amount)
		}

		inv, err := tx.CreateInvestment(ctx, models.Investment{
			StylarID: st.ID,
			UserID:   u.ID,
			Amount:   amount,
			Date:     s.Clock.now(),
		})
		if err != nil {
			return fmt.Errorf("record investment: %w", err)
		}

		u.StyleCoins -= amount
		if !u.Owns(st.ID) {
			u.OwnedStylars = append(u.OwnedStylars, st.ID)
		}
		if u, err = tx.UpdateUser(ctx, u); err != nil {
			return fmt.Errorf("debit user: %w", err)
		}

		st.Value += amount
		if st, err = tx.UpdateStylar(ctx, st); err != nil {
			return fmt.Errorf("credit stylar: %w", err)
		}

		res = InvestResult{Investment: inv, User: u, Stylar: st}
		return nil
	})
	if err != nil {
		return InvestResult{}, err
	}

	metrics.RecordInvestment(amount)
	s.Log.WithFields(logrus.Fields{
		"user_id":   userID,
		"stylar_id": stylarID,
		"amount":    amount,
	}).Info("💰 Investment recorded")
	s.Badges.Refresh(ctx, res.Stylar.CreatorID)
	return res, nil
}

// AdjustCoins adds delta (negative to debit) to a balance that must stay >= 0.
func (s *UserService) AdjustCoins(ctx context.Context, userID string, delta int64) (models.User, error) {
	var out models.User
	err := s.Store.Atomic(ctx, func(tx storage.Store) error {
		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if u.StyleCoins+delta < 0 {
			return fmt.Errorf("%w: balance %d, change %d", ErrInsufficientCoins, u.StyleCoins, delta)
		}
		u.StyleCoins += delta
		out, err = tx.UpdateUser(ctx, u)
		return err
	})
	return out, err
}
