// Package storage defines the data-access contract shared by every persistence
// backend (in-memory fixtures, the hosted table API and PostgreSQL).
package storage

import (
	"context"
	"errors"

	"stylar-exchange/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when creating a record whose id is already taken.
	ErrConflict = errors.New("record already exists")
)

// StylarStore persists stylars.
type StylarStore interface {
	ListStylars(ctx context.Context) ([]models.Stylar, error)
	GetStylar(ctx context.Context, id string) (models.Stylar, error)
	CreateStylar(ctx context.Context, s models.Stylar) (models.Stylar, error)
	UpdateStylar(ctx context.Context, s models.Stylar) (models.Stylar, error)
	DeleteStylar(ctx context.Context, id string) error
}

// UserStore persists users. Investments are not part of the user record.
type UserStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	UpdateUser(ctx context.Context, u models.User) (models.User, error)
}

// ChallengeStore persists challenges.
type ChallengeStore interface {
	ListChallenges(ctx context.Context) ([]models.Challenge, error)
	GetChallenge(ctx context.Context, id string) (models.Challenge, error)
	CreateChallenge(ctx context.Context, c models.Challenge) (models.Challenge, error)
	UpdateChallenge(ctx context.Context, c models.Challenge) (models.Challenge, error)
}

// BattleStore persists battles.
type BattleStore interface {
	ListBattles(ctx context.Context) ([]models.Battle, error)
	GetBattle(ctx context.Context, id string) (models.Battle, error)
	CreateBattle(ctx context.Context, b models.Battle) (models.Battle, error)
	UpdateBattle(ctx context.Context, b models.Battle) (models.Battle, error)
}

// InvestmentStore persists the investment log.
type InvestmentStore interface {
	ListInvestments(ctx context.Context, filter models.InvestmentFilter) ([]models.Investment, error)
	CreateInvestment(ctx context.Context, inv models.Investment) (models.Investment, error)
	DeleteInvestment(ctx context.Context, id string) error
}

// Store is the full data-access contract.
type Store interface {
	StylarStore
	UserStore
	ChallengeStore
	BattleStore
	InvestmentStore

	// Atomic runs fn against a transactional view of the store. Either every write
	// fn made is kept, or (when fn returns an error) none is.
	Atomic(ctx context.Context, fn func(tx Store) error) error
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
