// Package memory is an in-memory implementation of storage.Store seeded from
// static JSON fixtures. It is safe for concurrent use and is intended for local
// development, demos and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"stylar-exchange/models"
	"stylar-exchange/storage"
)

// Store keeps every table in process memory.
type Store struct {
	mu      sync.RWMutex
	data    *dataset
	latency time.Duration
}

var _ storage.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLatency delays every call by d to mimic a network backend.
func WithLatency(d time.Duration) Option {
	return func(s *Store) { s.latency = d }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{data: newDataset()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// wait applies the simulated latency, returning early if ctx is cancelled.
func (s *Store) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Atomic runs fn against a private copy of the data while holding the write lock
// and publishes the copy only if fn succeeds.
func (s *Store) Atomic(ctx context.Context, fn func(tx storage.Store) error) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(&txStore{data: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *Store) ListStylars(ctx context.Context) ([]models.Stylar, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listStylars(), nil
}

func (s *Store) GetStylar(ctx context.Context, id string) (models.Stylar, error) {
	if err := s.wait(ctx); err != nil {
		return models.Stylar{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getStylar(id)
}

func (s *Store) CreateStylar(ctx context.Context, st models.Stylar) (models.Stylar, error) {
	if err := s.wait(ctx); err != nil {
		return models.Stylar{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.createStylar(st)
}

func (s *Store) UpdateStylar(ctx context.Context, st models.Stylar) (models.Stylar, error) {
	if err := s.wait(ctx); err != nil {
		return models.Stylar{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.updateStylar(st)
}

func (s *Store) DeleteStylar(ctx context.Context, id string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.deleteStylar(id)
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listUsers(), nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	if err := s.wait(ctx); err != nil {
		return models.User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getUser(id)
}

func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if err := s.wait(ctx); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.createUser(u)
}

func (s *Store) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	if err := s.wait(ctx); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.updateUser(u)
}

func (s *Store) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listChallenges(), nil
}

func (s *Store) GetChallenge(ctx context.Context, id string) (models.Challenge, error) {
	if err := s.wait(ctx); err != nil {
		return models.Challenge{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getChallenge(id)
}

func (s *Store) CreateChallenge(ctx context.Context, c models.Challenge) (models.Challenge, error) {
	if err := s.wait(ctx); err != nil {
		return models.Challenge{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.createChallenge(c)
}

func (s *Store) UpdateChallenge(ctx context.Context, c models.Challenge) (models.Challenge, error) {
	if err := s.wait(ctx); err != nil {
		return models.Challenge{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.updateChallenge(c)
}

func (s *Store) ListBattles(ctx context.Context) ([]models.Battle, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listBattles(), nil
}

func (s *Store) GetBattle(ctx context.Context, id string) (models.Battle, error) {
	if err := s.wait(ctx); err != nil {
		return models.Battle{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getBattle(id)
}

func (s *Store) CreateBattle(ctx context.Context, b models.Battle) (models.Battle, error) {
	if err := s.wait(ctx); err != nil {
		return models.Battle{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.createBattle(b)
}

func (s *Store) UpdateBattle(ctx context.Context, b models.Battle) (models.Battle, error) {
	if err := s.wait(ctx); err != nil {
		return models.Battle{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.updateBattle(b)
}

func (s *Store) ListInvestments(ctx context.Context, filter models.InvestmentFilter) ([]models.Investment, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listInvestments(filter), nil
}

func (s *Store) CreateInvestment(ctx context.Context, inv models.Investment) (models.Investment, error) {
	if err := s.wait(ctx); err != nil {
		return models.Investment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.createInvestment(inv)
}

func (s *Store) DeleteInvestment(ctx context.Context, id string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.deleteInvestment(id)
}

// txStore is the view handed to Atomic callbacks. The enclosing Atomic already
// holds the write lock, so it touches the dataset directly.
type txStore struct {
	data *dataset
}

func (t *txStore) Atomic(ctx context.Context, fn func(tx storage.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(t)
}

func (t *txStore) ListStylars(ctx context.Context) ([]models.Stylar, error) {
	return t.data.listStylars(), ctx.Err()
}

func (t *txStore) GetStylar(_ context.Context, id string) (models.Stylar, error) {
	return t.data.getStylar(id)
}

func (t *txStore) CreateStylar(_ context.Context, s models.Stylar) (models.Stylar, error) {
	return t.data.createStylar(s)
}

func (t *txStore) UpdateStylar(_ context.Context, s models.Stylar) (models.Stylar, error) {
	return t.data.updateStylar(s)
}

func (t *txStore) DeleteStylar(_ context.Context, id string) error {
	return t.data.deleteStylar(id)
}

func (t *txStore) ListUsers(ctx context.Context) ([]models.User, error) {
	return t.data.listUsers(), ctx.Err()
}

func (t *txStore) GetUser(_ context.Context, id string) (models.User, error) {
	return t.data.getUser(id)
}

func (t *txStore) CreateUser(_ context.Context, u models.User) (models.User, error) {
	return t.data.createUser(u)
}

func (t *txStore) UpdateUser(_ context.Context, u models.User) (models.User, error) {
	return t.data.updateUser(u)
}

func (t *txStore) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	return t.data.listChallenges(), ctx.Err()
}

func (t *txStore) GetChallenge(_ context.Context, id string) (models.Challenge, error) {
	return t.data.getChallenge(id)
}

func (t *txStore) CreateChallenge(_ context.Context, c models.Challenge) (models.Challenge, error) {
	return t.data.createChallenge(c)
}

func (t *txStore) UpdateChallenge(_ context.Context, c models.Challenge) (models.Challenge, error) {
	return t.data.updateChallenge(c)
}

func (t *txStore) ListBattles(ctx context.Context) ([]models.Battle, error) {
	return t.data.listBattles(), ctx.Err()
}

func (t *txStore) GetBattle(_ context.Context, id string) (models.Battle, error) {
	return t.data.getBattle(id)
}

func (t *txStore) CreateBattle(_ context.Context, b models.Battle) (models.Battle, error) {
	return t.data.createBattle(b)
}

func (t *txStore) UpdateBattle(_ context.Context, b models.Battle) (models.Battle, error) {
	return t.data.updateBattle(b)
}

func (t *txStore) ListInvestments(ctx context.Context, filter models.InvestmentFilter) ([]models.Investment, error) {
	return t.data.listInvestments(filter), ctx.Err()
}

func (t *txStore) CreateInvestment(_ context.Context, inv models.Investment) (models.Investment, error) {
	return t.data.createInvestment(inv)
}

func (t *txStore) DeleteInvestment(_ context.Context, id string) error {
	return t.data.deleteInvestment(id)
}
