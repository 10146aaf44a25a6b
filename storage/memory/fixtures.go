package memory

import (
	"embed"
	"encoding/json"
	"fmt"

	"stylar-exchange/models"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

// Fixtures is the seed data for a store.
type Fixtures struct {
	Stylars     []models.Stylar
	Users       []models.User
	Challenges  []models.Challenge
	Battles     []models.Battle
	Investments []models.Investment
}

// LoadFixtures decodes the embedded JSON seed files.
func LoadFixtures() (Fixtures, error) {
	var fx Fixtures
	files := []struct {
		name string
		dst  any
	}{
		{"fixtures/stylars.json", &fx.Stylars},
		{"fixtures/users.json", &fx.Users},
		{"fixtures/challenges.json", &fx.Challenges},
		{"fixtures/battles.json", &fx.Battles},
		{"fixtures/investments.json", &fx.Investments},
	}
	for _, f := range files {
		raw, err := fixtureFS.ReadFile(f.name)
		if err != nil {
			return Fixtures{}, fmt.Errorf("read %s: %w", f.name, err)
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			return Fixtures{}, fmt.Errorf("decode %s: %w", f.name, err)
		}
	}
	return fx, nil
}

// Seed inserts fx into the store, keeping fixture ids.
func (s *Store) Seed(fx Fixtures) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range fx.Stylars {
		if _, err := s.data.createStylar(st); err != nil {
			return err
		}
	}
	for _, u := range fx.Users {
		if _, err := s.data.createUser(u); err != nil {
			return err
		}
	}
	for _, c := range fx.Challenges {
		if _, err := s.data.createChallenge(c); err != nil {
			return err
		}
	}
	for _, b := range fx.Battles {
		if _, err := s.data.createBattle(b); err != nil {
			return err
		}
	}
	for _, inv := range fx.Investments {
		if _, err := s.data.createInvestment(inv); err != nil {
			return err
		}
	}
	return nil
}

// NewFromFixtures returns a store seeded with the embedded fixtures.
func NewFromFixtures(opts ...Option) (*Store, error) {
	fx, err := LoadFixtures()
	if err != nil {
		return nil, err
	}
	s := New(opts...)
	if err := s.Seed(fx); err != nil {
		return nil, fmt.Errorf("seed fixtures: %w", err)
	}
	return s, nil
}
