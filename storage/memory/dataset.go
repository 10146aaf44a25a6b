package memory

import (
	"fmt"
	"strconv"
	"time"

	"stylar-exchange/models"
	"stylar-exchange/storage"
)

// dataset is the unlocked state behind a Store. Every record going in or out is
// copied so callers never share slice backing arrays with the store.
type dataset struct {
	nextID int64

	stylars     map[string]models.Stylar
	stylarOrder []string

	users     map[string]models.User
	userOrder []string

	challenges     map[string]models.Challenge
	challengeOrder []string

	battles     map[string]models.Battle
	battleOrder []string

	investments []models.Investment
}

func newDataset() *dataset {
	return &dataset{
		nextID:     1,
		stylars:    make(map[string]models.Stylar),
		users:      make(map[string]models.User),
		challenges: make(map[string]models.Challenge),
		battles:    make(map[string]models.Battle),
	}
}

func (d *dataset) clone() *dataset {
	out := newDataset()
	out.nextID = d.nextID
	for id, s := range d.stylars {
		out.stylars[id] = copyStylar(s)
	}
	for id, u := range d.users {
		out.users[id] = copyUser(u)
	}
	for id, c := range d.challenges {
		out.challenges[id] = copyChallenge(c)
	}
	for id, b := range d.battles {
		out.battles[id] = copyBattle(b)
	}
	out.stylarOrder = append([]string(nil), d.stylarOrder...)
	out.userOrder = append([]string(nil), d.userOrder...)
	out.challengeOrder = append([]string(nil), d.challengeOrder...)
	out.battleOrder = append([]string(nil), d.battleOrder...)
	out.investments = append([]models.Investment(nil), d.investments...)
	return out
}

func (d *dataset) newID() string {
	id := d.nextID
	d.nextID++
	return strconv.FormatInt(id, 10)
}

// reserve keeps the sequence ahead of numeric ids supplied by callers or fixtures.
func (d *dataset) reserve(id string) {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil && n >= d.nextID {
		d.nextID = n + 1
	}
}

func copyStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}

func copyStylar(s models.Stylar) models.Stylar {
	s.Images = copyStrings(s.Images)
	return s
}

func copyUser(u models.User) models.User {
	u.OwnedStylars = copyStrings(u.OwnedStylars)
	u.Badges = copyStrings(u.Badges)
	u.Investments = nil
	return u
}

func copyChallenge(c models.Challenge) models.Challenge {
	c.Submissions = copyStrings(c.Submissions)
	return c
}

func copyBattle(b models.Battle) models.Battle {
	b.Voters = copyStrings(b.Voters)
	return b
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
}

func conflict(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, storage.ErrConflict)
}

// Stylars ---------------------------------------------------------------------

func (d *dataset) listStylars() []models.Stylar {
	out := make([]models.Stylar, 0, len(d.stylarOrder))
	for _, id := range d.stylarOrder {
		out = append(out, copyStylar(d.stylars[id]))
	}
	return out
}

func (d *dataset) getStylar(id string) (models.Stylar, error) {
	s, ok := d.stylars[id]
	if !ok {
		return models.Stylar{}, notFound("stylar", id)
	}
	return copyStylar(s), nil
}

func (d *dataset) createStylar(s models.Stylar) (models.Stylar, error) {
	if s.ID == "" {
		s.ID = d.newID()
	} else if _, exists := d.stylars[s.ID]; exists {
		return models.Stylar{}, conflict("stylar", s.ID)
	}
	d.reserve(s.ID)
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	d.stylars[s.ID] = copyStylar(s)
	d.stylarOrder = append(d.stylarOrder, s.ID)
	return copyStylar(s), nil
}

func (d *dataset) updateStylar(s models.Stylar) (models.Stylar, error) {
	existing, ok := d.stylars[s.ID]
	if !ok {
		return models.Stylar{}, notFound("stylar", s.ID)
	}
	s.CreatedAt = existing.CreatedAt
	s.UpdatedAt = time.Now().UTC()
	d.stylars[s.ID] = copyStylar(s)
	return copyStylar(s), nil
}

func (d *dataset) deleteStylar(id string) error {
	if _, ok := d.stylars[id]; !ok {
		return notFound("stylar", id)
	}
	delete(d.stylars, id)
	d.stylarOrder = removeID(d.stylarOrder, id)
	return nil
}

// Users -----------------------------------------------------------------------

func (d *dataset) listUsers() []models.User {
	out := make([]models.User, 0, len(d.userOrder))
	for _, id := range d.userOrder {
		out = append(out, copyUser(d.users[id]))
	}
	return out
}

func (d *dataset) getUser(id string) (models.User, error) {
	u, ok := d.users[id]
	if !ok {
		return models.User{}, notFound("user", id)
	}
	return copyUser(u), nil
}

func (d *dataset) createUser(u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = d.newID()
	} else if _, exists := d.users[u.ID]; exists {
		return models.User{}, conflict("user", u.ID)
	}
	d.reserve(u.ID)
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	d.users[u.ID] = copyUser(u)
	d.userOrder = append(d.userOrder, u.ID)
	return copyUser(u), nil
}

func (d *dataset) updateUser(u models.User) (models.User, error) {
	existing, ok := d.users[u.ID]
	if !ok {
		return models.User{}, notFound("user", u.ID)
	}
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	d.users[u.ID] = copyUser(u)
	return copyUser(u), nil
}

// Challenges ------------------------------------------------------------------

func (d *dataset) listChallenges() []models.Challenge {
	out := make([]models.Challenge, 0, len(d.challengeOrder))
	for _, id := range d.challengeOrder {
		out = append(out, copyChallenge(d.challenges[id]))
	}
	return out
}

func (d *dataset) getChallenge(id string) (models.Challenge, error) {
	c, ok := d.challenges[id]
	if !ok {
		return models.Challenge{}, notFound("challenge", id)
	}
	return copyChallenge(c), nil
}

func (d *dataset) createChallenge(c models.Challenge) (models.Challenge, error) {
	if c.ID == "" {
		c.ID = d.newID()
	} else if _, exists := d.challenges[c.ID]; exists {
		return models.Challenge{}, conflict("challenge", c.ID)
	}
	d.reserve(c.ID)
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	d.challenges[c.ID] = copyChallenge(c)
	d.challengeOrder = append(d.challengeOrder, c.ID)
	return copyChallenge(c), nil
}

func (d *dataset) updateChallenge(c models.Challenge) (models.Challenge, error) {
	existing, ok := d.challenges[c.ID]
	if !ok {
		return models.Challenge{}, notFound("challenge", c.ID)
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	d.challenges[c.ID] = copyChallenge(c)
	return copyChallenge(c), nil
}

// Battles ---------------------------------------------------------------------

func (d *dataset) listBattles() []models.Battle {
	out := make([]models.Battle, 0, len(d.battleOrder))
	for _, id := range d.battleOrder {
		out = append(out, copyBattle(d.battles[id]))
	}
	return out
}

func (d *dataset) getBattle(id string) (models.Battle, error) {
	b, ok := d.battles[id]
	if !ok {
		return models.Battle{}, notFound("battle", id)
	}
	return copyBattle(b), nil
}

func (d *dataset) createBattle(b models.Battle) (models.Battle, error) {
	if b.ID == "" {
		b.ID = d.newID()
	} else if _, exists := d.battles[b.ID]; exists {
		return models.Battle{}, conflict("battle", b.ID)
	}
	d.reserve(b.ID)
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	d.battles[b.ID] = copyBattle(b)
	d.battleOrder = append(d.battleOrder, b.ID)
	return copyBattle(b), nil
}

func (d *dataset) updateBattle(b models.Battle) (models.Battle, error) {
	existing, ok := d.battles[b.ID]
	if !ok {
		return models.Battle{}, notFound("battle", b.ID)
	}
	b.CreatedAt = existing.CreatedAt
	b.UpdatedAt = time.Now().UTC()
	d.battles[b.ID] = copyBattle(b)
	return copyBattle(b), nil
}

// Investments -----------------------------------------------------------------

func (d *dataset) listInvestments(filter models.InvestmentFilter) []models.Investment {
	out := make([]models.Investment, 0)
	for _, inv := range d.investments {
		if filter.Matches(inv) {
			out = append(out, inv)
		}
	}
	return out
}

func (d *dataset) createInvestment(inv models.Investment) (models.Investment, error) {
	if inv.ID == "" {
		inv.ID = d.newID()
	} else {
		for _, existing := range d.investments {
			if existing.ID == inv.ID {
				return models.Investment{}, conflict("investment", inv.ID)
			}
		}
	}
	d.reserve(inv.ID)
	if inv.Date.IsZero() {
		inv.Date = time.Now().UTC()
	}
	d.investments = append(d.investments, inv)
	return inv, nil
}

func (d *dataset) deleteInvestment(id string) error {
	for i, inv := range d.investments {
		if inv.ID == id {
			d.investments = append(d.investments[:i], d.investments[i+1:]...)
			return nil
		}
	}
	return notFound("investment", id)
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
