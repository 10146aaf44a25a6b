package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"stylar-exchange/models"
	"stylar-exchange/storage"
)

// Store implements storage.Store against the table API.
type Store struct {
	client *Client

	// serializes Atomic callers inside this process
	txMu sync.Mutex
}

var _ storage.Store = (*Store)(nil)

// NewStore wraps a client.
func NewStore(c *Client) *Store {
	return &Store{client: c}
}

func decode[R any](raw json.RawMessage) (R, error) {
	var rec R
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("remote: decode record: %w", err)
	}
	return rec, nil
}

func fetchAll[R interface{ model() M }, M any](ctx context.Context, c *Client, t tableSpec, where ...Condition) ([]M, error) {
	rows, err := c.Fetch(ctx, t.name, t.query(where...))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", t.name, err)
	}
	out := make([]M, 0, len(rows))
	for _, raw := range rows {
		rec, err := decode[R](raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec.model())
	}
	return out, nil
}

func getOne[R interface{ model() M }, M any](ctx context.Context, c *Client, t tableSpec, id string) (M, error) {
	var zero M
	raw, err := c.Get(ctx, t.name, id)
	if err != nil {
		return zero, err
	}
	rec, err := decode[R](raw)
	if err != nil {
		return zero, err
	}
	return rec.model(), nil
}

func writeOne[R interface{ model() M }, M any](ctx context.Context, write func(context.Context, string, any) (json.RawMessage, error), t tableSpec, rec R) (M, error) {
	var zero M
	raw, err := write(ctx, t.name, rec)
	if err != nil {
		return zero, fmt.Errorf("write %s: %w", t.name, err)
	}
	stored, err := decode[R](raw)
	if err != nil {
		return zero, err
	}
	return stored.model(), nil
}

func (s *Store) ListStylars(ctx context.Context) ([]models.Stylar, error) {
	return fetchAll[stylarRecord, models.Stylar](ctx, s.client, stylarTable)
}

func (s *Store) GetStylar(ctx context.Context, id string) (models.Stylar, error) {
	return getOne[stylarRecord, models.Stylar](ctx, s.client, stylarTable, id)
}

func (s *Store) CreateStylar(ctx context.Context, st models.Stylar) (models.Stylar, error) {
	// the table has no server-side default for "created"
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}
	rec := stylarToRecord(st)
	rec.ID = ""
	return writeOne[stylarRecord, models.Stylar](ctx, s.client.Create, stylarTable, rec)
}

func (s *Store) UpdateStylar(ctx context.Context, st models.Stylar) (models.Stylar, error) {
	return writeOne[stylarRecord, models.Stylar](ctx, s.client.Update, stylarTable, stylarToRecord(st))
}

func (s *Store) DeleteStylar(ctx context.Context, id string) error {
	return s.client.Delete(ctx, stylarTable.name, id)
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	return fetchAll[userRecord, models.User](ctx, s.client, userTable)
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	return getOne[userRecord, models.User](ctx, s.client, userTable, id)
}

func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	rec := userToRecord(u)
	rec.ID = ""
	return writeOne[userRecord, models.User](ctx, s.client.Create, userTable, rec)
}

func (s *Store) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	return writeOne[userRecord, models.User](ctx, s.client.Update, userTable, userToRecord(u))
}

func (s *Store) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	return fetchAll[challengeRecord, models.Challenge](ctx, s.client, challengeTable)
}

func (s *Store) GetChallenge(ctx context.Context, id string) (models.Challenge, error) {
	return getOne[challengeRecord, models.Challenge](ctx, s.client, challengeTable, id)
}

func (s *Store) CreateChallenge(ctx context.Context, c models.Challenge) (models.Challenge, error) {
	rec := challengeToRecord(c)
	rec.ID = ""
	return writeOne[challengeRecord, models.Challenge](ctx, s.client.Create, challengeTable, rec)
}

func (s *Store) UpdateChallenge(ctx context.Context, c models.Challenge) (models.Challenge, error) {
	return writeOne[challengeRecord, models.Challenge](ctx, s.client.Update, challengeTable, challengeToRecord(c))
}

func (s *Store) ListBattles(ctx context.Context) ([]models.Battle, error) {
	return fetchAll[battleRecord, models.Battle](ctx, s.client, battleTable)
}

func (s *Store) GetBattle(ctx context.Context, id string) (models.Battle, error) {
	return getOne[battleRecord, models.Battle](ctx, s.client, battleTable, id)
}

func (s *Store) CreateBattle(ctx context.Context, b models.Battle) (models.Battle, error) {
	rec := battleToRecord(b)
	rec.ID = ""
	return writeOne[battleRecord, models.Battle](ctx, s.client.Create, battleTable, rec)
}

func (s *Store) UpdateBattle(ctx context.Context, b models.Battle) (models.Battle, error) {
	return writeOne[battleRecord, models.Battle](ctx, s.client.Update, battleTable, battleToRecord(b))
}

func (s *Store) ListInvestments(ctx context.Context, filter models.InvestmentFilter) ([]models.Investment, error) {
	var where []Condition
	if filter.UserID != "" {
		where = append(where, EqualTo("userId", idValue(filter.UserID)))
	}
	if filter.StylarID != "" {
		where = append(where, EqualTo("stylarId", idValue(filter.StylarID)))
	}
	invs, err := fetchAll[investmentRecord, models.Investment](ctx, s.client, investmentTable, where...)
	if err != nil {
		return nil, err
	}
	// the backend may ignore unknown operators, so filter again locally
	out := invs[:0]
	for _, inv := range invs {
		if filter.Matches(inv) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *Store) CreateInvestment(ctx context.Context, inv models.Investment) (models.Investment, error) {
	rec := investmentToRecord(inv)
	rec.ID = ""
	return writeOne[investmentRecord, models.Investment](ctx, s.client.Create, investmentTable, rec)
}

func (s *Store) DeleteInvestment(ctx context.Context, id string) error {
	return s.client.Delete(ctx, investmentTable.name, id)
}

// idValue sends numeric ids as numbers, matching the backend column type.
func idValue(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}
