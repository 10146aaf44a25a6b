package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"stylar-exchange/models"
	"stylar-exchange/storage"
)

// compensation undoes one write that already reached the backend.
type compensation struct {
	desc string
	undo func(ctx context.Context) error
}

// Atomic runs fn against a journaling view. The table API has no transactions,
// so when fn fails every write it made is reverted by replaying compensating
// writes newest first. Reverting a delete re-creates the record under a new id.
func (s *Store) Atomic(ctx context.Context, fn func(tx storage.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &txStore{Store: s}
	err := fn(tx)
	if err == nil {
		return nil
	}
	return errors.Join(err, tx.rollback(context.WithoutCancel(ctx)))
}

type txStore struct {
	*Store
	journal []compensation
}

func (t *txStore) record(desc string, undo func(ctx context.Context) error) {
	t.journal = append(t.journal, compensation{desc: desc, undo: undo})
}

func (t *txStore) rollback(ctx context.Context) error {
	var errs []error
	for i := len(t.journal) - 1; i >= 0; i-- {
		c := t.journal[i]
		if err := c.undo(ctx); err != nil {
			t.client.log.WithFields(logrus.Fields{"step": c.desc}).
				Errorf("❌ compensation failed: %v", err)
			errs = append(errs, fmt.Errorf("undo %s: %w", c.desc, err))
		}
	}
	if len(t.journal) > 0 && len(errs) == 0 {
		t.client.log.WithField("steps", len(t.journal)).Info("↩️ remote writes rolled back")
	}
	return errors.Join(errs...)
}

// Atomic inside a transaction joins the enclosing journal.
func (t *txStore) Atomic(ctx context.Context, fn func(tx storage.Store) error) error {
	return fn(t)
}

func (t *txStore) CreateStylar(ctx context.Context, st models.Stylar) (models.Stylar, error) {
	created, err := t.Store.CreateStylar(ctx, st)
	if err != nil {
		return created, err
	}
	t.record("create stylar "+created.ID, func(ctx context.Context) error {
		return t.Store.DeleteStylar(ctx, created.ID)
	})
	return created, nil
}

func (t *txStore) UpdateStylar(ctx context.Context, st models.Stylar) (models.Stylar, error) {
	prev, err := t.Store.GetStylar(ctx, st.ID)
	if err != nil {
		return models.Stylar{}, err
	}
	updated, err := t.Store.UpdateStylar(ctx, st)
	if err != nil {
		return updated, err
	}
	t.record("update stylar "+st.ID, func(ctx context.Context) error {
		_, err := t.Store.UpdateStylar(ctx, prev)
		return err
	})
	return updated, nil
}

func (t *txStore) DeleteStylar(ctx context.Context, id string) error {
	prev, err := t.Store.GetStylar(ctx, id)
	if err != nil {
		return err
	}
	if err := t.Store.DeleteStylar(ctx, id); err != nil {
		return err
	}
	t.record("delete stylar "+id, func(ctx context.Context) error {
		_, err := t.Store.CreateStylar(ctx, prev)
		return err
	})
	return nil
}

func (t *txStore) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	created, err := t.Store.CreateUser(ctx, u)
	if err != nil {
		return created, err
	}
	t.record("create user "+created.ID, func(ctx context.Context) error {
		return t.client.Delete(ctx, userTable.name, created.ID)
	})
	return created, nil
}

func (t *txStore) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	prev, err := t.Store.GetUser(ctx, u.ID)
	if err != nil {
		return models.User{}, err
	}
	updated, err := t.Store.UpdateUser(ctx, u)
	if err != nil {
		return updated, err
	}
	t.record("update user "+u.ID, func(ctx context.Context) error {
		_, err := t.Store.UpdateUser(ctx, prev)
		return err
	})
	return updated, nil
}

func (t *txStore) CreateChallenge(ctx context.Context, c models.Challenge) (models.Challenge, error) {
	created, err := t.Store.CreateChallenge(ctx, c)
	if err != nil {
		return created, err
	}
	t.record("create challenge "+created.ID, func(ctx context.Context) error {
		return t.client.Delete(ctx, challengeTable.name, created.ID)
	})
	return created, nil
}

func (t *txStore) UpdateChallenge(ctx context.Context, c models.Challenge) (models.Challenge, error) {
	prev, err := t.Store.GetChallenge(ctx, c.ID)
	if err != nil {
		return models.Challenge{}, err
	}
	updated, err := t.Store.UpdateChallenge(ctx, c)
	if err != nil {
		return updated, err
	}
	t.record("update challenge "+c.ID, func(ctx context.Context) error {
		_, err := t.Store.UpdateChallenge(ctx, prev)
		return err
	})
	return updated, nil
}

func (t *txStore) CreateBattle(ctx context.Context, b models.Battle) (models.Battle, error) {
	created, err := t.Store.CreateBattle(ctx, b)
	if err != nil {
		return created, err
	}
	t.record("create battle "+created.ID, func(ctx context.Context) error {
		return t.client.Delete(ctx, battleTable.name, created.ID)
	})
	return created, nil
}

func (t *txStore) UpdateBattle(ctx context.Context, b models.Battle) (models.Battle, error) {
	prev, err := t.Store.GetBattle(ctx, b.ID)
	if err != nil {
		return models.Battle{}, err
	}
	updated, err := t.Store.UpdateBattle(ctx, b)
	if err != nil {
		return updated, err
	}
	t.record("update battle "+b.ID, func(ctx context.Context) error {
		_, err := t.Store.UpdateBattle(ctx, prev)
		return err
	})
	return updated, nil
}

func (t *txStore) CreateInvestment(ctx context.Context, inv models.Investment) (models.Investment, error) {
	created, err := t.Store.CreateInvestment(ctx, inv)
	if err != nil {
		return created, err
	}
	t.record("create investment "+created.ID, func(ctx context.Context) error {
		return t.Store.DeleteInvestment(ctx, created.ID)
	})
	return created, nil
}

func (t *txStore) DeleteInvestment(ctx context.Context, id string) error {
	invs, err := t.Store.ListInvestments(ctx, models.InvestmentFilter{})
	if err != nil {
		return err
	}
	var prev *models.Investment
	for i := range invs {
		if invs[i].ID == id {
			prev = &invs[i]
			break
		}
	}
	if prev == nil {
		return fmt.Errorf("investment %s: %w", id, storage.ErrNotFound)
	}
	if err := t.Store.DeleteInvestment(ctx, id); err != nil {
		return err
	}
	restore := *prev
	t.record("delete investment "+id, func(ctx context.Context) error {
		_, err := t.Store.CreateInvestment(ctx, restore)
		return err
	})
	return nil
}
