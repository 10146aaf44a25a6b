// Package gormstore persists the exchange in PostgreSQL through GORM.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stylar-exchange/models"
	"stylar-exchange/storage"
)

// Store implements storage.Store. Inside Atomic, reads take row locks.
type Store struct {
	DB *gorm.DB

	locking bool
}

var _ storage.Store = (*Store)(nil)

// Open connects to postgres using dsn.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

// New wraps an open connection.
func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// Migrate creates or updates the exchange tables.
func (s *Store) Migrate() error {
	return s.DB.AutoMigrate(
		&models.Stylar{},
		&models.User{},
		&models.Challenge{},
		&models.Battle{},
		&models.Investment{},
	)
}

func (s *Store) Atomic(ctx context.Context, fn func(tx storage.Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{DB: tx, locking: true})
	})
}

func (s *Store) read(ctx context.Context) *gorm.DB {
	db := s.DB.WithContext(ctx)
	if s.locking {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func mapErr(kind, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrConflict)
	default:
		return fmt.Errorf("%s %s: %w", kind, id, err)
	}
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// update writes every column of row except created_at and re-reads it.
func update[T any](ctx context.Context, s *Store, kind, id string, row *T) error {
	res := s.DB.WithContext(ctx).Model(row).Where("id = ?", id).
		Select("*").Omit("created_at").Updates(row)
	if res.Error != nil {
		return mapErr(kind, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return mapErr(kind, id, gorm.ErrRecordNotFound)
	}
	return mapErr(kind, id, s.DB.WithContext(ctx).Where("id = ?", id).First(row).Error)
}

func (s *Store) ListStylars(ctx context.Context) ([]models.Stylar, error) {
	var out []models.Stylar
	if err := s.read(ctx).Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list stylars: %w", err)
	}
	return out, nil
}

func (s *Store) GetStylar(ctx context.Context, id string) (models.Stylar, error) {
	var st models.Stylar
	err := s.read(ctx).Where("id = ?", id).First(&st).Error
	return st, mapErr("stylar", id, err)
}

func (s *Store) CreateStylar(ctx context.Context, st models.Stylar) (models.Stylar, error) {
	ensureID(&st.ID)
	err := s.DB.WithContext(ctx).Create(&st).Error
	return st, mapErr("stylar", st.ID, err)
}

func (s *Store) UpdateStylar(ctx context.Context, st models.Stylar) (models.Stylar, error) {
	err := update(ctx, s, "stylar", st.ID, &st)
	return st, err
}

// InsertStylarIfAbsent inserts st unless a row with its id exists. Existing
// rows are left untouched; it reports whether a row was written.
func (s *Store) InsertStylarIfAbsent(ctx context.Context, st models.Stylar) (bool, error) {
	ensureID(&st.ID)
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&st)
	if res.Error != nil {
		return false, mapErr("stylar", st.ID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) DeleteStylar(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Stylar{})
	if res.Error == nil && res.RowsAffected == 0 {
		return mapErr("stylar", id, gorm.ErrRecordNotFound)
	}
	return mapErr("stylar", id, res.Error)
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := s.read(ctx).Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := s.read(ctx).Where("id = ?", id).First(&u).Error
	return u, mapErr("user", id, err)
}

func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	ensureID(&u.ID)
	err := s.DB.WithContext(ctx).Create(&u).Error
	return u, mapErr("user", u.ID, err)
}

func (s *Store) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	u.Investments = nil
	err := update(ctx, s, "user", u.ID, &u)
	return u, err
}

func (s *Store) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	var out []models.Challenge
	if err := s.read(ctx).Order("start_date ASC, id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	return out, nil
}

func (s *Store) GetChallenge(ctx context.Context, id string) (models.Challenge, error) {
	var c models.Challenge
	err := s.read(ctx).Where("id = ?", id).First(&c).Error
	return c, mapErr("challenge", id, err)
}

func (s *Store) CreateChallenge(ctx context.Context, c models.Challenge) (models.Challenge, error) {
	ensureID(&c.ID)
	err := s.DB.WithContext(ctx).Create(&c).Error
	return c, mapErr("challenge", c.ID, err)
}

func (s *Store) UpdateChallenge(ctx context.Context, c models.Challenge) (models.Challenge, error) {
	err := update(ctx, s, "challenge", c.ID, &c)
	return c, err
}

func (s *Store) ListBattles(ctx context.Context) ([]models.Battle, error) {
	var out []models.Battle
	if err := s.read(ctx).Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list battles: %w", err)
	}
	return out, nil
}

func (s *Store) GetBattle(ctx context.Context, id string) (models.Battle, error) {
	var b models.Battle
	err := s.read(ctx).Where("id = ?", id).First(&b).Error
	return b, mapErr("battle", id, err)
}

func (s *Store) CreateBattle(ctx context.Context, b models.Battle) (models.Battle, error) {
	ensureID(&b.ID)
	err := s.DB.WithContext(ctx).Create(&b).Error
	return b, mapErr("battle", b.ID, err)
}

func (s *Store) UpdateBattle(ctx context.Context, b models.Battle) (models.Battle, error) {
	err := update(ctx, s, "battle", b.ID, &b)
	return b, err
}

func (s *Store) ListInvestments(ctx context.Context, filter models.InvestmentFilter) ([]models.Investment, error) {
	q := s.read(ctx)
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.StylarID != "" {
		q = q.Where("stylar_id = ?", filter.StylarID)
	}
	var out []models.Investment
	if err := q.Order("date ASC, id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	return out, nil
}

func (s *Store) CreateInvestment(ctx context.Context, inv models.Investment) (models.Investment, error) {
	ensureID(&inv.ID)
	if inv.Date.IsZero() {
		inv.Date = time.Now().UTC()
	}
	err := s.DB.WithContext(ctx).Create(&inv).Error
	return inv, mapErr("investment", inv.ID, err)
}

func (s *Store) DeleteInvestment(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Investment{})
	if res.Error == nil && res.RowsAffected == 0 {
		return mapErr("investment", id, gorm.ErrRecordNotFound)
	}
	return mapErr("investment", id, res.Error)
}
