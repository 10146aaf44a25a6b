package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"stylar-exchange/models"
	"stylar-exchange/storage"
)

// CreatorStats are the numbers badges and profile levels are computed from.
type CreatorStats struct {
	CreatedStylars int64 `json:"created_stylars"`
	MaxValue       int64 `json:"max_value"`
	TotalValue     int64 `json:"total_value"`
	Investors      int64 `json:"investors"`
	DistinctStyles int64 `json:"distinct_styles"`
	MaxScore       int64 `json:"max_score"`
	ChallengeWins  int64 `json:"challenge_wins"`
}

// investorsPerValue approximates one investor per 50 coins of value.
const investorsPerValue = 50

func computeStats(created []models.Stylar, challenges []models.Challenge) CreatorStats {
	var st CreatorStats
	styles := make(map[string]struct{})
	ids := make(map[string]struct{}, len(created))
	for _, s := range created {
		st.CreatedStylars++
		st.TotalValue += s.Value
		st.Investors += s.Value / investorsPerValue
		if s.Value > st.MaxValue {
			st.MaxValue = s.Value
		}
		if s.Score > st.MaxScore {
			st.MaxScore = s.Score
		}
		styles[s.Style] = struct{}{}
		ids[s.ID] = struct{}{}
	}
	st.DistinctStyles = int64(len(styles))
	for _, c := range challenges {
		if _, ok := ids[c.WinnerStylarID]; ok && c.Finalized {
			st.ChallengeWins++
		}
	}
	return st
}

func createdBy(all []models.Stylar, userID string) []models.Stylar {
	out := make([]models.Stylar, 0)
	for _, s := range all {
		if s.CreatorID == userID {
			out = append(out, s)
		}
	}
	return out
}

type BadgeService struct {
	Store storage.Store
	Log   *logrus.Entry
}

func NewBadgeService(store storage.Store) *BadgeService {
	return &BadgeService{Store: store, Log: logrus.WithField("service", "badge")}
}

// Catalogue returns every badge that can be earned.
func (s *BadgeService) Catalogue() []models.BadgeType {
	return models.BadgeTriggers
}

// Stats computes the creator numbers for userID.
func (s *BadgeService) Stats(ctx context.Context, userID string) (CreatorStats, []models.Stylar, error) {
	all, err := s.Store.ListStylars(ctx)
	if err != nil {
		return CreatorStats{}, nil, fmt.Errorf("list stylars: %w", err)
	}
	challenges, err := s.Store.ListChallenges(ctx)
	if err != nil {
		return CreatorStats{}, nil, fmt.Errorf("list challenges: %w", err)
	}
	created := createdBy(all, userID)
	return computeStats(created, challenges), created, nil
}

// AutoAward checks all badge triggers for a user and stores the newly earned
// ones. It returns the names awarded by this call.
func (s *BadgeService) AutoAward(ctx context.Context, userID string) ([]string, error) {
	stats, _, err := s.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	var awarded []string
	err = s.Store.Atomic(ctx, func(tx storage.Store) error {
		awarded = awarded[:0]
		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		for _, trigger := range models.BadgeTriggers {
			if u.HasBadge(trigger.Name) || !meetsThreshold(stats, trigger.Threshold) {
				continue
			}
			u.Badges = append(u.Badges, trigger.Name)
			awarded = append(awarded, trigger.Name)
		}
		if len(awarded) == 0 {
			return nil
		}
		_, err = tx.UpdateUser(ctx, u)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, name := range awarded {
		s.Log.WithField("user_id", userID).Infof("🎖️ Badge awarded: %s", name)
	}
	return awarded, nil
}

// Refresh runs AutoAward after a write that moved userID's creator stats.
// Failures are logged, not returned: the triggering write has already
// committed. A nil service does nothing.
func (s *BadgeService) Refresh(ctx context.Context, userID string) {
	if s == nil || userID == "" {
		return
	}
	if _, err := s.AutoAward(ctx, userID); err != nil && !storage.IsNotFound(err) {
		s.Log.WithField("user_id", userID).WithError(err).Warn("⚠️ Badge refresh failed")
	}
}

// Award grants the badge with code inside an existing transaction. It reports
// whether the user did not have it yet.
func (s *BadgeService) Award(ctx context.Context, tx storage.Store, userID, code string) (bool, error) {
	badge, ok := models.BadgeByCode(code)
	if !ok {
		return false, fmt.Errorf("unknown badge %q", code)
	}
	u, err := tx.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if u.HasBadge(badge.Name) {
		return false, nil
	}
	u.Badges = append(u.Badges, badge.Name)
	if _, err := tx.UpdateUser(ctx, u); err != nil {
		return false, err
	}
	return true, nil
}

func meetsThreshold(st CreatorStats, req map[string]int64) bool {
	for key, required := range req {
		var have int64
		switch key {
		case models.ThresholdCreated:
			have = st.CreatedStylars
		case models.ThresholdMaxValue:
			have = st.MaxValue
		case models.ThresholdTotalValue:
			have = st.TotalValue
		case models.ThresholdInvestors:
			have = st.Investors
		case models.ThresholdDistinctStyles:
			have = st.DistinctStyles
		case models.ThresholdMaxScore:
			have = st.MaxScore
		case models.ThresholdChallengeWins:
			have = st.ChallengeWins
		default:
			return false
		}
		if have < required {
			return false
		}
	}
	return true
}
