package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"

	"stylar-exchange/models"
	"stylar-exchange/storage"
)

// StatusAll disables the status filter in ChallengeService.List.
const StatusAll = "all"

// ParseChallengeStatus accepts "" as StatusAll.
func ParseChallengeStatus(raw string) (string, error) {
	switch v := strings.ToLower(strings.TrimSpace(raw)); v {
	case "", StatusAll:
		return StatusAll, nil
	case string(models.ChallengeUpcoming), string(models.ChallengeActive), string(models.ChallengeCompleted):
		return v, nil
	default:
		return "", invalid("status", fmt.Sprintf("unknown status %q", raw))
	}
}

type ChallengeSummary struct {
	models.Challenge
	Status          models.ChallengeStatus `json:"status"`
	SubmissionCount int                    `json:"submission_count"`
}

// ChallengeList carries per-status counts for the filter tabs.
type ChallengeList struct {
	Challenges []ChallengeSummary `json:"challenges"`
	Counts     map[string]int     `json:"counts"`
}

type ChallengeDetail struct {
	models.Challenge
	Status      models.ChallengeStatus `json:"status"`
	Stylars     []models.Stylar        `json:"stylars"`
	TimeLeft    time.Duration          `json:"-"`
	SecondsLeft int64                  `json:"seconds_left"`
}

type ChallengeService struct {
	Store  storage.Store
	Badges *BadgeService
	Clock  Clock
	Log    *logrus.Entry
}

func NewChallengeService(store storage.Store, badges *BadgeService) *ChallengeService {
	return &ChallengeService{
		Store:  store,
		Badges: badges,
		Log:    logrus.WithField("service", "challenge"),
	}
}

// List filters challenges by status as of now.
func (s *ChallengeService) List(ctx context.Context, status string, now time.Time) (ChallengeList, error) {
	all, err := s.Store.ListChallenges(ctx)
	if err != nil {
		return ChallengeList{}, fmt.Errorf("list challenges: %w", err)
	}

	out := ChallengeList{
		Challenges: make([]ChallengeSummary, 0, len(all)),
		Counts: map[string]int{
			StatusAll:                         len(all),
			string(models.ChallengeUpcoming):  0,
			string(models.ChallengeActive):    0,
			string(models.ChallengeCompleted): 0,
		},
	}
	for _, c := range all {
		st := c.Status(now)
		out.Counts[string(st)]++
		if status != StatusAll && string(st) != status {
			continue
		}
		out.Challenges = append(out.Challenges, ChallengeSummary{
			Challenge:       c,
			Status:          st,
			SubmissionCount: len(c.Submissions),
		})
	}
	return out, nil
}

// Now is the service clock, used by callers that derive status themselves.
func (s *ChallengeService) Now() time.Time {
	return s.Clock.now()
}

// Get returns the challenge with its submissions ranked by score.
func (s *ChallengeService) Get(ctx context.Context, id string) (ChallengeDetail, error) {
	c, err := s.Store.GetChallenge(ctx, id)
	if err != nil {
		return ChallengeDetail{}, err
	}
	stylars, err := s.submissions(ctx, s.Store, c)
	if err != nil {
		return ChallengeDetail{}, err
	}

	now := s.Clock.now()
	left := c.TimeLeft(now)
	return ChallengeDetail{
		Challenge:   c,
		Status:      c.Status(now),
		Stylars:     stylars,
		TimeLeft:    left,
		SecondsLeft: int64(left / time.Second),
	}, nil
}

// submissions resolves submitted ids, skipping stylars that no longer exist,
// sorted by score descending.
func (s *ChallengeService) submissions(ctx context.Context, store storage.Store, c models.Challenge) ([]models.Stylar, error) {
	out := make([]models.Stylar, 0, len(c.Submissions))
	for _, id := range c.Submissions {
		st, err := store.GetStylar(ctx, id)
		if storage.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

type CreateChallengeInput struct {
	Name        string    `json:"name"`
	Theme       string    `json:"theme"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

func (s *ChallengeService) Create(ctx context.Context, in CreateChallengeInput) (models.Challenge, error) {
	in.Theme = strings.TrimSpace(in.Theme)
	in.Name = strings.TrimSpace(in.Name)
	if in.Theme == "" {
		return models.Challenge{}, invalid("theme", "is required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return models.Challenge{}, invalid("dates", "start_date and end_date are required")
	}
	if !in.EndDate.After(in.StartDate) {
		return models.Challenge{}, invalid("end_date", "must be after start_date")
	}
	if in.Name == "" {
		in.Name = in.Theme
	}

	c, err := s.Store.CreateChallenge(ctx, models.Challenge{
		Name:        in.Name,
		Theme:       in.Theme,
		Slug:        slug.Make(in.Theme),
		Description: strings.TrimSpace(in.Description),
		StartDate:   in.StartDate.UTC(),
		EndDate:     in.EndDate.UTC(),
		Submissions: []string{},
	})
	if err != nil {
		return models.Challenge{}, fmt.Errorf("create challenge: %w", err)
	}
	s.Log.WithField("challenge_id", c.ID).Infof("🏁 Challenge created: %s", c.Theme)
	return c, nil
}

// AddSubmission enters a stylar into an active challenge. Submitting the same
// stylar twice is a no-op.
func (s *ChallengeService) AddSubmission(ctx context.Context, challengeID, stylarID string) (models.Challenge, error) {
	var out models.Challenge
	err := s.Store.Atomic(ctx, func(tx storage.Store) error {
		c, err := tx.GetChallenge(ctx, challengeID)
		if err != nil {
			return err
		}
		if _, err := tx.GetStylar(ctx, stylarID); err != nil {
			return err
		}
		if st := c.Status(s.Clock.now()); st != models.ChallengeActive {
			return fmt.Errorf("%w: challenge is %s", ErrChallengeClosed, st)
		}
		if c.HasSubmission(stylarID) {
			out = c
			return nil
		}
		c.Submissions = append(c.Submissions, stylarID)
		out, err = tx.UpdateChallenge(ctx, c)
		return err
	})
	return out, err
}

// Finalize closes every completed challenge that has not been closed yet: the
// top-scoring submission wins and its creator gets the winner badge. A failing
// challenge is logged and skipped. Returns how many challenges this call closed.
func (s *ChallengeService) Finalize(ctx context.Context, now time.Time) (int, error) {
	all, err := s.Store.ListChallenges(ctx)
	if err != nil {
		return 0, fmt.Errorf("list challenges: %w", err)
	}

	done := 0
	var failed []error
	for _, candidate := range all {
		if candidate.Finalized || candidate.Status(now) != models.ChallengeCompleted {
			continue
		}

		// Ranking reads stylars outside the transaction so the only rows locked
		// are the challenge and the winner's creator.
		ranked, err := s.submissions(ctx, s.Store, candidate)
		if err != nil {
			s.Log.WithField("challenge_id", candidate.ID).WithError(err).Error("❌ Failed to rank submissions")
			failed = append(failed, fmt.Errorf("rank challenge %s: %w", candidate.ID, err))
			continue
		}

		var (
			winner models.Stylar
			closed bool
		)
		err = s.Store.Atomic(ctx, func(tx storage.Store) error {
			closed = false
			c, err := tx.GetChallenge(ctx, candidate.ID)
			if err != nil {
				return err
			}
			if c.Finalized {
				return nil
			}
			winner = models.Stylar{}
			if len(ranked) > 0 {
				winner = ranked[0]
				c.WinnerStylarID = winner.ID
				if s.Badges != nil && winner.CreatorID != "" {
					if _, err := s.Badges.Award(ctx, tx, winner.CreatorID, models.BadgeChallengeWinner); err != nil && !storage.IsNotFound(err) {
						return err
					}
				}
			}
			c.Finalized = true
			if _, err = tx.UpdateChallenge(ctx, c); err != nil {
				return err
			}
			closed = true
			return nil
		})
		if err != nil {
			s.Log.WithField("challenge_id", candidate.ID).WithError(err).Error("❌ Failed to finalize challenge")
			failed = append(failed, fmt.Errorf("finalize challenge %s: %w", candidate.ID, err))
			continue
		}
		if !closed {
			continue
		}

		done++
		entry := s.Log.WithField("challenge_id", candidate.ID)
		if winner.ID != "" {
			entry.WithField("stylar_id", winner.ID).Infof("🏆 Challenge %q won by %s", candidate.Theme, winner.Name)
		} else {
			entry.Infof("🏁 Challenge %q closed without submissions", candidate.Theme)
		}
	}
	return done, errors.Join(failed...)
}
