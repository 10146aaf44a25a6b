package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"stylar-exchange/metrics"
	"stylar-exchange/models"
	"stylar-exchange/storage"
)

// DefaultVoteReward is credited to a voter per accepted vote.
const DefaultVoteReward int64 = 10

// Tally is the derived vote summary of a battle.
type Tally struct {
	Total    int64   `json:"total"`
	Percent1 float64 `json:"percent1"`
	Percent2 float64 `json:"percent2"`
	HasVoted bool    `json:"has_voted"`
}

func TallyFor(b models.Battle, voterID string) Tally {
	p1, p2 := b.Percentages()
	return Tally{
		Total:    b.TotalVotes(),
		Percent1: p1,
		Percent2: p2,
		HasVoted: voterID != "" && b.HasVoted(voterID),
	}
}

// BattleView is a battle joined with both contenders.
type BattleView struct {
	models.Battle
	Stylar1 models.Stylar `json:"stylar1"`
	Stylar2 models.Stylar `json:"stylar2"`
	Tally   Tally         `json:"tally"`
}

type BattleService struct {
	Store      storage.Store
	VoteReward int64
	Badges     *BadgeService
	Log        *logrus.Entry
}

func NewBattleService(store storage.Store, voteReward int64) *BattleService {
	return &BattleService{
		Store:      store,
		VoteReward: voteReward,
		Log:        logrus.WithField("service", "battle"),
	}
}

// List returns battles whose contenders both still exist.
func (s *BattleService) List(ctx context.Context, viewerID string) ([]BattleView, error) {
	battles, err := s.Store.ListBattles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list battles: %w", err)
	}
	stylars, err := s.Store.ListStylars(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stylars: %w", err)
	}
	byID := make(map[string]models.Stylar, len(stylars))
	for _, st := range stylars {
		byID[st.ID] = st
	}

	out := make([]BattleView, 0, len(battles))
	for _, b := range battles {
		s1, ok1 := byID[b.Stylar1ID]
		s2, ok2 := byID[b.Stylar2ID]
		if !ok1 || !ok2 {
			continue
		}
		out = append(out, BattleView{Battle: b, Stylar1: s1, Stylar2: s2, Tally: TallyFor(b, viewerID)})
	}
	return out, nil
}

func (s *BattleService) Get(ctx context.Context, id, viewerID string) (BattleView, error) {
	b, err := s.Store.GetBattle(ctx, id)
	if err != nil {
		return BattleView{}, err
	}
	return s.view(ctx, s.Store, b, viewerID)
}

func (s *BattleService) view(ctx context.Context, store storage.Store, b models.Battle, viewerID string) (BattleView, error) {
	s1, err := store.GetStylar(ctx, b.Stylar1ID)
	if err != nil {
		return BattleView{}, err
	}
	s2, err := store.GetStylar(ctx, b.Stylar2ID)
	if err != nil {
		return BattleView{}, err
	}
	return BattleView{Battle: b, Stylar1: s1, Stylar2: s2, Tally: TallyFor(b, viewerID)}, nil
}

type CreateBattleInput struct {
	Name      string `json:"name"`
	Stylar1ID string `json:"stylar1_id"`
	Stylar2ID string `json:"stylar2_id"`
}

// Create pits two distinct stylars against each other with empty tallies.
func (s *BattleService) Create(ctx context.Context, in CreateBattleInput) (BattleView, error) {
	if in.Stylar1ID == "" || in.Stylar2ID == "" {
		return BattleView{}, invalid("stylars", "two stylar ids are required")
	}
	if in.Stylar1ID == in.Stylar2ID {
		return BattleView{}, invalid("stylars", "a stylar cannot battle itself")
	}
	s1, err := s.Store.GetStylar(ctx, in.Stylar1ID)
	if err != nil {
		return BattleView{}, err
	}
	s2, err := s.Store.GetStylar(ctx, in.Stylar2ID)
	if err != nil {
		return BattleView{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = fmt.Sprintf("%s vs %s", s1.Name, s2.Name)
	}
	b, err := s.Store.CreateBattle(ctx, models.Battle{
		Name:      name,
		Stylar1ID: s1.ID,
		Stylar2ID: s2.ID,
		Voters:    []string{},
	})
	if err != nil {
		return BattleView{}, fmt.Errorf("create battle: %w", err)
	}
	s.Log.WithField("battle_id", b.ID).Infof("⚔️ Battle created: %s", b.Name)
	return BattleView{Battle: b, Stylar1: s1, Stylar2: s2, Tally: TallyFor(b, "")}, nil
}

// VoteResult is the battle after the vote plus the voter's new balance.
type VoteResult struct {
	Battle BattleView  `json:"battle"`
	Voter  models.User `json:"voter"`
	Reward int64       `json:"reward"`
}

// Vote records voterID's vote for stylarID. The counter, the voter list, the
// reward and the score bump commit together; a second vote is rejected.
func (s *BattleService) Vote(ctx context.Context, battleID, stylarID, voterID string) (VoteResult, error) {
	if voterID == "" {
		return VoteResult{}, invalid("voter", "is required")
	}

	var (
		res       VoteResult
		creatorID string
	)
	err := s.Store.Atomic(ctx, func(tx storage.Store) error {
		b, err := tx.GetBattle(ctx, battleID)
		if err != nil {
			return err
		}
		if !b.Contains(stylarID) {
			return invalid("stylar_id", "stylar is not part of this battle")
		}
		if b.HasVoted(voterID) {
			return ErrAlreadyVoted
		}

		if stylarID == b.Stylar1ID {
			b.Votes1++
		} else {
			b.Votes2++
		}
		b.Voters = append(b.Voters, voterID)
		if b, err = tx.UpdateBattle(ctx, b); err != nil {
			return fmt.Errorf("record vote: %w", err)
		}

		// rows are locked battle, user, stylar; Invest takes user before stylar too
		voter, err := tx.GetUser(ctx, voterID)
		if err != nil {
			return err
		}
		if s.VoteReward > 0 {
			voter.StyleCoins += s.VoteReward
			if voter, err = tx.UpdateUser(ctx, voter); err != nil {
				return fmt.Errorf("credit reward: %w", err)
			}
		}

		st, err := tx.GetStylar(ctx, stylarID)
		if err != nil {
			return err
		}
		st.Score++
		if _, err := tx.UpdateStylar(ctx, st); err != nil {
			return fmt.Errorf("bump score: %w", err)
		}
		creatorID = st.CreatorID

		view, err := s.view(ctx, tx, b, voterID)
		if err != nil {
			return err
		}
		res = VoteResult{Battle: view, Voter: voter, Reward: s.VoteReward}
		return nil
	})

	switch {
	case err == nil:
		metrics.RecordVote("accepted")
	case errors.Is(err, ErrAlreadyVoted):
		metrics.RecordVote("duplicate")
		return VoteResult{}, err
	default:
		metrics.RecordVote("rejected")
		return VoteResult{}, err
	}

	s.Log.WithFields(logrus.Fields{
		"battle_id": battleID,
		"stylar_id": stylarID,
		"voter_id":  voterID,
	}).Info("🗳️ Vote recorded")
	s.Badges.Refresh(ctx, creatorID)
	return res, nil
}
