package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"stylar-exchange/metrics"
	"stylar-exchange/models"
	"stylar-exchange/storage"
)

// Source is the read side of the mirror (the hosted table API).
type Source interface {
	ListStylars(ctx context.Context) ([]models.Stylar, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// stylarInserter is implemented by stores that can insert-if-absent in one
// statement. Other stores go through get + create.
type stylarInserter interface {
	InsertStylarIfAbsent(ctx context.Context, st models.Stylar) (bool, error)
}

// MirrorWorker copies stylars and users that exist remotely but not locally.
// Rows already in the local store are never overwritten: the local store takes
// investments and votes, so its balances, values and scores are authoritative.
type MirrorWorker struct {
	Source Source
	Dest   storage.Store
	Log    *logrus.Entry
}

func NewMirrorWorker(source Source, dest storage.Store) *MirrorWorker {
	return &MirrorWorker{
		Source: source,
		Dest:   dest,
		Log:    logrus.WithField("worker", "mirror"),
	}
}

// MirrorStats counts the rows one pass inserted.
type MirrorStats struct {
	Stylars int
	Users   int
}

// Start polls every interval until ctx is cancelled. The first pass runs at once.
func (w *MirrorWorker) Start(ctx context.Context, interval time.Duration) {
	w.Log.Infof("🔄 [MIRROR] Starting stylar mirror (every %s)", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		stats, err := w.SyncOnce(ctx)
		metrics.RecordJobRun("stylar_mirror", err == nil)
		if err != nil {
			w.Log.WithError(err).Error("❌ [MIRROR] pass failed")
		} else {
			w.Log.Debugf("📥 [MIRROR] Mirrored %d stylar(s), %d user(s)", stats.Stylars, stats.Users)
		}

		select {
		case <-ctx.Done():
			w.Log.Info("🛑 [MIRROR] stopped")
			return
		case <-ticker.C:
		}
	}
}

// SyncOnce inserts every remote stylar and user missing locally. A failing
// record is logged and skipped; only a failed listing aborts the pass.
func (w *MirrorWorker) SyncOnce(ctx context.Context) (MirrorStats, error) {
	var stats MirrorStats

	stylars, err := w.Source.ListStylars(ctx)
	if err != nil {
		return stats, fmt.Errorf("list remote stylars: %w", err)
	}
	for _, st := range stylars {
		inserted, err := w.insertStylar(ctx, st)
		if err != nil {
			w.Log.WithField("stylar_id", st.ID).WithError(err).Warn("⚠️ [MIRROR] failed to mirror stylar")
			continue
		}
		if inserted {
			stats.Stylars++
		}
	}

	users, err := w.Source.ListUsers(ctx)
	if err != nil {
		return stats, fmt.Errorf("list remote users: %w", err)
	}
	for _, u := range users {
		inserted, err := w.insertUser(ctx, u)
		if err != nil {
			w.Log.WithField("user_id", u.ID).WithError(err).Warn("⚠️ [MIRROR] failed to mirror user")
			continue
		}
		if inserted {
			stats.Users++
		}
	}
	return stats, nil
}

func (w *MirrorWorker) insertStylar(ctx context.Context, st models.Stylar) (bool, error) {
	if ins, ok := w.Dest.(stylarInserter); ok {
		return ins.InsertStylarIfAbsent(ctx, st)
	}
	_, err := w.Dest.GetStylar(ctx, st.ID)
	if err == nil {
		return false, nil
	}
	if !storage.IsNotFound(err) {
		return false, err
	}
	if _, err := w.Dest.CreateStylar(ctx, st); err != nil {
		return false, err
	}
	return true, nil
}

func (w *MirrorWorker) insertUser(ctx context.Context, u models.User) (bool, error) {
	_, err := w.Dest.GetUser(ctx, u.ID)
	if err == nil {
		return false, nil
	}
	if !storage.IsNotFound(err) {
		return false, err
	}
	u.Investments = nil
	if _, err := w.Dest.CreateUser(ctx, u); err != nil {
		return false, err
	}
	return true, nil
}
