package credits

import (
	"characterstory/internal/model"
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	dailyResetInterval = 24 * time.Hour
	sweepInterval      = time.Hour
	// sweepGracePeriod gives an in-flight saga time to write its ledger row
	// before its artifact can be treated as orphaned.
	sweepGracePeriod = time.Hour
)

// RunDailyReset tops accounts below the daily allowance back up to it every
// 24 hours. Accounts at or above the allowance are untouched so purchased
// credits never shrink. Blocks until ctx is cancelled.
func RunDailyReset(ctx context.Context, ledger *Ledger, repo model.Repository, allowance int) {
	if allowance <= 0 {
		return
	}
	ticker := time.NewTicker(dailyResetInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			resetOnce(ctx, ledger, repo, allowance)
		}
	}
}

func resetOnce(ctx context.Context, ledger *Ledger, repo model.Repository, allowance int) {
	users, err := repo.ListUsersBelowCredits(ctx, allowance)
	if err != nil {
		logrus.WithError(err).Error("daily reset: list users failed")
		return
	}
	for _, user := range users {
		delta := allowance - user.Credits
		if delta <= 0 {
			continue
		}
		if _, err := ledger.Grant(ctx, user.ID, delta, "Daily free credits"); err != nil {
			logrus.WithError(err).WithField("user_id", user.ID).Warn("daily reset: grant failed")
		}
	}
	logrus.WithField("users", len(users)).Info("daily reset completed")
}

// RunOrphanSweep periodically deletes artifacts older than the grace period
// that have no ledger row mentioning them. Such rows are leftovers from a
// saga that persisted its artifact but failed before both the deduction and
// the compensating delete. Blocks until ctx is cancelled.
func RunOrphanSweep(ctx context.Context, repo model.Repository) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			SweepOnce(ctx, repo, time.Now().Add(-sweepGracePeriod))
		}
	}
}

// SweepOnce deletes unbilled artifacts created before the cutoff.
func SweepOnce(ctx context.Context, repo model.Repository, cutoff time.Time) {
	removed := 0

	characters, err := repo.ListCharactersOlderThan(ctx, cutoff)
	if err != nil {
		logrus.WithError(err).Error("orphan sweep: list characters failed")
		return
	}
	for _, character := range characters {
		billed, err := repo.HasCreditLogMentioning(ctx, character.ID)
		if err != nil {
			logrus.WithError(err).WithField("character_id", character.ID).Warn("orphan sweep: ledger check failed")
			continue
		}
		if billed {
			continue
		}
		if err := repo.DeleteCharacterIfExists(ctx, character.ID); err != nil {
			logrus.WithError(err).WithField("character_id", character.ID).Warn("orphan sweep: delete failed")
			continue
		}
		removed++
	}

	scenes, err := repo.ListScenesOlderThan(ctx, cutoff)
	if err != nil {
		logrus.WithError(err).Error("orphan sweep: list scenes failed")
		return
	}
	for _, scene := range scenes {
		billed, err := repo.HasCreditLogMentioning(ctx, scene.ID)
		if err != nil {
			logrus.WithError(err).WithField("scene_id", scene.ID).Warn("orphan sweep: ledger check failed")
			continue
		}
		if billed {
			continue
		}
		if err := repo.DeleteSceneIfExists(ctx, scene.ID); err != nil {
			logrus.WithError(err).WithField("scene_id", scene.ID).Warn("orphan sweep: delete failed")
			continue
		}
		removed++
	}

	if removed > 0 {
		logrus.WithField("removed", removed).Info("orphan sweep removed unbilled artifacts")
	}
}
