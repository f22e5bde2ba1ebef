package credits

import (
	"characterstory/internal/entity"
	"characterstory/internal/model"
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	// ErrInsufficientCredits is returned when the balance cannot cover a spend.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrUserNotFound is returned when no mirror row exists for the user.
	ErrUserNotFound = errors.New("user not found")
)

// Ledger meters per-user credit balances. The balance column is the source
// of truth; credit_logs rows are an append-only audit trail written
// best-effort after the balance change.
//
// Deduct is read-then-write without row locking: two concurrent spends can
// observe the same starting balance. Single-user traffic makes this
// acceptable; the audit trail records both spends either way.
type Ledger struct {
	repo model.Repository
}

func NewLedger(repo model.Repository) *Ledger {
	return &Ledger{repo: repo}
}

// CheckAndReserve verifies the user can afford one generation and returns
// the observed balance. Nothing is written; the deduction happens after the
// artifact is persisted.
func (l *Ledger) CheckAndReserve(ctx context.Context, userID string) (int, error) {
	if l == nil || l.repo == nil {
		return 0, fmt.Errorf("ledger not initialised")
	}
	user, err := l.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("load user: %w", err)
	}
	if user.Credits < 1 {
		return user.Credits, ErrInsufficientCredits
	}
	return user.Credits, nil
}

// Deduct subtracts amount from the user's balance and returns the new
// balance.
func (l *Ledger) Deduct(ctx context.Context, userID string, amount int) (int, error) {
	if l == nil || l.repo == nil {
		return 0, fmt.Errorf("ledger not initialised")
	}
	if amount <= 0 {
		return 0, fmt.Errorf("invalid deduction amount: %d", amount)
	}
	user, err := l.repo.GetUserByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load user for deduction: %w", err)
	}
	newBalance := user.Credits - amount
	if err := l.repo.SetUserCredits(ctx, userID, newBalance); err != nil {
		return 0, fmt.Errorf("write balance: %w", err)
	}
	return newBalance, nil
}

// AppendLog writes one audit row. Failures are logged and swallowed; the
// balance change has already happened and must not be undone for a missing
// audit row.
func (l *Ledger) AppendLog(ctx context.Context, userID string, amount int, reason string) {
	if l == nil || l.repo == nil {
		return
	}
	err := l.repo.CreateCreditLog(ctx, &entity.DbCreditLog{
		UserID: userID,
		Amount: amount,
		Reason: reason,
	})
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"amount":  amount,
			"reason":  reason,
		}).Warn("failed to append credit log")
	}
}

// Grant adds credits to the user's balance and records the grant.
func (l *Ledger) Grant(ctx context.Context, userID string, amount int, reason string) (int, error) {
	if l == nil || l.repo == nil {
		return 0, fmt.Errorf("ledger not initialised")
	}
	if amount <= 0 {
		return 0, fmt.Errorf("invalid grant amount: %d", amount)
	}
	user, err := l.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("load user for grant: %w", err)
	}
	newBalance := user.Credits + amount
	if err := l.repo.SetUserCredits(ctx, userID, newBalance); err != nil {
		return 0, fmt.Errorf("write balance: %w", err)
	}
	l.AppendLog(ctx, userID, amount, reason)
	return newBalance, nil
}
