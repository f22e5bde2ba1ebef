package sql

import (
	"characterstory/internal/entity"
	"context"
	"fmt"
	"strings"
)

// CreateCreditLog appends a ledger row. Ledger rows are never updated.
func (r *GormRepository) CreateCreditLog(ctx context.Context, log *entity.DbCreditLog) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if log == nil {
		return fmt.Errorf("credit log is nil")
	}
	return r.db.WithContext(ctx).Create(log).Error
}

// ListCreditLogs returns the user's ledger rows, newest first.
func (r *GormRepository) ListCreditLogs(ctx context.Context, userID string, params *entity.CreditLogQuery) ([]entity.DbCreditLog, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("invalid user id")
	}

	limit := defaultListLimit
	if params != nil {
		limit = normalizeLimit(params.Limit)
	}

	var logs []entity.DbCreditLog
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// HasCreditLogMentioning reports whether any ledger row's reason contains
// the given artifact id.
func (r *GormRepository) HasCreditLogMentioning(ctx context.Context, artifactID string) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("repository not initialised")
	}
	if strings.TrimSpace(artifactID) == "" {
		return false, fmt.Errorf("artifact id is empty")
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.DbCreditLog{}).
		Where("reason LIKE ?", "%"+artifactID+"%").Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
