package sql

import (
	"characterstory/internal/entity"
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// CreateUser persists a new user record.
func (r *GormRepository) CreateUser(ctx context.Context, user *entity.DbUser) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if user == nil {
		return fmt.Errorf("user is nil")
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// GetUserByID loads a user by primary key.
func (r *GormRepository) GetUserByID(ctx context.Context, id string) (*entity.DbUser, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("invalid user id")
	}
	var user entity.DbUser
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserBySubjectID loads the mirror row for an identity-provider subject.
func (r *GormRepository) GetUserBySubjectID(ctx context.Context, subjectID string) (*entity.DbUser, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(subjectID)
	if trimmed == "" {
		return nil, fmt.Errorf("subject id is empty")
	}
	var user entity.DbUser
	if err := r.db.WithContext(ctx).Where("subject_id = ?", trimmed).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates an existing user entry.
func (r *GormRepository) UpdateUser(ctx context.Context, id string, updates map[string]interface{}) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("invalid user id")
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbUser{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteUserBySubjectID removes the mirror row for a subject. Zero rows is
// not an error; provider deletions may arrive more than once.
func (r *GormRepository) DeleteUserBySubjectID(ctx context.Context, subjectID string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(subjectID)
	if trimmed == "" {
		return fmt.Errorf("subject id is empty")
	}
	return r.db.WithContext(ctx).Where("subject_id = ?", trimmed).Delete(&entity.DbUser{}).Error
}

// SetUserCredits writes the balance column.
func (r *GormRepository) SetUserCredits(ctx context.Context, id string, credits int) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("invalid user id")
	}
	result := r.db.WithContext(ctx).Model(&entity.DbUser{}).Where("id = ?", id).Update("credits", credits)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListUsersBelowCredits returns accounts with a balance under the threshold.
func (r *GormRepository) ListUsersBelowCredits(ctx context.Context, threshold int) ([]entity.DbUser, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	var users []entity.DbUser
	if err := r.db.WithContext(ctx).Where("credits < ?", threshold).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
