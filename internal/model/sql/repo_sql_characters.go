package sql

import (
	"characterstory/internal/entity"
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// CreateCharacter persists a new character profile.
func (r *GormRepository) CreateCharacter(ctx context.Context, character *entity.DbCharacter) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if character == nil {
		return fmt.Errorf("character is nil")
	}
	return r.db.WithContext(ctx).Create(character).Error
}

// GetCharacterByID loads a character regardless of owner. Used when scenes
// reference characters by id.
func (r *GormRepository) GetCharacterByID(ctx context.Context, id string) (*entity.DbCharacter, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("invalid character id")
	}
	var character entity.DbCharacter
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&character).Error; err != nil {
		return nil, err
	}
	return &character, nil
}

// ListCharacters returns the user's characters, newest first.
func (r *GormRepository) ListCharacters(ctx context.Context, userID string, params *entity.CharacterQuery) ([]entity.DbCharacter, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("invalid user id")
	}

	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	limit := defaultListLimit
	if params != nil {
		if params.Favorites {
			query = query.Where("is_favorite = ?", true)
		}
		limit = normalizeLimit(params.Limit)
	}

	var characters []entity.DbCharacter
	if err := query.Order("created_at DESC").Limit(limit).Find(&characters).Error; err != nil {
		return nil, err
	}
	return characters, nil
}

// UpdateCharacter updates a character owned by the given user.
func (r *GormRepository) UpdateCharacter(ctx context.Context, id, userID string, updates entity.CharacterUpdates) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if strings.TrimSpace(id) == "" || strings.TrimSpace(userID) == "" {
		return fmt.Errorf("invalid character id")
	}
	if updates.IsEmpty() {
		return nil
	}

	// Distinguish "not owned" from "no column changed": Updates reports zero
	// rows affected in both cases.
	var character entity.DbCharacter
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&character).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&entity.DbCharacter{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates.ToMap()).Error
}

// DeleteCharacter removes a character owned by the given user.
func (r *GormRepository) DeleteCharacter(ctx context.Context, id, userID string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if strings.TrimSpace(id) == "" || strings.TrimSpace(userID) == "" {
		return fmt.Errorf("invalid character id")
	}
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&entity.DbCharacter{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCharacterIfExists removes a character by id; zero rows affected is
// success. Used by rollback compensation, which must be idempotent.
func (r *GormRepository) DeleteCharacterIfExists(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("invalid character id")
	}
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.DbCharacter{}).Error
}

// ListCharactersOlderThan returns characters created before the cutoff.
func (r *GormRepository) ListCharactersOlderThan(ctx context.Context, cutoff time.Time) ([]entity.DbCharacter, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	var characters []entity.DbCharacter
	if err := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Find(&characters).Error; err != nil {
		return nil, err
	}
	return characters, nil
}
