package sql

import (
	"characterstory/internal/entity"
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// CreateScene persists a new scene.
func (r *GormRepository) CreateScene(ctx context.Context, scene *entity.DbScene) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if scene == nil {
		return fmt.Errorf("scene is nil")
	}
	return r.db.WithContext(ctx).Create(scene).Error
}

// ListScenes returns the user's scenes, newest first.
func (r *GormRepository) ListScenes(ctx context.Context, userID string, params *entity.SceneQuery) ([]entity.DbScene, error) {
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

	var scenes []entity.DbScene
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&scenes).Error; err != nil {
		return nil, err
	}
	return scenes, nil
}

// DeleteScene removes a scene owned by the given user.
func (r *GormRepository) DeleteScene(ctx context.Context, id, userID string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if strings.TrimSpace(id) == "" || strings.TrimSpace(userID) == "" {
		return fmt.Errorf("invalid scene id")
	}
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&entity.DbScene{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteSceneIfExists removes a scene by id; zero rows affected is success.
func (r *GormRepository) DeleteSceneIfExists(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("invalid scene id")
	}
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.DbScene{}).Error
}

// ListScenesOlderThan returns scenes created before the cutoff.
func (r *GormRepository) ListScenesOlderThan(ctx context.Context, cutoff time.Time) ([]entity.DbScene, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	var scenes []entity.DbScene
	if err := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Find(&scenes).Error; err != nil {
		return nil, err
	}
	return scenes, nil
}
