package model

import (
	"characterstory/internal/entity"
	"context"
	"time"
)

// Repository defines the persistence operations.
type Repository interface {
	// Users (mirrored from the identity provider)
	CreateUser(ctx context.Context, user *entity.DbUser) error
	GetUserByID(ctx context.Context, id string) (*entity.DbUser, error)
	GetUserBySubjectID(ctx context.Context, subjectID string) (*entity.DbUser, error)
	UpdateUser(ctx context.Context, id string, updates map[string]interface{}) error
	DeleteUserBySubjectID(ctx context.Context, subjectID string) error
	SetUserCredits(ctx context.Context, id string, credits int) error
	ListUsersBelowCredits(ctx context.Context, threshold int) ([]entity.DbUser, error)

	// Characters
	CreateCharacter(ctx context.Context, character *entity.DbCharacter) error
	GetCharacterByID(ctx context.Context, id string) (*entity.DbCharacter, error)
	ListCharacters(ctx context.Context, userID string, params *entity.CharacterQuery) ([]entity.DbCharacter, error)
	UpdateCharacter(ctx context.Context, id, userID string, updates entity.CharacterUpdates) error
	DeleteCharacter(ctx context.Context, id, userID string) error
	DeleteCharacterIfExists(ctx context.Context, id string) error
	ListCharactersOlderThan(ctx context.Context, cutoff time.Time) ([]entity.DbCharacter, error)

	// Scenes
	CreateScene(ctx context.Context, scene *entity.DbScene) error
	ListScenes(ctx context.Context, userID string, params *entity.SceneQuery) ([]entity.DbScene, error)
	DeleteScene(ctx context.Context, id, userID string) error
	DeleteSceneIfExists(ctx context.Context, id string) error
	ListScenesOlderThan(ctx context.Context, cutoff time.Time) ([]entity.DbScene, error)

	// Credit ledger (append-only)
	CreateCreditLog(ctx context.Context, log *entity.DbCreditLog) error
	ListCreditLogs(ctx context.Context, userID string, params *entity.CreditLogQuery) ([]entity.DbCreditLog, error)
	HasCreditLogMentioning(ctx context.Context, artifactID string) (bool, error)
}
