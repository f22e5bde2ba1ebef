package credits

import (
	"characterstory/internal/entity"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeRepo is an in-memory model.Repository for ledger and job tests.
type fakeRepo struct {
	users      map[string]*entity.DbUser
	characters map[string]*entity.DbCharacter
	scenes     map[string]*entity.DbScene
	logs       []entity.DbCreditLog

	failSetCredits bool
	failCreateLog  bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:      make(map[string]*entity.DbUser),
		characters: make(map[string]*entity.DbCharacter),
		scenes:     make(map[string]*entity.DbScene),
	}
}

func (f *fakeRepo) addUser(credits int) *entity.DbUser {
	user := &entity.DbUser{ID: uuid.NewString(), SubjectID: "subj_" + uuid.NewString(), Credits: credits}
	f.users[user.ID] = user
	return user
}

func (f *fakeRepo) CreateUser(_ context.Context, user *entity.DbUser) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeRepo) GetUserByID(_ context.Context, id string) (*entity.DbUser, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeRepo) GetUserBySubjectID(_ context.Context, subjectID string) (*entity.DbUser, error) {
	for _, user := range f.users {
		if user.SubjectID == subjectID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpdateUser(_ context.Context, id string, updates map[string]interface{}) error {
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if email, ok := updates["email"].(string); ok {
		user.Email = email
	}
	if avatar, ok := updates["avatar_url"].(string); ok {
		user.AvatarURL = avatar
	}
	return nil
}

func (f *fakeRepo) DeleteUserBySubjectID(_ context.Context, subjectID string) error {
	for id, user := range f.users {
		if user.SubjectID == subjectID {
			delete(f.users, id)
		}
	}
	return nil
}

func (f *fakeRepo) SetUserCredits(_ context.Context, id string, credits int) error {
	if f.failSetCredits {
		return errors.New("balance write failed")
	}
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Credits = credits
	return nil
}

func (f *fakeRepo) ListUsersBelowCredits(_ context.Context, threshold int) ([]entity.DbUser, error) {
	var out []entity.DbUser
	for _, user := range f.users {
		if user.Credits < threshold {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateCharacter(_ context.Context, character *entity.DbCharacter) error {
	if character.ID == "" {
		character.ID = uuid.NewString()
	}
	if character.CreatedAt.IsZero() {
		character.CreatedAt = time.Now()
	}
	f.characters[character.ID] = character
	return nil
}

func (f *fakeRepo) GetCharacterByID(_ context.Context, id string) (*entity.DbCharacter, error) {
	character, ok := f.characters[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *character
	return &copied, nil
}

func (f *fakeRepo) ListCharacters(_ context.Context, userID string, _ *entity.CharacterQuery) ([]entity.DbCharacter, error) {
	var out []entity.DbCharacter
	for _, character := range f.characters {
		if character.UserID == userID {
			out = append(out, *character)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateCharacter(_ context.Context, id, userID string, updates entity.CharacterUpdates) error {
	character, ok := f.characters[id]
	if !ok || character.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	if updates.IsFavorite != nil {
		character.IsFavorite = *updates.IsFavorite
	}
	return nil
}

func (f *fakeRepo) DeleteCharacter(_ context.Context, id, userID string) error {
	character, ok := f.characters[id]
	if !ok || character.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(f.characters, id)
	return nil
}

func (f *fakeRepo) DeleteCharacterIfExists(_ context.Context, id string) error {
	delete(f.characters, id)
	return nil
}

func (f *fakeRepo) ListCharactersOlderThan(_ context.Context, cutoff time.Time) ([]entity.DbCharacter, error) {
	var out []entity.DbCharacter
	for _, character := range f.characters {
		if character.CreatedAt.Before(cutoff) {
			out = append(out, *character)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateScene(_ context.Context, scene *entity.DbScene) error {
	if scene.ID == "" {
		scene.ID = uuid.NewString()
	}
	if scene.CreatedAt.IsZero() {
		scene.CreatedAt = time.Now()
	}
	f.scenes[scene.ID] = scene
	return nil
}

func (f *fakeRepo) ListScenes(_ context.Context, userID string, _ *entity.SceneQuery) ([]entity.DbScene, error) {
	var out []entity.DbScene
	for _, scene := range f.scenes {
		if scene.UserID == userID {
			out = append(out, *scene)
		}
	}
	return out, nil
}

func (f *fakeRepo) DeleteScene(_ context.Context, id, userID string) error {
	scene, ok := f.scenes[id]
	if !ok || scene.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(f.scenes, id)
	return nil
}

func (f *fakeRepo) DeleteSceneIfExists(_ context.Context, id string) error {
	delete(f.scenes, id)
	return nil
}

func (f *fakeRepo) ListScenesOlderThan(_ context.Context, cutoff time.Time) ([]entity.DbScene, error) {
	var out []entity.DbScene
	for _, scene := range f.scenes {
		if scene.CreatedAt.Before(cutoff) {
			out = append(out, *scene)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateCreditLog(_ context.Context, log *entity.DbCreditLog) error {
	if f.failCreateLog {
		return errors.New("log write failed")
	}
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	f.logs = append(f.logs, *log)
	return nil
}

func (f *fakeRepo) ListCreditLogs(_ context.Context, userID string, _ *entity.CreditLogQuery) ([]entity.DbCreditLog, error) {
	var out []entity.DbCreditLog
	for _, log := range f.logs {
		if log.UserID == userID {
			out = append(out, log)
		}
	}
	return out, nil
}

func (f *fakeRepo) HasCreditLogMentioning(_ context.Context, artifactID string) (bool, error) {
	for _, log := range f.logs {
		if strings.Contains(log.Reason, artifactID) {
			return true, nil
		}
	}
	return false, nil
}

func TestCheckAndReserve(t *testing.T) {
	repo := newFakeRepo()
	ledger := NewLedger(repo)
	ctx := context.Background()

	rich := repo.addUser(5)
	broke := repo.addUser(0)

	balance, err := ledger.CheckAndReserve(ctx, rich.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 5 {
		t.Fatalf("expected balance 5, got %d", balance)
	}

	if _, err := ledger.CheckAndReserve(ctx, broke.ID); !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}

	if _, err := ledger.CheckAndReserve(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDeduct(t *testing.T) {
	repo := newFakeRepo()
	ledger := NewLedger(repo)
	ctx := context.Background()

	user := repo.addUser(3)

	balance, err := ledger.Deduct(ctx, user.ID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 2 {
		t.Fatalf("expected balance 2, got %d", balance)
	}
	if repo.users[user.ID].Credits != 2 {
		t.Fatalf("expected stored balance 2, got %d", repo.users[user.ID].Credits)
	}

	if _, err := ledger.Deduct(ctx, user.ID, 0); err == nil {
		t.Fatal("expected error for non-positive amount")
	}
	if _, err := ledger.Deduct(ctx, "missing", 1); err == nil {
		t.Fatal("expected error for missing user")
	}
}

func TestAppendLogSwallowsFailures(t *testing.T) {
	repo := newFakeRepo()
	ledger := NewLedger(repo)
	ctx := context.Background()

	user := repo.addUser(3)

	ledger.AppendLog(ctx, user.ID, -1, "Character generation [abc]: test")
	if len(repo.logs) != 1 {
		t.Fatalf("expected 1 log row, got %d", len(repo.logs))
	}

	repo.failCreateLog = true
	ledger.AppendLog(ctx, user.ID, -1, "should not panic")
	if len(repo.logs) != 1 {
		t.Fatalf("expected log count unchanged, got %d", len(repo.logs))
	}
}

func TestGrant(t *testing.T) {
	repo := newFakeRepo()
	ledger := NewLedger(repo)
	ctx := context.Background()

	user := repo.addUser(2)

	balance, err := ledger.Grant(ctx, user.ID, 8, "Daily free credits")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 10 {
		t.Fatalf("expected balance 10, got %d", balance)
	}
	if len(repo.logs) != 1 || repo.logs[0].Amount != 8 {
		t.Fatalf("expected one grant log of 8, got %+v", repo.logs)
	}

	if _, err := ledger.Grant(ctx, user.ID, -1, "bad"); err == nil {
		t.Fatal("expected error for non-positive amount")
	}
	if _, err := ledger.Grant(ctx, "missing", 1, "x"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
