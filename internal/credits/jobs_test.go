package credits

import (
	"characterstory/internal/entity"
	"context"
	"testing"
	"time"
)

func TestResetOnceTopsUpBelowAllowance(t *testing.T) {
	repo := newFakeRepo()
	ledger := NewLedger(repo)
	ctx := context.Background()

	low := repo.addUser(3)
	exact := repo.addUser(10)
	rich := repo.addUser(250)

	resetOnce(ctx, ledger, repo, 10)

	if got := repo.users[low.ID].Credits; got != 10 {
		t.Fatalf("expected low balance topped up to 10, got %d", got)
	}
	if got := repo.users[exact.ID].Credits; got != 10 {
		t.Fatalf("expected exact balance untouched at 10, got %d", got)
	}
	if got := repo.users[rich.ID].Credits; got != 250 {
		t.Fatalf("expected rich balance untouched at 250, got %d", got)
	}

	logs, _ := repo.ListCreditLogs(ctx, low.ID, nil)
	if len(logs) != 1 || logs[0].Amount != 7 {
		t.Fatalf("expected one grant of 7 for low user, got %+v", logs)
	}
	logs, _ = repo.ListCreditLogs(ctx, rich.ID, nil)
	if len(logs) != 0 {
		t.Fatalf("expected no grant for rich user, got %+v", logs)
	}
}

func TestSweepOnceRemovesUnbilledArtifacts(t *testing.T) {
	repo := newFakeRepo()
	ctx := context.Background()

	old := time.Now().Add(-2 * time.Hour)

	billed := &entity.DbCharacter{UserID: "u1", Name: "Billed", Description: "d", Prompt: "p", CreatedAt: old}
	orphan := &entity.DbCharacter{UserID: "u1", Name: "Orphan", Description: "d", Prompt: "p", CreatedAt: old}
	fresh := &entity.DbCharacter{UserID: "u1", Name: "Fresh", Description: "d", Prompt: "p", CreatedAt: time.Now()}
	for _, c := range []*entity.DbCharacter{billed, orphan, fresh} {
		if err := repo.CreateCharacter(ctx, c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	orphanScene := &entity.DbScene{UserID: "u1", Title: "Orphan scene", Prompt: "p", CreatedAt: old}
	if err := repo.CreateScene(ctx, orphanScene); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo.CreateCreditLog(ctx, &entity.DbCreditLog{
		UserID: "u1",
		Amount: -1,
		Reason: "Character generation [" + billed.ID + "]: Billed",
	})

	SweepOnce(ctx, repo, time.Now().Add(-time.Hour))

	if _, ok := repo.characters[billed.ID]; !ok {
		t.Fatal("expected billed character to survive the sweep")
	}
	if _, ok := repo.characters[fresh.ID]; !ok {
		t.Fatal("expected fresh character to survive the sweep")
	}
	if _, ok := repo.characters[orphan.ID]; ok {
		t.Fatal("expected orphan character to be removed")
	}
	if _, ok := repo.scenes[orphanScene.ID]; ok {
		t.Fatal("expected orphan scene to be removed")
	}
}
