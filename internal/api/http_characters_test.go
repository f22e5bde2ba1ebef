package api

import (
	"bytes"
	"characterstory/internal/entity"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func favoriteRequest(h *HTTPHandler, userID, characterID, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: characterID}}
	c.Request = httptest.NewRequest(http.MethodPatch, "/api/characters/"+characterID+"/favorite", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(currentUserContextKey, &RequestUser{ID: userID})
	h.UpdateCharacterFavorite(c)
	return w
}

func TestUpdateCharacterFavoriteIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	h := newTestHandler(t, repo)

	character := &entity.DbCharacter{ID: "char-1", UserID: "user-1", Name: "Malee", Prompt: "p"}
	repo.characters[character.ID] = character

	for i := 0; i < 2; i++ {
		w := favoriteRequest(h, "user-1", "char-1", `{"is_favorite":true}`)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d: %s", i+1, w.Code, w.Body.String())
		}
	}

	if !repo.characters["char-1"].IsFavorite {
		t.Fatal("expected character marked favorite")
	}
	if len(repo.characters) != 1 {
		t.Fatalf("expected exactly 1 character row, got %d", len(repo.characters))
	}

	// Unsetting works the same way.
	w := favoriteRequest(h, "user-1", "char-1", `{"is_favorite":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if repo.characters["char-1"].IsFavorite {
		t.Fatal("expected favorite cleared")
	}
}

func TestUpdateCharacterFavoriteRejections(t *testing.T) {
	repo := newFakeRepo()
	h := newTestHandler(t, repo)

	character := &entity.DbCharacter{ID: "char-1", UserID: "user-1", Name: "Malee", Prompt: "p"}
	repo.characters[character.ID] = character

	t.Run("missing field", func(t *testing.T) {
		w := favoriteRequest(h, "user-1", "char-1", `{}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("unknown character", func(t *testing.T) {
		w := favoriteRequest(h, "user-1", "missing", `{"is_favorite":true}`)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", w.Code)
		}
	})

	t.Run("not owned", func(t *testing.T) {
		w := favoriteRequest(h, "someone-else", "char-1", `{"is_favorite":true}`)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", w.Code)
		}
		if repo.characters["char-1"].IsFavorite {
			t.Fatal("expected favorite unchanged for non-owner")
		}
	})
}
