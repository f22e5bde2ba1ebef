package api

import (
	"characterstory/internal/entity"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ListCharacters handles GET /api/characters?favorites=true&limit=N.
func (h *HTTPHandler) ListCharacters(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, h.msg(c, "Unauthorized"))
		return
	}

	var query entity.CharacterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, h.msg(c, "InvalidPayload"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	characters, err := h.repo.ListCharacters(ctx, user.ID, &query)
	if err != nil {
		logrus.WithError(err).Error("failed to list characters")
		InternalError(c, h.msg(c, "InternalError"))
		return
	}

	c.JSON(http.StatusOK, entity.CharacterListResponse{Characters: characters})
}

// UpdateCharacterFavorite handles PATCH /api/characters/:id/favorite.
// Setting the current value again is a no-op success.
func (h *HTTPHandler) UpdateCharacterFavorite(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, h.msg(c, "Unauthorized"))
		return
	}

	var req entity.CharacterFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsFavorite == nil {
		MissingField(c, h.msg(c, "InvalidPayload"), "is_favorite")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	err := h.repo.UpdateCharacter(ctx, c.Param("id"), user.ID, entity.CharacterUpdates{IsFavorite: req.IsFavorite})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeCharacterNotFound, h.msg(c, "CharacterNotFound"))
			return
		}
		logrus.WithError(err).WithField("character_id", c.Param("id")).Error("failed to update character favorite")
		InternalError(c, h.msg(c, "InternalError"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "is_favorite": *req.IsFavorite})
}

// DeleteCharacter handles DELETE /api/characters/:id.
func (h *HTTPHandler) DeleteCharacter(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, h.msg(c, "Unauthorized"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.DeleteCharacter(ctx, c.Param("id"), user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeCharacterNotFound, h.msg(c, "CharacterNotFound"))
			return
		}
		logrus.WithError(err).WithField("character_id", c.Param("id")).Error("failed to delete character")
		InternalError(c, h.msg(c, "InternalError"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
