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

// ListScenes handles GET /api/scenes?limit=N.
func (h *HTTPHandler) ListScenes(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, h.msg(c, "Unauthorized"))
		return
	}

	var query entity.SceneQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, h.msg(c, "InvalidPayload"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	scenes, err := h.repo.ListScenes(ctx, user.ID, &query)
	if err != nil {
		logrus.WithError(err).Error("failed to list scenes")
		InternalError(c, h.msg(c, "InternalError"))
		return
	}

	c.JSON(http.StatusOK, entity.SceneListResponse{Scenes: scenes})
}

// DeleteScene handles DELETE /api/scenes/:id.
func (h *HTTPHandler) DeleteScene(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, h.msg(c, "Unauthorized"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.DeleteScene(ctx, c.Param("id"), user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeSceneNotFound, h.msg(c, "SceneNotFound"))
			return
		}
		logrus.WithError(err).WithField("scene_id", c.Param("id")).Error("failed to delete scene")
		InternalError(c, h.msg(c, "InternalError"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
