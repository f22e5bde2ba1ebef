package api

import (
	"characterstory/internal/credits"
	"characterstory/internal/entity"
	"characterstory/internal/service"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// generateTimeout covers both model attempts plus the fixed retry pause.
const generateTimeout = 150 * time.Second

// GenerateCharacter handles POST /api/generate/character.
func (h *HTTPHandler) GenerateCharacter(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, h.msg(c, "Unauthorized"))
		return
	}

	var req entity.CharacterGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		MissingField(c, h.msg(c, "MissingCharacterFields"), "name, description")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), generateTimeout)
	defer cancel()

	resp, err := h.generationService.GenerateCharacter(ctx, user.ID, req)
	if err != nil {
		h.respondGenerationError(c, err, "character generation failed")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GenerateScene handles POST /api/generate/scene for new scenes and
// continuations.
func (h *HTTPHandler) GenerateScene(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, h.msg(c, "Unauthorized"))
		return
	}

	var req entity.SceneGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, h.msg(c, "InvalidPayload"))
		return
	}

	if req.Continuation() {
		if strings.TrimSpace(req.PreviousPrompt) == "" {
			MissingField(c, h.msg(c, "MissingPreviousPrompt"), "previousPrompt")
			return
		}
	} else if strings.TrimSpace(req.Description) == "" || req.AspectRatio == "" {
		MissingField(c, h.msg(c, "MissingSceneFields"), "description, aspectRatio")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), generateTimeout)
	defer cancel()

	resp, err := h.generationService.GenerateScene(ctx, user.ID, req)
	if err != nil {
		h.respondGenerationError(c, err, "scene generation failed")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *HTTPHandler) respondGenerationError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, credits.ErrInsufficientCredits):
		BadRequest(c, ErrCodeInsufficientCredit, h.msg(c, "InsufficientCredits"))
	case errors.Is(err, credits.ErrUserNotFound):
		NotFound(c, ErrCodeUserNotFound, h.msg(c, "UserNotFound"))
	case errors.Is(err, service.ErrPromptTooShort):
		ErrorResponse(c, http.StatusInternalServerError, ErrCodeGenerationFailed, h.msg(c, "PromptTooShort"))
	case errors.Is(err, service.ErrCreditDeduction):
		logrus.WithError(err).Error(logMsg)
		ErrorResponse(c, http.StatusInternalServerError, ErrCodeCreditDeduction, h.msg(c, "CreditDeductionFailed"))
	default:
		logrus.WithError(err).Error(logMsg)
		InternalError(c, h.msg(c, "InternalError"))
	}
}
