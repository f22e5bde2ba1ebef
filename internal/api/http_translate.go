package api

import (
	"characterstory/internal/entity"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// translateTimeout allows for the per-line pacing in multiline mode.
const translateTimeout = 60 * time.Second

// Translate handles POST /api/translate.
func (h *HTTPHandler) Translate(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, h.msg(c, "Unauthorized"))
		return
	}

	var req entity.TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		MissingField(c, h.msg(c, "NoTextToTranslate"), "text")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), translateTimeout)
	defer cancel()

	var (
		resp *entity.TranslateResponse
		err  error
	)
	if req.Multiline {
		resp, err = h.translator.TranslateMultiline(ctx, req.Text, req.From, req.To)
	} else {
		resp, err = h.translator.Translate(ctx, req.Text, req.From, req.To)
	}
	if err != nil {
		logrus.WithError(err).Warn("translation failed")
		ErrorResponse(c, http.StatusBadGateway, ErrCodeTranslationFailed, h.msg(c, "TranslationFailed"))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// TranslateStats handles GET /api/translate/stats.
func (h *HTTPHandler) TranslateStats(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, h.msg(c, "Unauthorized"))
		return
	}

	c.JSON(http.StatusOK, h.translator.Stats())
}

// ClearTranslateCache handles DELETE /api/translate/cache.
func (h *HTTPHandler) ClearTranslateCache(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, h.msg(c, "Unauthorized"))
		return
	}

	h.translator.ClearCache()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
