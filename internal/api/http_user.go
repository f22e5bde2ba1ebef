package api

import (
	"characterstory/internal/entity"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GetCredits handles GET /api/user/credits.
func (h *HTTPHandler) GetCredits(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, h.msg(c, "Unauthorized"))
		return
	}

	// The middleware already loaded the row; re-read for a fresh balance.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	fresh, err := h.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		logrus.WithError(err).Error("failed to load credits")
		InternalError(c, h.msg(c, "InternalError"))
		return
	}

	c.JSON(http.StatusOK, entity.CreditsResponse{Credits: fresh.Credits})
}

// ListCreditLogs handles GET /api/user/credit-logs?limit=N.
func (h *HTTPHandler) ListCreditLogs(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, h.msg(c, "Unauthorized"))
		return
	}

	var query entity.CreditLogQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, h.msg(c, "InvalidPayload"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	logs, err := h.repo.ListCreditLogs(ctx, user.ID, &query)
	if err != nil {
		logrus.WithError(err).Error("failed to list credit logs")
		InternalError(c, h.msg(c, "InternalError"))
		return
	}

	c.JSON(http.StatusOK, entity.CreditLogListResponse{Logs: logs})
}
