package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	currentUserContextKey = "current-user"
)

// RequestUser is the authenticated user resolved for a request.
type RequestUser struct {
	ID        string
	SubjectID string
	Email     string
	Credits   int
}

// AuthMiddleware verifies the Bearer session token and resolves the mirrored
// user row for the token's subject.
func (h *HTTPHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:      ErrCodeUnauthorized,
				Message:   h.msg(c, "Unauthorized"),
				Timestamp: time.Now().UTC(),
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:      ErrCodeUnauthorized,
				Message:   h.msg(c, "Unauthorized"),
				Timestamp: time.Now().UTC(),
			})
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:      ErrCodeUnauthorized,
				Message:   h.msg(c, "Unauthorized"),
				Timestamp: time.Now().UTC(),
			})
			return
		}

		subjectID, err := h.verifier.VerifyToken(tokenString)
		if err != nil {
			logrus.WithError(err).Warn("failed to verify session token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:      ErrCodeSessionExpired,
				Message:   h.msg(c, "Unauthorized"),
				Timestamp: time.Now().UTC(),
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := h.repo.GetUserBySubjectID(ctx, subjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, APIError{
					Code:      ErrCodeUserNotFound,
					Message:   h.msg(c, "UserNotFound"),
					Timestamp: time.Now().UTC(),
				})
				return
			}
			logrus.WithError(err).WithField("subject_id", subjectID).Error("failed to load user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, APIError{
				Code:      ErrCodeInternalError,
				Message:   h.msg(c, "InternalError"),
				Timestamp: time.Now().UTC(),
			})
			return
		}

		c.Set(currentUserContextKey, &RequestUser{
			ID:        user.ID,
			SubjectID: user.SubjectID,
			Email:     user.Email,
			Credits:   user.Credits,
		})
		c.Next()
	}
}

// CurrentUser returns the authenticated user from the request context.
func CurrentUser(c *gin.Context) *RequestUser {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*RequestUser)
	if !ok {
		return nil
	}
	return user
}
