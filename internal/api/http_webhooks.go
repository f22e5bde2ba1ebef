package api

import (
	"characterstory/internal/entity"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	svix "github.com/svix/svix-webhooks/go"
	"gorm.io/gorm"
)

// IdentityWebhook handles POST /api/webhooks/identity. The identity provider
// delivers user.created/user.updated/user.deleted events signed with svix
// headers; the local users table mirrors them.
func (h *HTTPHandler) IdentityWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		BadRequest(c, ErrCodeInvalidRequest, h.msg(c, "InvalidPayload"))
		return
	}

	if err := h.verifyWebhookSignature(payload, c.Request.Header); err != nil {
		logrus.WithError(err).Warn("webhook signature verification failed")
		BadRequest(c, ErrCodeWebhookSignature, h.msg(c, "InvalidWebhookSignature"))
		return
	}

	var event entity.IdentityWebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, h.msg(c, "InvalidPayload"))
		return
	}
	if event.Data.ID == "" {
		BadRequest(c, ErrCodeInvalidRequest, h.msg(c, "InvalidPayload"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	switch event.Type {
	case "user.created":
		err = h.handleUserCreated(ctx, event)
	case "user.updated":
		err = h.handleUserUpdated(ctx, event)
	case "user.deleted":
		err = h.repo.DeleteUserBySubjectID(ctx, event.Data.ID)
	default:
		// Unknown event types are acknowledged so the provider stops
		// redelivering them.
		logrus.WithField("type", event.Type).Debug("ignoring webhook event")
	}
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"type":       event.Type,
			"subject_id": event.Data.ID,
		}).Error("failed to process identity webhook")
		InternalError(c, h.msg(c, "InternalError"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *HTTPHandler) verifyWebhookSignature(payload []byte, headers http.Header) error {
	if h.cfg.WebhookSecret == "" {
		return errors.New("webhook secret not configured")
	}
	wh, err := svix.NewWebhook(h.cfg.WebhookSecret)
	if err != nil {
		return err
	}
	return wh.Verify(payload, headers)
}

// handleUserCreated mirrors the new account and seeds its starting balance.
// A redelivered create for a known subject is a no-op.
func (h *HTTPHandler) handleUserCreated(ctx context.Context, event entity.IdentityWebhookEvent) error {
	if existing, err := h.repo.GetUserBySubjectID(ctx, event.Data.ID); err == nil && existing != nil {
		logrus.WithField("subject_id", event.Data.ID).Info("user already mirrored, skipping create")
		return nil
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	user := &entity.DbUser{
		SubjectID: event.Data.ID,
		Email:     event.PrimaryEmail(),
		AvatarURL: event.Data.ImageURL,
		Credits:   h.cfg.InitialCredits,
	}
	if err := h.repo.CreateUser(ctx, user); err != nil {
		return err
	}

	h.ledger.AppendLog(ctx, user.ID, h.cfg.InitialCredits, "Welcome credits")
	logrus.WithFields(logrus.Fields{
		"subject_id": event.Data.ID,
		"credits":    h.cfg.InitialCredits,
	}).Info("mirrored new user")
	return nil
}

func (h *HTTPHandler) handleUserUpdated(ctx context.Context, event entity.IdentityWebhookEvent) error {
	user, err := h.repo.GetUserBySubjectID(ctx, event.Data.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Update before create can happen on redelivery; mirror it now.
			return h.handleUserCreated(ctx, event)
		}
		return err
	}
	return h.repo.UpdateUser(ctx, user.ID, map[string]interface{}{
		"email":      event.PrimaryEmail(),
		"avatar_url": event.Data.ImageURL,
	})
}
