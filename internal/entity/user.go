package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DbUser mirrors an identity-provider account with its credit balance.
type DbUser struct {
	ID        string    `gorm:"column:id;type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	SubjectID string    `gorm:"column:subject_id;type:varchar(255);uniqueIndex;not null" json:"subject_id"`
	Email     string    `gorm:"column:email;type:varchar(255);index" json:"email"`
	AvatarURL string    `gorm:"column:avatar_url;type:varchar(512)" json:"avatar_url"`
	Credits   int       `gorm:"column:credits;not null;default:0" json:"credits"`
}

// TableName overrides default pluralised name.
func (DbUser) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (u *DbUser) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserSummary is a lightweight user description returned to clients.
type UserSummary struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url"`
	Credits   int       `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
}

// CreditsResponse is the balance view for the authenticated user.
type CreditsResponse struct {
	Credits int `json:"credits"`
}

// IdentityWebhookEvent is the verified payload of a provider webhook delivery.
type IdentityWebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		ImageURL       string `json:"image_url"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

// PrimaryEmail returns the first email address carried by the event, if any.
func (e IdentityWebhookEvent) PrimaryEmail() string {
	if len(e.Data.EmailAddresses) == 0 {
		return ""
	}
	return e.Data.EmailAddresses[0].EmailAddress
}
