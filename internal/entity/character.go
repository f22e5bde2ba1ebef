package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DbCharacter is a generated character profile owned by a user.
type DbCharacter struct {
	ID          string    `gorm:"column:id;type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	UserID      string    `gorm:"column:user_id;type:varchar(36);index;not null" json:"user_id"`
	Name        string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description string    `gorm:"column:description;type:text;not null" json:"description"`
	Gender      string    `gorm:"column:gender;type:varchar(50)" json:"gender,omitempty"`
	Age         string    `gorm:"column:age;type:varchar(50)" json:"age,omitempty"`
	Role        string    `gorm:"column:role;type:varchar(255)" json:"role,omitempty"`
	Prompt      string    `gorm:"column:prompt;type:text;not null" json:"prompt"`
	IsFavorite  bool      `gorm:"column:is_favorite;not null;default:false" json:"is_favorite"`
}

// TableName overrides default pluralised name.
func (DbCharacter) TableName() string {
	return "characters"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (c *DbCharacter) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type CharacterGenerateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Gender      string `json:"gender"`
	Age         string `json:"age"`
	Role        string `json:"role"`
}

type CharacterQuery struct {
	Favorites bool `json:"favorites" form:"favorites" query:"favorites"`
	Limit     int  `json:"limit" form:"limit" query:"limit"`
}

type CharacterFavoriteRequest struct {
	IsFavorite *bool `json:"is_favorite" binding:"required"`
}

// CharacterUpdates carries optional column updates for a character row.
type CharacterUpdates struct {
	Name        *string
	Description *string
	Prompt      *string
	IsFavorite  *bool
}

// ToMap converts set fields into a GORM updates map.
func (u CharacterUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.Description != nil {
		updates["description"] = *u.Description
	}
	if u.Prompt != nil {
		updates["prompt"] = *u.Prompt
	}
	if u.IsFavorite != nil {
		updates["is_favorite"] = *u.IsFavorite
	}
	return updates
}

// IsEmpty reports whether no field is set.
func (u CharacterUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

type CharacterListResponse struct {
	Characters []DbCharacter `json:"characters"`
}

type CharacterGenerateResponse struct {
	Success          bool        `json:"success"`
	Character        DbCharacter `json:"character"`
	Prompt           string      `json:"prompt"`
	RemainingCredits int         `json:"remainingCredits"`
	AIGenerated      bool        `json:"aiGenerated"`
}
