package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DbScene is a generated video scene prompt owned by a user. Character
// references are denormalized ids, not enforced foreign keys.
type DbScene struct {
	ID           string      `gorm:"column:id;type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	UserID       string      `gorm:"column:user_id;type:varchar(36);index;not null" json:"user_id"`
	Title        string      `gorm:"column:title;type:varchar(255)" json:"title"`
	Description  string      `gorm:"column:description;type:text" json:"description"`
	Prompt       string      `gorm:"column:prompt;type:text;not null" json:"prompt"`
	AspectRatio  string      `gorm:"column:aspect_ratio;type:varchar(20)" json:"aspect_ratio"`
	CharacterIDs StringArray `gorm:"column:character_ids;type:text" json:"character_ids"`
}

// TableName overrides default pluralised name.
func (DbScene) TableName() string {
	return "scenes"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (s *DbScene) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// SceneCharacterRef is a character reference inside a scene request.
type SceneCharacterRef struct {
	ID string `json:"id"`
}

// SceneGenerateRequest covers both new scenes and continuations.
// New scenes require description and aspectRatio; continuations
// (type "scene-continue" or isContinuation) require previousPrompt.
type SceneGenerateRequest struct {
	Description    string              `json:"description"`
	AspectRatio    string              `json:"aspectRatio"`
	Characters     []SceneCharacterRef `json:"characters"`
	Title          string              `json:"title"`
	VideoStyle     string              `json:"videoStyle"`
	Type           string              `json:"type"`
	PreviousPrompt string              `json:"previousPrompt"`
	IsContinuation bool                `json:"isContinuation"`
}

// Continuation reports whether the request asks for a scene continuation.
func (r SceneGenerateRequest) Continuation() bool {
	return r.Type == "scene-continue" || r.IsContinuation
}

type SceneQuery struct {
	Limit int `json:"limit" form:"limit" query:"limit"`
}

type SceneListResponse struct {
	Scenes []DbScene `json:"scenes"`
}

// SceneData echoes the stored scene alongside the raw prompt.
type SceneData struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VEO3Prompt  string `json:"veo3Prompt"`
}

type SceneRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type GenerationInfo struct {
	Method         string `json:"method"`
	AIGenerated    bool   `json:"aiGenerated"`
	PromptLength   int    `json:"promptLength"`
	CharactersUsed int    `json:"charactersUsed"`
	IsContinuation bool   `json:"isContinuation"`
}

type CreditsUsage struct {
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

type SceneGenerateResponse struct {
	Success    bool           `json:"success"`
	Prompt     string         `json:"prompt"`
	SceneData  SceneData      `json:"sceneData"`
	Scene      SceneRef       `json:"scene"`
	Generation GenerationInfo `json:"generation"`
	Credits    CreditsUsage   `json:"credits"`
	Timestamp  time.Time      `json:"timestamp"`
}
