package entity

import "time"

type TranslateRequest struct {
	Text      string `json:"text" binding:"required"`
	From      string `json:"from"`
	To        string `json:"to"`
	Multiline bool   `json:"multiline"`
}

type TranslateResponse struct {
	TranslatedText string `json:"translatedText"`
	From           string `json:"from"`
	To             string `json:"to"`
	FromCache      bool   `json:"fromCache"`
}

// TranslateStatsResponse describes the translation memo cache.
type TranslateStatsResponse struct {
	TotalItems  int        `json:"totalItems"`
	OldestEntry *time.Time `json:"oldestEntry,omitempty"`
	NewestEntry *time.Time `json:"newestEntry,omitempty"`
	CacheSize   int        `json:"cacheSize"`
}
