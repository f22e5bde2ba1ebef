package llm

import (
	"context"
	"strings"
)

// TextService generates free-form text from an instruction prompt.
type TextService interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

func truncateForLog(value string, max int) string {
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	return value[:max] + "..."
}
