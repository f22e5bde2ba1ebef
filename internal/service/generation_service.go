package service

import (
	"characterstory/internal/credits"
	"characterstory/internal/entity"
	"characterstory/internal/llm"
	"characterstory/internal/model"
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/avast/retry-go/v4"
	"github.com/sirupsen/logrus"
)

const (
	// minPromptLength rejects degenerate generation output before billing.
	// Counted in runes, not bytes; prompts are largely Thai.
	minPromptLength = 100
	// maxSceneCharacters caps referenced character summaries per scene.
	maxSceneCharacters = 5

	MethodAIWithCharacters     = "ai-with-characters"
	MethodAIContinuation       = "ai-continuation"
	MethodTemplateCharacters   = "template-with-characters"
	MethodContinuationFallback = "continuation-fallback"
)

var (
	// ErrPromptTooShort means neither the model nor the fallback produced a
	// usable prompt. The caller is not charged.
	ErrPromptTooShort = errors.New("generated prompt is too short or empty")
	// ErrCreditDeduction means the artifact was rolled back because the
	// balance write failed.
	ErrCreditDeduction = errors.New("failed to deduct credits")
)

// GenerationService orchestrates prompt generation: model call with bounded
// retry, deterministic fallback, artifact persistence, and credit billing.
//
// Billing follows a manual saga: insert artifact, deduct one credit with a
// compensating delete on failure, then append the ledger row best-effort.
type GenerationService struct {
	repo     model.Repository
	ledger   *credits.Ledger
	ai       llm.TextService
	attempts uint
}

func NewGenerationService(repo model.Repository, ledger *credits.Ledger, ai llm.TextService, attempts int) *GenerationService {
	if attempts <= 0 {
		attempts = 2
	}
	return &GenerationService{
		repo:     repo,
		ledger:   ledger,
		ai:       ai,
		attempts: uint(attempts),
	}
}

// generateWithRetry calls the model up to s.attempts times with a fixed one
// second pause between attempts.
func (s *GenerationService) generateWithRetry(ctx context.Context, instruction string) (string, error) {
	var out string
	err := retry.Do(
		func() error {
			text, err := s.ai.GenerateText(ctx, instruction)
			if err != nil {
				return err
			}
			out = text
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", err
	}
	return out, nil
}

// GenerateCharacter creates a character profile prompt for the user, charging
// one credit once the row is persisted.
func (s *GenerationService) GenerateCharacter(ctx context.Context, userID string, req entity.CharacterGenerateRequest) (*entity.CharacterGenerateResponse, error) {
	if s == nil || s.repo == nil || s.ledger == nil {
		return nil, fmt.Errorf("generation service not initialised")
	}

	if _, err := s.ledger.CheckAndReserve(ctx, userID); err != nil {
		return nil, err
	}

	prompt := ""
	aiGenerated := false
	raw, err := s.generateWithRetry(ctx, buildCharacterInstruction(req))
	if err == nil {
		profile, parseErr := parseCharacterProfile(raw)
		if parseErr == nil {
			prompt = FormatCharacterPrompt(profile)
			aiGenerated = true
		} else {
			err = parseErr
		}
	}
	if !aiGenerated {
		logrus.WithError(err).WithField("character", req.Name).Warn("character generation fell back to template")
		prompt = characterFallbackPrompt(req)
	}

	if utf8.RuneCountInString(prompt) < minPromptLength {
		return nil, ErrPromptTooShort
	}

	character := &entity.DbCharacter{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Gender:      req.Gender,
		Age:         req.Age,
		Role:        req.Role,
		Prompt:      prompt,
		IsFavorite:  false,
	}
	if err := s.repo.CreateCharacter(ctx, character); err != nil {
		return nil, fmt.Errorf("persist character: %w", err)
	}

	newBalance, err := s.ledger.Deduct(ctx, userID, 1)
	if err != nil {
		s.compensateCharacter(ctx, character.ID)
		return nil, fmt.Errorf("%w: %v", ErrCreditDeduction, err)
	}

	s.ledger.AppendLog(ctx, userID, -1, fmt.Sprintf("Character generation [%s]: %s", character.ID, character.Name))

	return &entity.CharacterGenerateResponse{
		Success:          true,
		Character:        *character,
		Prompt:           prompt,
		RemainingCredits: newBalance,
		AIGenerated:      aiGenerated,
	}, nil
}

// GenerateScene creates a new or continuation scene prompt for the user,
// charging one credit once the row is persisted.
func (s *GenerationService) GenerateScene(ctx context.Context, userID string, req entity.SceneGenerateRequest) (*entity.SceneGenerateResponse, error) {
	if s == nil || s.repo == nil || s.ledger == nil {
		return nil, fmt.Errorf("generation service not initialised")
	}

	if _, err := s.ledger.CheckAndReserve(ctx, userID); err != nil {
		return nil, err
	}

	isContinuation := req.Continuation()
	characters := s.resolveCharacters(ctx, req.Characters)

	var instruction, method, fallbackMethod string
	if isContinuation {
		instruction = buildContinuationInstruction(req.PreviousPrompt, req.AspectRatio, req.VideoStyle)
		method = MethodAIContinuation
		fallbackMethod = MethodContinuationFallback
	} else {
		instruction = buildSceneInstruction(req, characters)
		method = MethodAIWithCharacters
		fallbackMethod = MethodTemplateCharacters
	}

	prompt, err := s.generateWithRetry(ctx, instruction)
	aiGenerated := err == nil && prompt != ""
	if !aiGenerated {
		logrus.WithError(err).WithField("continuation", isContinuation).Warn("scene generation fell back to template")
		method = fallbackMethod
		if isContinuation {
			prompt = continuationFallbackPrompt(req.PreviousPrompt, req.AspectRatio)
		} else {
			prompt = sceneFallbackPrompt(req, characters)
		}
	}

	if utf8.RuneCountInString(prompt) < minPromptLength {
		return nil, ErrPromptTooShort
	}

	title := req.Title
	description := req.Description
	if title == "" {
		if isContinuation {
			title = "Continued Scene"
		} else {
			title = "Generated Scene"
		}
	}
	if description == "" {
		description = "Scene continuation"
	}

	ids := make(entity.StringArray, 0, len(req.Characters))
	for _, ref := range req.Characters {
		if ref.ID != "" {
			ids = append(ids, ref.ID)
		}
	}

	scene := &entity.DbScene{
		UserID:       userID,
		Title:        title,
		Description:  description,
		Prompt:       prompt,
		AspectRatio:  req.AspectRatio,
		CharacterIDs: ids,
	}
	if err := s.repo.CreateScene(ctx, scene); err != nil {
		return nil, fmt.Errorf("persist scene: %w", err)
	}

	newBalance, err := s.ledger.Deduct(ctx, userID, 1)
	if err != nil {
		s.compensateScene(ctx, scene.ID)
		return nil, fmt.Errorf("%w: %v", ErrCreditDeduction, err)
	}

	summary := truncateRunes(description, 50)
	kind := "generation"
	if isContinuation {
		kind = "continuation"
	}
	s.ledger.AppendLog(ctx, userID, -1, fmt.Sprintf("Scene %s (%s) [%s]: %s...", kind, method, scene.ID, summary))

	return &entity.SceneGenerateResponse{
		Success: true,
		Prompt:  prompt,
		SceneData: entity.SceneData{
			ID:          scene.ID,
			Title:       scene.Title,
			Description: description,
			VEO3Prompt:  prompt,
		},
		Scene: entity.SceneRef{ID: scene.ID, Title: scene.Title},
		Generation: entity.GenerationInfo{
			Method:         method,
			AIGenerated:    aiGenerated,
			PromptLength:   len(prompt),
			CharactersUsed: len(characters),
			IsContinuation: isContinuation,
		},
		Credits: entity.CreditsUsage{
			Used:      1,
			Remaining: newBalance,
		},
		Timestamp: time.Now().UTC(),
	}, nil
}

// resolveCharacters loads up to maxSceneCharacters referenced characters.
// Missing or unloadable references are skipped rather than failing the scene.
func (s *GenerationService) resolveCharacters(ctx context.Context, refs []entity.SceneCharacterRef) []entity.DbCharacter {
	var out []entity.DbCharacter
	for _, ref := range refs {
		if len(out) >= maxSceneCharacters {
			break
		}
		if ref.ID == "" {
			continue
		}
		character, err := s.repo.GetCharacterByID(ctx, ref.ID)
		if err != nil {
			logrus.WithError(err).WithField("character_id", ref.ID).Warn("skipping unresolvable character reference")
			continue
		}
		out = append(out, *character)
	}
	return out
}

// compensateCharacter rolls back an inserted character after a failed
// deduction. Failure leaves an orphan for the sweep job; the original
// deduction error still reaches the caller.
func (s *GenerationService) compensateCharacter(ctx context.Context, id string) {
	if err := s.repo.DeleteCharacterIfExists(ctx, id); err != nil {
		logrus.WithError(err).WithField("character_id", id).Error("compensating character delete failed")
	}
}

func (s *GenerationService) compensateScene(ctx context.Context, id string) {
	if err := s.repo.DeleteSceneIfExists(ctx, id); err != nil {
		logrus.WithError(err).WithField("scene_id", id).Error("compensating scene delete failed")
	}
}
