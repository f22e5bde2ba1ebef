package api

import (
	"characterstory/internal/auth"
	"characterstory/internal/config"
	"characterstory/internal/credits"
	"characterstory/internal/i18n"
	"characterstory/internal/llm"
	"characterstory/internal/model"
	"characterstory/internal/service"
	"characterstory/internal/translate"

	"github.com/gin-gonic/gin"
)

// HTTPHandler carries the wired services behind the HTTP surface.
type HTTPHandler struct {
	cfg      config.Config
	repo     model.Repository
	verifier *auth.Verifier
	ledger   *credits.Ledger
	i18n     *i18n.Manager

	generationService *service.GenerationService
	translator        *translate.Translator
}

// NewHTTPHandler creates the handler and its service layer.
func NewHTTPHandler(cfg config.Config, repo model.Repository) (*HTTPHandler, error) {
	verifier, err := auth.NewVerifier(cfg.SessionSecret, cfg.SessionIssuer)
	if err != nil {
		return nil, err
	}

	messages, err := i18n.NewManager(cfg.DefaultUILanguage)
	if err != nil {
		return nil, err
	}

	textService, err := llm.NewService(&cfg)
	if err != nil {
		return nil, err
	}

	ledger := credits.NewLedger(repo)
	generationSvc := service.NewGenerationService(repo, ledger, textService, cfg.GenerateAttempts)
	translator := translate.NewTranslator(cfg.TranslateAPIURL, translate.NewCache(cfg.TranslateCachePath))

	return &HTTPHandler{
		cfg:               cfg,
		repo:              repo,
		verifier:          verifier,
		ledger:            ledger,
		i18n:              messages,
		generationService: generationSvc,
		translator:        translator,
	}, nil
}

// Ledger exposes the credit ledger for background jobs.
func (h *HTTPHandler) Ledger() *credits.Ledger {
	return h.ledger
}

// msg localizes a user-facing message by the request's Accept-Language.
func (h *HTTPHandler) msg(c *gin.Context, key string) string {
	lang := h.i18n.Resolve(c.GetHeader("Accept-Language"))
	return h.i18n.T(lang, key, nil)
}
