package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	DBType     string `env:"DBType" envDefault:"sqlite"`
	DSNURL     string `env:"DSN_URL" envDefault:""`
	DBUser     string `env:"DBUser" envDefault:""`
	DBPassword string `env:"DBPassword" envDefault:""`
	DBAddr     string `env:"DBAddr" envDefault:""`
	DBName     string `env:"DBName" envDefault:"characterstory"`
	DBPath     string `env:"DBPath" envDefault:"datas/characterstory.db"`
	DBPort     string `env:"DBPort" envDefault:"3306"`

	// Text generation
	LLMDriver        string `env:"LLM_DRIVER" envDefault:"gemini"`
	GeminiAPIKey     string `env:"GEMINI_API_KEY" envDefault:""`
	GeminiEndpoint   string `env:"GEMINI_ENDPOINT" envDefault:""`
	GeminiModel      string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL" envDefault:""`
	OpenAIModel      string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	GenerateAttempts int    `env:"GENERATE_ATTEMPTS" envDefault:"2"`

	// Identity provider
	SessionSecret     string `env:"SESSION_SECRET" envDefault:"dev-secret-change-me"`
	SessionIssuer     string `env:"SESSION_ISSUER" envDefault:""`
	WebhookSecret     string `env:"IDENTITY_WEBHOOK_SECRET" envDefault:""`
	DefaultUILanguage string `env:"DEFAULT_UI_LANGUAGE" envDefault:"th"`

	// Credits
	InitialCredits    int  `env:"INITIAL_CREDITS" envDefault:"100"`
	DailyFreeCredits  int  `env:"DAILY_FREE_CREDITS" envDefault:"10"`
	DailyResetEnable  bool `env:"DAILY_RESET_ENABLE" envDefault:"true"`
	OrphanSweepEnable bool `env:"ORPHAN_SWEEP_ENABLE" envDefault:"true"`

	// Translation
	TranslateAPIURL    string `env:"TRANSLATE_API_URL" envDefault:"https://api.mymemory.translated.net/get"`
	TranslateCachePath string `env:"TRANSLATE_CACHE_PATH" envDefault:"datas/translation_cache.json"`
}

func ParseConfig() (Config, error) {
	var Conf Config
	err := env.Parse(&Conf)
	if err != nil {
		logrus.WithError(err).Error("env.Parse error")
		return Config{}, err
	}
	logrus.Debugf("%#v\n", Conf)
	return Conf, nil
}
