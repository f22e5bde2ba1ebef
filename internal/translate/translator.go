package translate

import (
	"characterstory/internal/entity"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"encoding/json"

	"github.com/sirupsen/logrus"
)

const (
	LangThai    = "th"
	LangEnglish = "en"

	// apiCallPause spaces consecutive upstream calls in multiline mode.
	apiCallPause = 300 * time.Millisecond
)

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus  int    `json:"responseStatus"`
	ResponseDetails string `json:"responseDetails"`
}

// Translator translates Thai/English text through the MyMemory REST API with
// a persistent memo cache in front of it.
type Translator struct {
	apiURL  string
	httpCli *http.Client
	cache   *Cache
}

func NewTranslator(apiURL string, cache *Cache) *Translator {
	return &Translator{
		apiURL:  apiURL,
		httpCli: &http.Client{Timeout: 15 * time.Second},
		cache:   cache,
	}
}

// DetectLanguage classifies text as Thai or English. Pure scripts win
// outright; mixed text is decided by codepoint majority, ties going to
// English.
func DetectLanguage(text string) string {
	thaiCount := 0
	englishCount := 0
	for _, r := range text {
		switch {
		case r >= 0x0E00 && r <= 0x0E7F:
			thaiCount++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			englishCount++
		}
	}
	if thaiCount > 0 && englishCount == 0 {
		return LangThai
	}
	if thaiCount == 0 && englishCount > 0 {
		return LangEnglish
	}
	if thaiCount > englishCount {
		return LangThai
	}
	return LangEnglish
}

// resolveLangs fills defaults: both empty means auto-detect with the target
// being the opposite language, otherwise th→en.
func resolveLangs(text, from, to string) (string, string) {
	if from == "" && to == "" {
		detected := DetectLanguage(text)
		if detected == LangThai {
			return LangThai, LangEnglish
		}
		return LangEnglish, LangThai
	}
	if from == "" {
		from = LangThai
	}
	if to == "" {
		to = LangEnglish
	}
	return from, to
}

// Translate translates one piece of text, consulting the memo cache first.
func (t *Translator) Translate(ctx context.Context, text, from, to string) (*entity.TranslateResponse, error) {
	if t == nil {
		return nil, errors.New("translator is nil")
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("no text to translate")
	}
	from, to = resolveLangs(text, from, to)

	if cached, ok := t.cache.Get(text, from, to); ok {
		return &entity.TranslateResponse{
			TranslatedText: cached,
			From:           from,
			To:             to,
			FromCache:      true,
		}, nil
	}

	translated, err := t.callAPI(ctx, text, from, to)
	if err != nil {
		return nil, err
	}
	t.cache.Put(text, translated, from, to)

	return &entity.TranslateResponse{
		TranslatedText: translated,
		From:           from,
		To:             to,
		FromCache:      false,
	}, nil
}

// TranslateMultiline translates line by line. Blank lines pass through
// unchanged, failed lines fall back to their original text, and consecutive
// upstream calls are spaced by a short pause. Cache hits cost nothing.
func (t *Translator) TranslateMultiline(ctx context.Context, text, from, to string) (*entity.TranslateResponse, error) {
	if t == nil {
		return nil, errors.New("translator is nil")
	}
	from, to = resolveLangs(text, from, to)

	lines := strings.Split(text, "\n")
	translated := make([]string, 0, len(lines))
	apiCalls := 0
	cacheHits := 0

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			translated = append(translated, line)
			continue
		}

		result, err := t.Translate(ctx, line, from, to)
		if err != nil {
			logrus.WithError(err).Debug("line translation failed, keeping original")
			translated = append(translated, line)
			continue
		}
		translated = append(translated, result.TranslatedText)

		if result.FromCache {
			cacheHits++
			continue
		}
		apiCalls++
		if apiCalls > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(apiCallPause):
			}
		}
	}

	logrus.WithFields(logrus.Fields{
		"lines":      len(lines),
		"api_calls":  apiCalls,
		"cache_hits": cacheHits,
	}).Debug("multiline translation done")

	return &entity.TranslateResponse{
		TranslatedText: strings.Join(translated, "\n"),
		From:           from,
		To:             to,
		FromCache:      apiCalls == 0 && cacheHits > 0,
	}, nil
}

// Stats exposes memo cache statistics.
func (t *Translator) Stats() entity.TranslateStatsResponse {
	return t.cache.Stats()
}

// ClearCache drops the memo cache.
func (t *Translator) ClearCache() {
	t.cache.Clear()
}

func (t *Translator) callAPI(ctx context.Context, text, from, to string) (string, error) {
	query := url.Values{}
	query.Set("q", text)
	query.Set("langpair", from+"|"+to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.apiURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("translation create request: %w", err)
	}

	resp, err := t.httpCli.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation API error: %d", resp.StatusCode)
	}

	var parsed myMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("translation decode response: %w", err)
	}
	if parsed.ResponseStatus != http.StatusOK {
		detail := parsed.ResponseDetails
		if detail == "" {
			detail = "translation failed"
		}
		return "", errors.New(detail)
	}
	return parsed.ResponseData.TranslatedText, nil
}
