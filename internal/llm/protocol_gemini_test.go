package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResolveGeminiEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		model    string
		expected string
	}{
		{
			name:     "empty uses public endpoint",
			endpoint: "",
			model:    "gemini-2.0-flash",
			expected: "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent",
		},
		{
			name:     "template endpoint",
			endpoint: "https://proxy.example.com/models/%s:generateContent",
			model:    "gemini-2.0-flash",
			expected: "https://proxy.example.com/models/gemini-2.0-flash:generateContent",
		},
		{
			name:     "base url gets suffix",
			endpoint: "https://proxy.example.com/",
			model:    "gemini-2.0-flash",
			expected: "https://proxy.example.com/v1beta/models/gemini-2.0-flash:generateContent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := resolveGeminiEndpoint(tt.endpoint, tt.model)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestGeminiGenerateText(t *testing.T) {
	var gotKey string
	var gotBody geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"part one "},{"text":"part two"}]}}]}`)
	}))
	defer server.Close()

	svc := NewGeminiService("test-key", server.URL+"/models/%s:generateContent", "gemini-2.0-flash")

	text, err := svc.GenerateText(context.Background(), "describe a market scene")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "part one part two" {
		t.Fatalf("expected concatenated parts, got %q", text)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "describe a market scene" {
		t.Fatalf("unexpected request contents: %+v", gotBody.Contents)
	}
	if gotBody.GenerationConfig == nil || gotBody.GenerationConfig.MaxOutputTokens != 3000 {
		t.Fatalf("unexpected generation config: %+v", gotBody.GenerationConfig)
	}
}

func TestGeminiGenerateTextErrors(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		svc := NewGeminiService("", "", "gemini-2.0-flash")
		if _, err := svc.GenerateText(context.Background(), "prompt"); err == nil {
			t.Fatal("expected error for missing api key")
		}
	})

	t.Run("empty prompt", func(t *testing.T) {
		svc := NewGeminiService("key", "", "gemini-2.0-flash")
		if _, err := svc.GenerateText(context.Background(), "  "); err == nil {
			t.Fatal("expected error for empty prompt")
		}
	})

	t.Run("http error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":{"message":"quota exceeded"}}`)
		}))
		defer server.Close()

		svc := NewGeminiService("key", server.URL+"/models/%s:generateContent", "gemini-2.0-flash")
		_, err := svc.GenerateText(context.Background(), "prompt")
		if err == nil {
			t.Fatal("expected error for http failure")
		}
		if !strings.Contains(err.Error(), "429") {
			t.Fatalf("expected status code in error, got %v", err)
		}
	})

	t.Run("api error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"error":{"message":"invalid model"}}`)
		}))
		defer server.Close()

		svc := NewGeminiService("key", server.URL+"/models/%s:generateContent", "gemini-2.0-flash")
		_, err := svc.GenerateText(context.Background(), "prompt")
		if err == nil || !strings.Contains(err.Error(), "invalid model") {
			t.Fatalf("expected api error message, got %v", err)
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"candidates":[]}`)
		}))
		defer server.Close()

		svc := NewGeminiService("key", server.URL+"/models/%s:generateContent", "gemini-2.0-flash")
		if _, err := svc.GenerateText(context.Background(), "prompt"); err == nil {
			t.Fatal("expected error for empty candidate list")
		}
	})
}

func TestTruncateForLog(t *testing.T) {
	if got := truncateForLog("short", 10); got != "short" {
		t.Errorf("expected unchanged string, got %q", got)
	}
	if got := truncateForLog("abcdefghij", 4); got != "abcd..." {
		t.Errorf("expected truncated string with ellipsis, got %q", got)
	}
}
