package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// GeminiProvider calls the Google Generative Language API over plain HTTP.
type GeminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGeminiProvider() *GeminiProvider {
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiProvider{
		apiKey:  os.Getenv("GEMINI_API_KEY"),
		model:   model,
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type geminiPart struct {
	Text       string `json:"text,omitempty"`
	InlineData *struct {
		MimeType string `json:"mime_type"`
		Data     string `json:"data"`
	} `json:"inline_data,omitempty"`
}

type geminiRequest struct {
	Contents []struct {
		Parts []geminiPart `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		MaxOutputTokens int     `json:"maxOutputTokens"`
		Temperature     float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateContent sends the prompt (and optional data-URI image) and
// returns the model's raw text. Callers normalize it themselves.
func (g *GeminiProvider) GenerateContent(ctx context.Context, prompt, imageDataURI string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not set")
	}

	var req geminiRequest
	parts := []geminiPart{{Text: prompt}}
	if imageDataURI != "" {
		mimeType, data, err := splitDataURI(imageDataURI)
		if err != nil {
			return "", err
		}
		p := geminiPart{}
		p.InlineData = &struct {
			MimeType string `json:"mime_type"`
			Data     string `json:"data"`
		}{MimeType: mimeType, Data: data}
		parts = append(parts, p)
	}
	req.Contents = []struct {
		Parts []geminiPart `json:"parts"`
	}{{Parts: parts}}
	req.GenerationConfig.MaxOutputTokens = 2048
	req.GenerationConfig.Temperature = 0.2

	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var out geminiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("gemini: bad response (%d): %v", resp.StatusCode, err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("gemini: %s", out.Error.Message)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: empty response (%d)", resp.StatusCode)
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

func splitDataURI(uri string) (mimeType, data string, err error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", "", fmt.Errorf("invalid data URI")
	}
	parts := strings.SplitN(uri, ",", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid data URI")
	}
	meta := strings.TrimPrefix(parts[0], "data:")
	mimeType = strings.SplitN(meta, ";", 2)[0]
	return mimeType, parts[1], nil
}
