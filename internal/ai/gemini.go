package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider uses Google's Gemini models, with native vision support.
type GeminiProvider struct {
	apiKey string
	model  string
}

// NewGeminiProvider creates a provider for the given API key and model.
func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	return &GeminiProvider{
		apiKey: apiKey,
		model:  model,
	}
}

// ExtractData sends the prompt and optional page image to Gemini.
func (p *GeminiProvider) ExtractData(prompt string, imageBase64 string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(p.model)
	model.SetTemperature(0)

	parts := []genai.Part{genai.Text(prompt)}
	if imageBase64 != "" {
		format, data, err := decodeDataURL(imageBase64)
		if err != nil {
			return "", err
		}
		parts = append(parts, genai.ImageData(format, data))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// decodeDataURL splits a "data:image/jpeg;base64,..." URL into the image
// format expected by genai.ImageData and the raw bytes.
func decodeDataURL(dataURL string) (string, []byte, error) {
	format := "jpeg"
	payload := dataURL
	if strings.HasPrefix(dataURL, "data:") {
		idx := strings.Index(dataURL, ",")
		if idx < 0 {
			return "", nil, fmt.Errorf("malformed data URL")
		}
		header := dataURL[len("data:"):idx]
		payload = dataURL[idx+1:]
		if mime, _, found := strings.Cut(header, ";"); found || mime != "" {
			if _, sub, ok := strings.Cut(mime, "/"); ok {
				format = sub
			}
		}
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return format, data, nil
}
