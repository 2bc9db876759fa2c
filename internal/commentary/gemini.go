package commentary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiAdvisor implements Advisor using Google's Gemini API.
type GeminiAdvisor struct {
	client  *genai.Client
	modelID string
}

// NewGeminiAdvisor creates a Gemini-backed advisor.
func NewGeminiAdvisor(ctx context.Context, apiKey, modelID string) (*GeminiAdvisor, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("commentary: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("commentary: failed to create gemini client: %w", err)
	}
	return &GeminiAdvisor{client: client, modelID: modelID}, nil
}

// Comment asks Gemini for a note on in.
func (a *GeminiAdvisor) Comment(ctx context.Context, in Input) (string, error) {
	model := a.client.GenerativeModel(a.modelID)
	model.SetTemperature(0.3)
	model.SetMaxOutputTokens(256)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(in)))
	if err != nil {
		return "", fmt.Errorf("commentary: gemini completion failed: %w", err)
	}
	text, err := geminiText(resp)
	if err != nil {
		return "", err
	}
	return capOutput(text), nil
}

// Close releases resources held by the Gemini client.
func (a *GeminiAdvisor) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("commentary: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("commentary: gemini returned empty content")
	}

	var out strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", errors.New("commentary: gemini returned no text")
	}
	return out.String(), nil
}

var _ Advisor = (*GeminiAdvisor)(nil)
