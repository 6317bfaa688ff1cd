package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cvstudio/api/internal/store"
)

// openAIClient speaks the chat-completions dialect shared by OpenAI, Groq
// and compatible gateways.
type openAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient builds the assistant. An empty apiKey yields a working client
// in degraded mode rather than an error.
func NewClient(apiKey, baseURL, model string) Assistant {
	return &openAIClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *openAIClient) configured() bool {
	return c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *openAIClient) complete(ctx context.Context, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.3,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("chat API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in chat response")
	}
	return chatResp.Choices[0].Message.Content, nil
}

func (c *openAIClient) OptimizeText(ctx context.Context, text, field string) (string, error) {
	if !c.configured() {
		return text, nil
	}
	system, user := optimizePrompt(text, field)
	out, err := c.complete(ctx, system, user)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (c *openAIClient) GenerateContent(ctx context.Context, jobTitle string) (GeneratedContent, error) {
	if !c.configured() {
		return GeneratedContent{}, ErrNotConfigured
	}
	system, user := generatePrompt(jobTitle)
	out, err := c.complete(ctx, system, user)
	if err != nil {
		return GeneratedContent{}, err
	}

	raw, err := extractJSON(out)
	if err != nil {
		return GeneratedContent{}, fmt.Errorf("parse generated content: %w", err)
	}
	var content GeneratedContent
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return GeneratedContent{}, fmt.Errorf("parse generated content: %w", err)
	}
	return content, nil
}

func (c *openAIClient) SuggestSkills(ctx context.Context, jobTitle string) ([]string, error) {
	if !c.configured() {
		return nil, ErrNotConfigured
	}
	system, user := suggestPrompt(jobTitle)
	out, err := c.complete(ctx, system, user)
	if err != nil {
		return nil, err
	}

	raw, err := extractJSON(out)
	if err != nil {
		return nil, fmt.Errorf("parse skill suggestions: %w", err)
	}
	var parsed struct {
		Skills []string `json:"skills"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse skill suggestions: %w", err)
	}
	return parsed.Skills, nil
}

func (c *openAIClient) Analyze(ctx context.Context, r store.Resume) (Analysis, error) {
	if !c.configured() {
		return Analysis{}, ErrNotConfigured
	}
	system, user, err := analyzePrompt(r)
	if err != nil {
		return Analysis{}, err
	}
	out, err := c.complete(ctx, system, user)
	if err != nil {
		return Analysis{}, err
	}

	raw, err := extractJSON(out)
	if err != nil {
		return Analysis{}, fmt.Errorf("parse analysis: %w", err)
	}
	var analysis Analysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return Analysis{}, fmt.Errorf("parse analysis: %w", err)
	}
	return analysis, nil
}
