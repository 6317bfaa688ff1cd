// Package ai backs the writing assistant with an OpenAI-compatible chat API.
package ai

import (
	"context"
	"errors"

	"cvstudio/api/internal/store"
)

// ErrNotConfigured means no API key was supplied. The assistant endpoints
// report it; text optimization degrades to echoing the input instead.
var ErrNotConfigured = errors.New("ai assistant not configured")

// GeneratedContent is a full draft the assistant proposes for a job title.
type GeneratedContent struct {
	Objective  string             `json:"objective"`
	Experience []store.Experience `json:"experience"`
	Skills     []string           `json:"skills"`
}

// Analysis is the assistant's review of a finished resume.
type Analysis struct {
	Score           int      `json:"score"`
	Feedback        string   `json:"feedback"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

// Assistant is the interface the HTTP layer talks to.
type Assistant interface {
	// OptimizeText rewrites one field's text. Without a configured
	// backend it returns the input unchanged.
	OptimizeText(ctx context.Context, text, field string) (string, error)
	// GenerateContent drafts objective, experience and skills for a
	// target job title.
	GenerateContent(ctx context.Context, jobTitle string) (GeneratedContent, error)
	// SuggestSkills lists skills relevant to a job title.
	SuggestSkills(ctx context.Context, jobTitle string) ([]string, error)
	// Analyze scores a resume and explains the score.
	Analyze(ctx context.Context, r store.Resume) (Analysis, error)
}
