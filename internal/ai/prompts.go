package ai

import (
	"encoding/json"
	"fmt"

	"cvstudio/api/internal/store"
)

func optimizePrompt(text, field string) (system, user string) {
	system = `You are an expert resume writer. Rewrite the text the user gives you so it is concise, professional and achievement-oriented. Keep the original language of the text. Return ONLY the rewritten text, no quotes, no commentary.`
	user = fmt.Sprintf("Field: %s\n\nText:\n%s", field, text)
	return system, user
}

func generatePrompt(jobTitle string) (system, user string) {
	system = `You are an expert resume writer. Draft resume content for the given job title.
Return ONLY a raw JSON object with this exact shape, no markdown fences:
{"objective": "...", "experience": [{"company": "...", "position": "...", "startDate": "...", "endDate": "...", "description": "..."}], "skills": ["..."]}`
	user = fmt.Sprintf("Job title: %s", jobTitle)
	return system, user
}

func suggestPrompt(jobTitle string) (system, user string) {
	system = `You are a career advisor. List the most relevant skills for the given job title.
Return ONLY a raw JSON object with this exact shape, no markdown fences:
{"skills": ["..."]}`
	user = fmt.Sprintf("Job title: %s", jobTitle)
	return system, user
}

func analyzePrompt(r store.Resume) (system, user string, err error) {
	system = `You are a strict resume reviewer. Score the resume from 0 to 100 and explain the score.
Return ONLY a raw JSON object with this exact shape, no markdown fences:
{"score": 0, "feedback": "...", "strengths": ["..."], "weaknesses": ["..."], "recommendations": ["..."]}`

	content, err := json.Marshal(r.Content)
	if err != nil {
		return "", "", fmt.Errorf("marshal resume for analysis: %w", err)
	}
	user = fmt.Sprintf("Resume (JSON):\n%s", content)
	return system, user, nil
}
