package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

const translationSystemPrompt = `You are a professional translator for resumes and career documents.
You will receive a JSON document. Translate ONLY the human-readable text values into the target language.
Rules:
- Keep every JSON key exactly as it is. Do not add, remove, or rename keys.
- Keep array lengths and element order unchanged.
- Keep numbers, dates, emails, URLs, and identifiers untouched.
- Respond with the translated JSON document only, no commentary and no code fences.`

// BuildTranslationMessages builds the chat messages for translating a JSON
// document into targetLanguage.
func BuildTranslationMessages(document json.RawMessage, targetLanguage string) []Message {
	return []Message{
		{Role: "system", Content: translationSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Target language: %s\n\nDocument:\n%s", targetLanguage, string(document))},
	}
}

// ExtractJSON strips markdown code fences the model sometimes wraps around
// its output and returns the bare JSON text.
func ExtractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
	}
	return strings.TrimSpace(content)
}
