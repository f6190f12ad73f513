package translation

import (
	"fmt"
	"regexp"
	"strings"

	"lualoc/internal/glossary"
)

// batchSeparator divides answers in a batch response.
const batchSeparator = "|||"

// PromptBuilder constructs system and user prompts for translation.
type PromptBuilder struct{}

// NewPromptBuilder creates a new prompt builder.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

const systemPromptTemplate = `You are a professional video game localizer translating short UI strings for a game mod.

Rules:
1. Translate from the language with code %q to the language with code %q.
2. Preserve ALL placeholders like __PH000__, __PH001__ exactly as-is, in a position that fits the translation.
3. Keep the translation about as long as the source; these strings are shown in game menus and tooltips.
4. Do not add quotes, explanations, notes or extra text.
5. When a glossary is provided, always use its translations for those terms.
6. Return ONLY the translations, separated by ` + batchSeparator + `, in the same order and the same count as the input.`

// SystemPrompt returns the system prompt for a language pair.
func (pb *PromptBuilder) SystemPrompt(source, target string) string {
	return fmt.Sprintf(systemPromptTemplate, source, target)
}

// BuildBatchUserPrompt lists the numbered texts, preceded by the glossary
// terms that occur in them.
func (pb *PromptBuilder) BuildBatchUserPrompt(texts []string, terminology map[string]string) string {
	var sb strings.Builder

	keys, relevant := glossary.Relevant(terminology, texts)
	if len(keys) > 0 {
		sb.WriteString("=== Glossary ===\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "• %s → %s\n", k, relevant[k])
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Translate each of the %d texts below. Return ONLY the translations, separated by %s, in the same order.\n\n", len(texts), batchSeparator)
	for i, t := range texts {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, t)
	}

	return sb.String()
}

// numberPrefix matches an echoed "[3] " at the start of an answer.
var numberPrefix = regexp.MustCompile(`^\[\d+\]\s*`)

// ParseBatchResponse splits a model response into answers, dropping echoed
// numbering and a trailing empty segment.
func ParseBatchResponse(response string) []string {
	parts := strings.Split(response, batchSeparator)
	if n := len(parts); n > 1 && strings.TrimSpace(parts[n-1]) == "" {
		parts = parts[:n-1]
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = numberPrefix.ReplaceAllString(strings.TrimSpace(p), "")
	}
	return out
}
