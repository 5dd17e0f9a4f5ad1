package ollama

import (
	"fmt"
	"strings"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
)

func buildParaphrasePrompt(query string, history []domain.Turn, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rewrite the user question below as %d alternative search queries.\n", count)
	b.WriteString("Keep the meaning, vary the wording. Resolve pronouns using the conversation if needed.\n")
	b.WriteString("Return one query per line, nothing else.\n\n")

	if len(history) > 0 {
		b.WriteString("Conversation:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Text)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Question: %s\n", query)
	return b.String()
}

func buildEntityPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Extract the named entities from the text below.\n")
	b.WriteString(`Respond with JSON only: {"entities": [{"name": "...", "type": "..."}]}.` + "\n")
	b.WriteString("Use types like PERSON, ORG, LOCATION, DATE, PRODUCT. No commentary.\n\n")
	b.WriteString("Text:\n")
	b.WriteString(text)
	return b.String()
}

func buildScoringPrompt(question, answer string, chunks []domain.Chunk) string {
	var b strings.Builder
	b.WriteString("You are grading an answer against retrieved evidence.\n")
	b.WriteString("Score three dimensions from 0.0 to 1.0:\n")
	b.WriteString("  quality: is the answer clear and well formed\n")
	b.WriteString("  completeness: does it fully address the question\n")
	b.WriteString("  relevance: is it grounded in the evidence\n")
	b.WriteString(`Respond with JSON only: {"quality": 0.0, "completeness": 0.0, "relevance": 0.0}.` + "\n\n")

	fmt.Fprintf(&b, "Question: %s\n\nAnswer:\n%s\n\nEvidence:\n", question, answer)
	for i, chunk := range chunks {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, chunk.Text)
	}
	return b.String()
}
