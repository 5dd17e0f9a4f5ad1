package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
	"github.com/dkozyrev/corpusqa/internal/core/ports"
)

const degradedExcerptChars = 1200

var categoryInstructions = map[domain.QueryCategory]string{
	domain.CategoryEntity:       "List only the named entities found in the context, grouped by type. No narrative.",
	domain.CategoryDate:         "Extract the events and dates from the context and order them chronologically.",
	domain.CategoryFactual:      "Give a concise factual answer using only the context.",
	domain.CategorySummary:      "Summarize the context in a few short paragraphs covering the main points.",
	domain.CategoryComparison:   "Compare the items the question asks about, point by point, using only the context.",
	domain.CategoryList:         "Answer as a bulleted list built only from the context.",
	domain.CategoryAnalytical:   "Explain the reasoning step by step, grounded only in the context.",
	domain.CategoryDocumentList: "List the documents referenced in the context with one line each.",
}

const defaultInstruction = "Answer the question using only the context below. If the context is insufficient, say so directly."

type Generator struct {
	llm       ports.InferenceClient
	timeout   time.Duration
	maxTokens int
}

func NewGenerator(llm ports.InferenceClient, timeout time.Duration, maxTokens int) *Generator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Generator{llm: llm, timeout: timeout, maxTokens: maxTokens}
}

// Generate runs one completion under a hard timeout. It never returns an
// error: timeouts and malformed responses degrade to a labeled excerpt of the
// assembled context so the pipeline always has something to return.
func (g *Generator) Generate(ctx context.Context, query domain.Query, assembled domain.AssembledContext, category domain.QueryCategory, strategy domain.RoutingStrategy) domain.Answer {
	prompt := buildAnswerPrompt(query.Text, assembled.Text, category)

	genCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.llm.Complete(genCtx, prompt, g.maxTokens)
	if err != nil {
		kind := domain.ErrGenerationMalformed
		if genCtx.Err() != nil {
			kind = domain.ErrGenerationTimeout
		}
		slog.Warn("generation_degraded", "error", domain.WrapError(kind, "generate", err))
		return g.degradedAnswer(assembled, category, strategy)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		slog.Warn("generation_degraded", "error",
			domain.WrapError(domain.ErrGenerationMalformed, "generate", fmt.Errorf("empty completion")))
		return g.degradedAnswer(assembled, category, strategy)
	}

	return domain.Answer{
		Text:      text,
		Citations: assembled.Citations,
		Category:  category,
		Strategy:  strategy,
	}
}

func (g *Generator) degradedAnswer(assembled domain.AssembledContext, category domain.QueryCategory, strategy domain.RoutingStrategy) domain.Answer {
	excerpt := assembled.Text
	if len(excerpt) > degradedExcerptChars {
		excerpt = excerpt[:degradedExcerptChars]
	}
	text := "I could not generate a complete answer in time. The most relevant material found is:\n\n" + excerpt
	if strings.TrimSpace(assembled.Text) == "" {
		text = "I could not generate an answer, and no relevant material was retrieved."
	}
	return domain.Answer{
		Text:      text,
		Citations: assembled.Citations,
		Category:  category,
		Strategy:  strategy,
		Degraded:  true,
	}
}

func buildAnswerPrompt(question, contextBlock string, category domain.QueryCategory) string {
	instruction, ok := categoryInstructions[category]
	if !ok {
		instruction = defaultInstruction
	}
	return fmt.Sprintf(`%s

Question:
%s

Context:
%s
`, instruction, question, contextBlock)
}
