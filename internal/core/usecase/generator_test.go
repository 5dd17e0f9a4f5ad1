package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
)

type generatorLLMFake struct {
	gotPrompt    string
	gotMaxTokens int
	response     string
	err          error
}

func (f *generatorLLMFake) Paraphrase(context.Context, string, []domain.Turn, int) ([]string, error) {
	return nil, errors.New("not used")
}

func (f *generatorLLMFake) Complete(_ context.Context, prompt string, maxTokens int) (string, error) {
	f.gotPrompt = prompt
	f.gotMaxTokens = maxTokens
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func sampleContext() domain.AssembledContext {
	chunk := domain.Chunk{ID: "c1", DocumentID: "d1", Text: "The budget is 4.2M.", Location: domain.PageRange(3, 3)}
	return domain.AssembledContext{
		Text:      "[1] document=d1 p. 3\nThe budget is 4.2M.\n\n",
		Included:  []domain.Chunk{chunk},
		Citations: []domain.Citation{citationForChunk(chunk)},
	}
}

func TestGenerateBuildsCategoryPrompt(t *testing.T) {
	llm := &generatorLLMFake{response: "PERSON: Jane Smith"}
	generator := NewGenerator(llm, time.Second, 256)

	answer := generator.Generate(context.Background(), domain.Query{Text: "who is mentioned"}, sampleContext(), domain.CategoryEntity, domain.RouteRetrieve)

	if answer.Degraded {
		t.Fatalf("unexpected degraded answer")
	}
	if !strings.Contains(llm.gotPrompt, "grouped by type") {
		t.Fatalf("entity instruction missing from prompt:\n%s", llm.gotPrompt)
	}
	if !strings.Contains(llm.gotPrompt, "who is mentioned") || !strings.Contains(llm.gotPrompt, "The budget is 4.2M.") {
		t.Fatalf("prompt missing question or context:\n%s", llm.gotPrompt)
	}
	if llm.gotMaxTokens != 256 {
		t.Fatalf("maxTokens = %d, want 256", llm.gotMaxTokens)
	}
	if len(answer.Citations) != 1 || answer.Citations[0].ChunkID != "c1" {
		t.Fatalf("citations not carried: %+v", answer.Citations)
	}
}

func TestGenerateDegradesOnFailure(t *testing.T) {
	llm := &generatorLLMFake{err: errors.New("model offline")}
	generator := NewGenerator(llm, time.Second, 256)

	answer := generator.Generate(context.Background(), domain.Query{Text: "q"}, sampleContext(), domain.CategoryFactual, domain.RouteRetrieve)

	if !answer.Degraded {
		t.Fatalf("expected degraded answer")
	}
	if !strings.Contains(answer.Text, "The budget is 4.2M.") {
		t.Fatalf("degraded answer should carry the context excerpt:\n%s", answer.Text)
	}
	if len(answer.Citations) != 1 {
		t.Fatalf("degraded answer should keep citations")
	}
}

func TestGenerateDegradesOnEmptyCompletion(t *testing.T) {
	llm := &generatorLLMFake{response: "   "}
	generator := NewGenerator(llm, time.Second, 256)

	answer := generator.Generate(context.Background(), domain.Query{Text: "q"}, sampleContext(), domain.CategoryFactual, domain.RouteRetrieve)

	if !answer.Degraded {
		t.Fatalf("expected degraded answer for empty completion")
	}
}

func TestGenerateDegradesWithoutContext(t *testing.T) {
	llm := &generatorLLMFake{err: errors.New("model offline")}
	generator := NewGenerator(llm, time.Second, 256)

	answer := generator.Generate(context.Background(), domain.Query{Text: "q"}, domain.AssembledContext{}, domain.CategoryFactual, domain.RouteRetrieve)

	if !answer.Degraded {
		t.Fatalf("expected degraded answer")
	}
	if !strings.Contains(answer.Text, "no relevant material") {
		t.Fatalf("unexpected degraded text: %s", answer.Text)
	}
}
