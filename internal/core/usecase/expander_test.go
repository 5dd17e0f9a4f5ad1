package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
)

type expanderLLMFake struct {
	calls       int
	gotHistory  []domain.Turn
	gotCount    int
	paraphrases []string
	err         error
}

func (f *expanderLLMFake) Paraphrase(_ context.Context, _ string, history []domain.Turn, count int) ([]string, error) {
	f.calls++
	f.gotHistory = history
	f.gotCount = count
	if f.err != nil {
		return nil, f.err
	}
	return f.paraphrases, nil
}

func (f *expanderLLMFake) Complete(context.Context, string, int) (string, error) {
	return "", errors.New("not used")
}

func TestExpandSkipsNarrowQueries(t *testing.T) {
	llm := &expanderLLMFake{paraphrases: []string{"alt"}}
	expander := NewExpander(llm, 3, time.Second)

	variants := expander.Expand(context.Background(), domain.Query{Text: "What is the budget?"}, domain.CategoryFactual, false)

	if llm.calls != 0 {
		t.Fatalf("expected no paraphrase calls, got %d", llm.calls)
	}
	if len(variants) != 1 || variants[0].Origin != domain.VariantOriginal {
		t.Fatalf("unexpected variants: %+v", variants)
	}
}

func TestExpandWidenOverridesSkip(t *testing.T) {
	llm := &expanderLLMFake{paraphrases: []string{"budget total for the project"}}
	expander := NewExpander(llm, 3, time.Second)

	variants := expander.Expand(context.Background(), domain.Query{Text: "What is the budget?"}, domain.CategoryFactual, true)

	if llm.calls != 1 {
		t.Fatalf("expected one paraphrase call, got %d", llm.calls)
	}
	if len(variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(variants))
	}
}

func TestExpandGeneratesVariantsWithHistory(t *testing.T) {
	llm := &expanderLLMFake{paraphrases: []string{"more about the merger timeline", "merger follow-up details"}}
	expander := NewExpander(llm, 3, time.Second)

	history := []domain.Turn{{Role: "user", Text: "tell me about the merger"}}
	variants := expander.Expand(context.Background(), domain.Query{Text: "tell me more", History: history}, domain.CategoryVague, false)

	if len(llm.gotHistory) != 1 {
		t.Fatalf("history not passed to collaborator")
	}
	if llm.gotCount != 2 {
		t.Fatalf("requested count = %d, want 2", llm.gotCount)
	}
	if len(variants) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(variants))
	}
	if variants[0].Origin != domain.VariantOriginal || variants[0].Text != "tell me more" {
		t.Fatalf("original must come first: %+v", variants[0])
	}
	for _, v := range variants[1:] {
		if v.Origin != domain.VariantGenerated {
			t.Fatalf("expected generated origin: %+v", v)
		}
	}
}

func TestExpandDegradesToOriginalOnError(t *testing.T) {
	llm := &expanderLLMFake{err: errors.New("model offline")}
	expander := NewExpander(llm, 3, time.Second)

	variants := expander.Expand(context.Background(), domain.Query{Text: "describe the acquisition terms"}, domain.CategoryGeneral, false)

	if len(variants) != 1 || variants[0].Text != "describe the acquisition terms" {
		t.Fatalf("expected only original variant, got %+v", variants)
	}
}

func TestExpandDropsDuplicateParaphrases(t *testing.T) {
	llm := &expanderLLMFake{paraphrases: []string{"Describe the acquisition terms!", "acquisition terms overview", ""}}
	expander := NewExpander(llm, 3, time.Second)

	variants := expander.Expand(context.Background(), domain.Query{Text: "describe the acquisition terms"}, domain.CategoryGeneral, false)

	if len(variants) != 2 {
		t.Fatalf("expected duplicate and empty paraphrases dropped, got %+v", variants)
	}
	if variants[1].Text != "acquisition terms overview" {
		t.Fatalf("unexpected variant: %+v", variants[1])
	}
}
