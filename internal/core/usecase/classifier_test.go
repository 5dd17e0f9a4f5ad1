package usecase

import (
	"testing"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
)

func TestClassifyCategories(t *testing.T) {
	stats := domain.CorpusStats{Documents: 2, Entities: 302}

	cases := []struct {
		text     string
		category domain.QueryCategory
		strategy domain.RoutingStrategy
	}{
		{"Hi", domain.CategoryGreeting, domain.RouteDirectReply},
		{"hello there", domain.CategoryGreeting, domain.RouteDirectReply},
		{"Who are you?", domain.CategoryIdentity, domain.RouteDirectReply},
		{"thanks!", domain.CategoryAcknowledgment, domain.RouteDirectReply},
		{"Goodbye", domain.CategoryFarewell, domain.RouteDirectReply},
		{"How does this work?", domain.CategoryMeta, domain.RouteDirectReply},
		{"What documents do you have?", domain.CategoryDocumentList, domain.RouteRetrieve},
		{"Who are the key people mentioned?", domain.CategoryEntity, domain.RouteRetrieve},
		{"When did the merger close?", domain.CategoryDate, domain.RouteRetrieve},
		{"Compare the two proposals", domain.CategoryComparison, domain.RouteRetrieve},
		{"Summarize the report", domain.CategorySummary, domain.RouteRetrieve},
		{"List the action items", domain.CategoryList, domain.RouteRetrieve},
		{"Why did revenue drop?", domain.CategoryAnalytical, domain.RouteRetrieve},
		{"What is the contract value?", domain.CategoryFactual, domain.RouteRetrieve},
		{"tell me more", domain.CategoryVague, domain.RouteClarify},
		{"quarterly revenue projections northwind", domain.CategoryGeneral, domain.RouteRetrieve},
	}

	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			category, strategy := Classify(tc.text, stats)
			if category != tc.category {
				t.Fatalf("category = %s, want %s", category, tc.category)
			}
			if strategy != tc.strategy {
				t.Fatalf("strategy = %s, want %s", strategy, tc.strategy)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	stats := domain.CorpusStats{Documents: 3, Entities: 10}
	for range 50 {
		category, strategy := Classify("Who are you?", stats)
		if category != domain.CategoryIdentity || strategy != domain.RouteDirectReply {
			t.Fatalf("classification changed: %s/%s", category, strategy)
		}
	}
}

func TestClassifyEmptyCorpusForcesDirectReply(t *testing.T) {
	empty := domain.CorpusStats{Documents: 0}

	for _, text := range []string{
		"What is the contract value?",
		"Summarize the report",
		"tell me more",
		"quarterly revenue projections",
	} {
		_, strategy := Classify(text, empty)
		if strategy != domain.RouteDirectReply {
			t.Fatalf("strategy for %q = %s, want %s", text, strategy, domain.RouteDirectReply)
		}
	}
}

func TestClassifyUnknownCorpusDoesNotForceDirectReply(t *testing.T) {
	unknown := domain.CorpusStats{Documents: -1}
	_, strategy := Classify("What is the contract value?", unknown)
	if strategy != domain.RouteRetrieve {
		t.Fatalf("strategy = %s, want %s", strategy, domain.RouteRetrieve)
	}
}

func TestIdentityBeatsEntityByOrder(t *testing.T) {
	stats := domain.CorpusStats{Documents: 1}

	category, _ := Classify("who are you", stats)
	if category != domain.CategoryIdentity {
		t.Fatalf("category = %s, want identity", category)
	}
	category, _ = Classify("who are the board members", stats)
	if category != domain.CategoryEntity {
		t.Fatalf("category = %s, want entity", category)
	}
}
