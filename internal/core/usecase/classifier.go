package usecase

import (
	"strings"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
)

// The classifier is an ordered rule table evaluated top-to-bottom. The first
// matching rule wins; table order is the sole tie-break. Conversational rules
// sit above meta rules, which sit above content rules, so "who are you" is
// identity while "who are the key people" falls through to entity.

const vagueMaxWords = 3

type classificationRule struct {
	category domain.QueryCategory
	match    func(normalized string) bool
}

var classificationRules = []classificationRule{
	{domain.CategoryIdentity, matchAnyPhrase(
		"who are you", "what are you", "what can you do", "what do you do",
		"your name", "introduce yourself", "who made you",
	)},
	{domain.CategoryAcknowledgment, matchExactOrPrefix(
		"thanks", "thank you", "thx", "ok", "okay", "got it", "great",
		"cool", "nice", "awesome", "perfect", "sounds good", "understood",
	)},
	{domain.CategoryFarewell, matchExactOrPrefix(
		"bye", "goodbye", "good night", "see you", "see ya", "later", "farewell",
	)},
	{domain.CategoryGreeting, matchExactOrPrefix(
		"hi", "hello", "hey", "yo", "greetings", "good morning",
		"good afternoon", "good evening", "whats up", "how are you",
	)},
	{domain.CategoryMeta, matchAnyPhrase(
		"how does this work", "how do i use", "what can i ask",
		"what is this system", "what kind of questions", "how were you built",
	)},
	{domain.CategoryDocumentList, matchAnyPhrase(
		"what documents", "which documents", "list documents",
		"list the documents", "what files", "which files",
		"documents do you have", "files do you have", "documents are available",
	)},
	{domain.CategoryEntity, matchAnyPhrase(
		"who are", "who is mentioned", "who was mentioned", "people mentioned",
		"key people", "organizations", "organisations", "companies mentioned",
		"named entities", "names mentioned", "persons mentioned",
	)},
	{domain.CategoryDate, func(normalized string) bool {
		return hasToken(normalized, "when") ||
			containsPhrase(normalized, "what date") ||
			containsPhrase(normalized, "timeline") ||
			strings.Contains(normalized, "chronolog")
	}},
	{domain.CategoryComparison, func(normalized string) bool {
		return hasToken(normalized, "compare") || hasToken(normalized, "versus") ||
			hasToken(normalized, "vs") ||
			containsPhrase(normalized, "difference between") ||
			containsPhrase(normalized, "compared to")
	}},
	{domain.CategorySummary, func(normalized string) bool {
		return phrasePrefix(normalized, "summarize") || phrasePrefix(normalized, "summarise") ||
			hasToken(normalized, "summary") || hasToken(normalized, "overview") ||
			containsPhrase(normalized, "main points") ||
			containsPhrase(normalized, "key takeaways")
	}},
	{domain.CategoryList, func(normalized string) bool {
		return phrasePrefix(normalized, "list") || phrasePrefix(normalized, "enumerate") ||
			phrasePrefix(normalized, "name all")
	}},
	{domain.CategoryAnalytical, func(normalized string) bool {
		return phrasePrefix(normalized, "why") ||
			containsPhrase(normalized, "how does") ||
			containsPhrase(normalized, "how did") ||
			phrasePrefix(normalized, "explain") ||
			strings.Contains(normalized, "analy") ||
			hasToken(normalized, "impact") ||
			strings.Contains(normalized, "implication")
	}},
	{domain.CategoryFactual, matchExactOrPrefix(
		"what is", "what are", "how many", "how much", "where",
		"who is", "who was", "define", "does", "did", "is", "are",
	)},
}

// Filler words that never count as content on their own.
var fillerTokens = map[string]struct{}{
	"tell": {}, "me": {}, "more": {}, "and": {}, "about": {}, "it": {},
	"them": {}, "that": {}, "this": {}, "a": {}, "an": {}, "the": {},
	"please": {}, "so": {}, "then": {}, "you": {}, "can": {}, "what": {},
	"else": {}, "again": {}, "go": {}, "on": {}, "continue": {}, "next": {},
}

// Classify maps query text and light corpus stats to a category and a routing
// strategy. Pure and deterministic: no I/O, no scoring, table order decides.
func Classify(text string, stats domain.CorpusStats) (domain.QueryCategory, domain.RoutingStrategy) {
	category := classifyText(text)
	return category, routeFor(category, stats)
}

func classifyText(text string) domain.QueryCategory {
	tokens := tokenizeLower(text)
	normalized := strings.Join(tokens, " ")
	if normalized == "" {
		return domain.CategoryVague
	}

	for _, rule := range classificationRules {
		if rule.match(normalized) {
			return rule.category
		}
	}

	if len(tokens) <= vagueMaxWords && !hasContentToken(tokens) {
		return domain.CategoryVague
	}
	return domain.CategoryGeneral
}

func routeFor(category domain.QueryCategory, stats domain.CorpusStats) domain.RoutingStrategy {
	switch category {
	case domain.CategoryGreeting, domain.CategoryIdentity, domain.CategoryAcknowledgment,
		domain.CategoryFarewell, domain.CategoryMeta:
		return domain.RouteDirectReply
	}
	// Nothing to search against: answer directly with the limitation.
	if stats.Documents == 0 {
		return domain.RouteDirectReply
	}
	if category == domain.CategoryVague {
		return domain.RouteClarify
	}
	return domain.RouteRetrieve
}

func hasContentToken(tokens []string) bool {
	for _, token := range tokens {
		if _, filler := fillerTokens[token]; !filler {
			return true
		}
	}
	return false
}

func matchAnyPhrase(phrases ...string) func(string) bool {
	return func(normalized string) bool {
		for _, phrase := range phrases {
			if containsPhrase(normalized, phrase) {
				return true
			}
		}
		return false
	}
}

func matchExactOrPrefix(phrases ...string) func(string) bool {
	return func(normalized string) bool {
		for _, phrase := range phrases {
			if phrasePrefix(normalized, phrase) {
				return true
			}
		}
		return false
	}
}

// phrasePrefix matches on whole-token boundaries so "hi" does not match "hidden".
func phrasePrefix(normalized, phrase string) bool {
	return normalized == phrase || strings.HasPrefix(normalized, phrase+" ")
}

func containsPhrase(normalized, phrase string) bool {
	if normalized == phrase {
		return true
	}
	return strings.HasPrefix(normalized, phrase+" ") ||
		strings.HasSuffix(normalized, " "+phrase) ||
		strings.Contains(normalized, " "+phrase+" ")
}

func hasToken(normalized, token string) bool {
	return containsPhrase(normalized, token)
}
