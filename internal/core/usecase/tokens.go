package usecase

import (
	"strings"
	"unicode"
)

// Lexical helpers shared by the classifier and the heuristic scorer.

func tokenizeLower(s string) []string {
	if s == "" {
		return nil
	}
	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

func tokenSet(s string) map[string]struct{} {
	tokens := tokenizeLower(s)
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}

func tokenOverlap(query, target map[string]struct{}) float64 {
	if len(query) == 0 || len(target) == 0 {
		return 0
	}
	matches := 0
	for token := range query {
		if _, ok := target[token]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(query))
}
