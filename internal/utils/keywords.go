package utils

import "strings"

const keywordPrefixLen = 3

func isKeywordSep(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '@', '.', '_', '-':
		return true
	}
	return false
}

// BuildKeywords derives the denormalized search-keyword set for a user:
// lower-case the inputs, split on whitespace and @ . _ -, and keep each token
// together with its three-character prefix. Crude, but it gives prefix-ish
// matching without a search engine.
func BuildKeywords(parts ...string) []string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	pool := strings.ToLower(strings.Join(nonEmpty, " "))
	tokens := strings.FieldsFunc(pool, isKeywordSep)

	seen := make(map[string]struct{})
	keywords := make([]string, 0, len(tokens)*2)
	add := func(k string) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keywords = append(keywords, k)
	}

	for _, tok := range tokens {
		add(tok)
		if runes := []rune(tok); len(runes) > keywordPrefixLen-1 {
			add(string(runes[:keywordPrefixLen]))
		}
	}
	return keywords
}
