package storage

import (
	"strings"
	"unicode/utf8"
)

// keywordStopwords are tokens too generic to become rule patterns.
var keywordStopwords = map[string]struct{}{
	"app":  {},
	"com":  {},
	"co":   {},
	"ltd":  {},
	"inc":  {},
	"corp": {},
	"the":  {},
	"and":  {},
	"or":   {},
}

// isKeywordDelimiter covers both half-width and full-width separators seen
// in Japanese card statements.
func isKeywordDelimiter(r rune) bool {
	switch r {
	case ' ', '\t', '　', '・', '-', '_', '(', ')', '（', '）', '*', '＊':
		return true
	}
	return false
}

// ExtractKeywords splits a merchant name into candidate rule patterns:
// tokens of at least 3 runes that are not stopwords.
func ExtractKeywords(merchant string) []string {
	words := strings.FieldsFunc(merchant, isKeywordDelimiter)

	var keywords []string
	for _, word := range words {
		word = strings.TrimSpace(word)
		if utf8.RuneCountInString(word) < 3 {
			continue
		}
		if _, stop := keywordStopwords[strings.ToLower(word)]; stop {
			continue
		}
		keywords = append(keywords, word)
	}

	return keywords
}
