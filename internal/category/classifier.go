// Package category assigns a category to an expense description by scoring
// keyword matches against an injected category table.
package category

import (
	"strings"
	"unicode"

	"github.com/devaqn/financeira-bot/internal/domain"
)

// Keyword match scores. An exact full-string match short-circuits the rest of
// that category's keywords; boundary and substring matches accumulate.
const (
	scoreExact     = 100
	scoreWord      = 50
	scoreSubstring = 10
)

// Classify returns the id of the best-scoring category for the description.
// Reserved categories are never scored. Ties go to the first-declared
// category; when nothing scores, the fallback category is returned.
func Classify(description string, categories []domain.Category) int64 {
	text := strings.ToLower(strings.TrimSpace(description))

	bestID := int64(0)
	bestScore := 0

	for _, cat := range categories {
		if cat.Reserved() {
			continue
		}

		score := scoreCategory(text, cat.Keywords)
		if score > bestScore {
			bestScore = score
			bestID = cat.ID
		}
	}

	if bestScore > 0 {
		return bestID
	}
	return fallbackID(categories)
}

func scoreCategory(text string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		clean := strings.ToLower(strings.TrimSpace(kw))
		if clean == "" {
			continue
		}

		if text == clean {
			score += scoreExact
			break
		}

		switch {
		case containsWord(text, clean):
			score += scoreWord
		case strings.Contains(text, clean):
			score += scoreSubstring
		}
	}
	return score
}

// containsWord reports whether kw occurs in text delimited by non-word runes.
func containsWord(text, kw string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], kw)
		if idx < 0 {
			return false
		}
		idx += start

		if boundaryBefore(text, idx) && boundaryAfter(text, idx+len(kw)) {
			return true
		}
		start = idx + len(kw)
	}
}

func boundaryBefore(text string, idx int) bool {
	if idx == 0 {
		return true
	}
	runes := []rune(text[:idx])
	return !isWordRune(runes[len(runes)-1])
}

func boundaryAfter(text string, idx int) bool {
	if idx >= len(text) {
		return true
	}
	runes := []rune(text[idx:])
	return !isWordRune(runes[0])
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// fallbackID prefers the reserved fallback category, then the last declared
// one. Zero means the table was empty.
func fallbackID(categories []domain.Category) int64 {
	for _, cat := range categories {
		if cat.Name == domain.CategoryFallback {
			return cat.ID
		}
	}
	if len(categories) > 0 {
		return categories[len(categories)-1].ID
	}
	return 0
}
