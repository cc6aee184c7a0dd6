// Package nlp turns raw chat text into a structured intent: a known command,
// an expense candidate, or unknown. All functions are pure and safe for
// concurrent use; the pattern tables are compiled once at package init.
package nlp

import (
	"regexp"
	"strconv"
	"strings"
)

// Amounts must stay inside the open interval (0, MaxAmount) to be accepted.
const MaxAmount = 1_000_000

// DefaultDescription replaces a description that ends up empty after
// normalization.
const DefaultDescription = "Gasto"

// Kind is the top-level classification of a message.
type Kind string

const (
	KindCommand Kind = "command"
	KindExpense Kind = "expense"
	KindUnknown Kind = "unknown"
)

// Result is the outcome of classifying one message.
type Result struct {
	Kind        Kind
	Command     Command
	Amount      float64
	HasAmount   bool
	Description string
	Raw         string
}

// Classify runs command recognition first, then the expense heuristic.
// Anything else degrades to KindUnknown; classification never fails.
func Classify(text string) Result {
	if cmd, amount, ok := identifyCommand(text); ok {
		res := Result{Kind: KindCommand, Command: cmd, Raw: text}
		if amount != nil {
			res.Amount = *amount
			res.HasAmount = true
		}
		return res
	}

	if looksLikeExpense(text) {
		if amount, token, ok := extractAmountToken(text); ok && ValidAmount(amount) {
			return Result{
				Kind:        KindExpense,
				Amount:      amount,
				HasAmount:   true,
				Description: extractDescription(text, token),
				Raw:         text,
			}
		}
	}

	return Result{Kind: KindUnknown, Raw: text}
}

// ExtractAmount tries every money pattern in priority order and returns the
// first captured amount, with comma normalized to a decimal point.
func ExtractAmount(text string) (float64, bool) {
	amount, _, ok := extractAmountToken(text)
	return amount, ok
}

// extractAmountToken also reports the raw captured token ("25,90") so that
// description normalization can strip exactly what matched.
func extractAmountToken(text string) (float64, string, bool) {
	for _, re := range moneyPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		amount, ok := parseDecimal(m[1])
		return amount, m[1], ok
	}
	return 0, "", false
}

// ValidAmount reports whether the amount is inside the accepted open range.
func ValidAmount(amount float64) bool {
	return amount > 0 && amount < MaxAmount
}

func identifyCommand(text string) (Command, *float64, bool) {
	trimmed := strings.TrimSpace(text)

	for _, cp := range commandPatterns {
		m := cp.re.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}

		if len(m) > 1 && m[1] != "" {
			if amount, ok := parseDecimal(m[1]); ok {
				return cp.cmd, &amount, true
			}
		}
		return cp.cmd, nil, true
	}

	return "", nil, false
}

// looksLikeExpense is a disjunction: an amount-bearing message is always a
// candidate, and a keyword-bearing message is a candidate even if the amount
// parse later fails.
func looksLikeExpense(text string) bool {
	if _, ok := ExtractAmount(text); ok {
		return true
	}

	lower := strings.ToLower(text)
	for _, kw := range expenseKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// extractDescription strips the expense verb, the matched amount token with
// any trailing unit word, currency markers, and a leading preposition.
func extractDescription(text, token string) string {
	desc := leadingVerbRe.ReplaceAllString(text, "")

	amountToken := strings.ReplaceAll(regexp.QuoteMeta(token), `\.`, `[.,]`)
	amountRe := regexp.MustCompile(`(?i)(?:r\$|rs)?\s*` + amountToken + `\s*(?:reais?|contos?|pilas?|pau|mangos)?`)
	desc = amountRe.ReplaceAllString(desc, "")

	desc = currencyMarkerRe.ReplaceAllString(desc, "")
	desc = leadingPrepositionRe.ReplaceAllString(desc, "")
	desc = strings.TrimSpace(desc)

	if desc == "" {
		return DefaultDescription
	}
	return desc
}

func parseDecimal(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
