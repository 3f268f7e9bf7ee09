package normalize

import "strings"

// Rule associates a classification with the lower-case keywords that select it.
type Rule[T any] struct {
	Value    T
	Keywords []string
}

// Match returns the value of the first rule, in table order, having a keyword
// contained in text.
func Match[T any](rules []Rule[T], text string) (T, bool) {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if containsAny(lower, r.Keywords) {
			return r.Value, true
		}
	}
	var zero T
	return zero, false
}

// MatchAll returns the values of every rule having a keyword contained in text,
// in table order.
func MatchAll[T any](rules []Rule[T], text string) []T {
	lower := strings.ToLower(text)
	matched := make([]T, 0, len(rules))
	for _, r := range rules {
		if containsAny(lower, r.Keywords) {
			matched = append(matched, r.Value)
		}
	}
	return matched
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
