package extract

import (
	"strings"

	"github.com/policyref/policyref/internal/model"
)

// Window is the number of padding sentences on each side of a hit
type Window int

const (
	WindowMinimal Window = 0
	WindowMedium  Window = 1
	WindowLarge   Window = 2
)

// WindowFromString maps a configuration name to a window size.
// Unrecognized values fall back to medium.
func WindowFromString(s string) Window {
	switch strings.ToLower(s) {
	case "minimal":
		return WindowMinimal
	case "large":
		return WindowLarge
	default:
		return WindowMedium
	}
}

// BuildContexts returns one context per sentence containing term
// (case-insensitive), each padded by the window and clamped to the
// document bounds. The highlighted rendering wraps the first occurrence
// of the term within the window in <strong> tags.
func BuildContexts(sentences []string, term string, window Window) []model.Context {
	if term == "" {
		return nil
	}

	termLower := strings.ToLower(term)
	var contexts []model.Context

	for i, sentence := range sentences {
		if !strings.Contains(strings.ToLower(sentence), termLower) {
			continue
		}

		start := i - int(window)
		if start < 0 {
			start = 0
		}
		end := i + int(window) + 1
		if end > len(sentences) {
			end = len(sentences)
		}

		raw := strings.TrimSpace(strings.Join(sentences[start:end], " "))
		contexts = append(contexts, model.Context{
			Raw:         raw,
			Highlighted: highlightFirst(raw, term),
			Sentence:    i,
		})
	}

	return contexts
}

// MergeContexts appends contexts from more onto existing, dropping any
// whose raw text exactly equals one already present. A shortcut hit and a
// full-name hit landing in the same sentence span collapse to one entry.
func MergeContexts(existing, more []model.Context) []model.Context {
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		seen[c.Raw] = true
	}

	merged := existing
	for _, c := range more {
		if seen[c.Raw] {
			continue
		}
		seen[c.Raw] = true
		merged = append(merged, c)
	}

	return merged
}

// highlightFirst wraps the first case-insensitive occurrence of term
// in emphasis tags, preserving the original casing of the matched span.
func highlightFirst(text, term string) string {
	idx := strings.Index(strings.ToLower(text), strings.ToLower(term))
	if idx < 0 {
		return text
	}
	end := idx + len(term)
	return text[:idx] + "<strong>" + text[idx:end] + "</strong>" + text[end:]
}
