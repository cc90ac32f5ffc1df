package extract

import (
	"regexp"
	"strings"
)

// abbreviationGuards protects known abbreviations from false sentence
// splits by swapping their terminal period for a sentinel before the
// split and restoring it after. The list is static; an abbreviation
// followed by a capitalized word is not disambiguated further.
var abbreviationGuards = [][2]string{
	{"Mr.", "Mr<DOT>"},
	{"Mrs.", "Mrs<DOT>"},
	{"Dr.", "Dr<DOT>"},
	{"vs.", "vs<DOT>"},
	{"e.g.", "eg<DOT>"},
	{"i.e.", "ie<DOT>"},
	{"etc.", "etc<DOT>"},
}

var sentenceBoundary = regexp.MustCompile(`[.!?]+\s+`)

// Segment splits text into sentences. Pure function: deterministic,
// no hidden state. Text without terminal punctuation yields one sentence.
func Segment(text string) []string {
	for _, g := range abbreviationGuards {
		text = strings.ReplaceAll(text, g[0], g[1])
	}

	parts := sentenceBoundary.Split(text, -1)

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ReplaceAll(p, "<DOT>", ".")
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}

	return sentences
}
