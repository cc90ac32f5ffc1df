package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/policyref/policyref/internal/knowledge"
	"github.com/policyref/policyref/internal/model"
)

// Hit is one detected reference to a knowledge base entry
type Hit struct {
	Category model.Category
	Name     string // Canonical name (dedup key)
	Matched  string // The form found in the text
	Shortcut string // "WP:NPOV" style, empty when the full name matched
	Offset   int    // Byte offset of the match in the scanned text
}

// Matcher finds knowledge base references in discussion text
type Matcher struct {
	kb *knowledge.Base
}

// NewMatcher creates a matcher over the given knowledge base
func NewMatcher(kb *knowledge.Base) *Matcher {
	return &Matcher{kb: kb}
}

var (
	shortcutToken = regexp.MustCompile(`(?i)\bWP:([A-Z0-9]+)\b`)
	linkShortcut  = regexp.MustCompile(`(?i)WP[:/]?([A-Z0-9]+)`)
)

// FindMentions scans text for references, applying the rules in precedence
// order: WP:-prefixed shortcuts, then exact canonical names, then a looser
// first-three-words match for essays only. The result holds one Hit per
// canonical name (first discovery wins); further occurrences are picked up
// later by the context builder. Never fails: empty or malformed input
// returns an empty slice.
func (m *Matcher) FindMentions(text string) []Hit {
	var hits []Hit
	found := make(map[string]bool) // canonical name -> already hit

	// Rule 1: WP:<shortcut> tokens
	for _, loc := range shortcutToken.FindAllStringSubmatchIndex(text, -1) {
		raw := text[loc[2]:loc[3]]
		entry, ok := m.kb.Lookup(raw)
		if !ok {
			continue // unknown or out-of-catalog shortcut: ignored silently
		}
		if found[entry.Name] {
			continue
		}
		found[entry.Name] = true
		hits = append(hits, Hit{
			Category: entry.Category,
			Name:     entry.Name,
			Matched:  text[loc[0]:loc[1]],
			Shortcut: "WP:" + strings.ToUpper(raw),
			Offset:   loc[0],
		})
	}

	// Rule 2: canonical names, whole-word, whitespace-flexible
	for _, cat := range model.Categories() {
		for _, entry := range m.kb.Entries(cat) {
			if found[entry.Name] {
				continue
			}
			re, err := namePattern(entry.Name)
			if err != nil {
				continue
			}
			if loc := re.FindStringIndex(text); loc != nil {
				found[entry.Name] = true
				hits = append(hits, Hit{
					Category: entry.Category,
					Name:     entry.Name,
					Matched:  text[loc[0]:loc[1]],
					Offset:   loc[0],
				})
			}
		}
	}

	// Rule 3: essays only, loose first-three-words match. Essay titles are
	// frequently paraphrased rather than quoted, so this trades precision
	// for recall and is a known source of false positives.
	for _, entry := range m.kb.Entries(model.CategoryEssay) {
		if found[entry.Name] {
			continue
		}
		words := strings.Fields(entry.Name)
		if len(words) < 3 {
			continue
		}
		re, err := loosePattern(strings.Join(words[:3], " "))
		if err != nil {
			continue
		}
		if loc := re.FindStringIndex(text); loc != nil {
			found[entry.Name] = true
			hits = append(hits, Hit{
				Category: entry.Category,
				Name:     entry.Name,
				Matched:  text[loc[0]:loc[1]],
				Offset:   loc[0],
			})
		}
	}

	return hits
}

// MatchLink resolves a project-namespace link target to a catalog hit.
// Handles both full URLs and /wiki/Wikipedia:... paths.
func (m *Matcher) MatchLink(href string) (Hit, bool) {
	const marker = "/wiki/Wikipedia:"
	idx := strings.Index(href, marker)
	if idx < 0 {
		return Hit{}, false
	}

	page := href[idx+len(marker):]
	if hash := strings.Index(page, "#"); hash >= 0 {
		page = page[:hash]
	}
	if unescaped, err := url.QueryUnescape(page); err == nil {
		page = unescaped
	}
	page = strings.ReplaceAll(page, "_", " ")

	// Exact or prefix match against canonical names
	pageLower := strings.ToLower(page)
	for _, cat := range model.Categories() {
		for _, entry := range m.kb.Entries(cat) {
			nameLower := strings.ToLower(entry.Name)
			if pageLower == nameLower || strings.Contains(pageLower, nameLower) {
				return Hit{Category: entry.Category, Name: entry.Name, Matched: page}, true
			}
		}
	}

	// The link may target a shortcut redirect page, either bare
	// (Wikipedia:NPOV) or WP-prefixed (Wikipedia:WP:NPOV)
	if !strings.ContainsAny(page, " /") {
		if entry, ok := m.kb.Lookup(page); ok {
			return Hit{
				Category: entry.Category,
				Name:     entry.Name,
				Matched:  page,
				Shortcut: "WP:" + strings.ToUpper(page),
			}, true
		}
	}
	if sub := linkShortcut.FindStringSubmatch(page); sub != nil {
		if entry, ok := m.kb.Lookup(sub[1]); ok {
			return Hit{
				Category: entry.Category,
				Name:     entry.Name,
				Matched:  page,
				Shortcut: "WP:" + strings.ToUpper(sub[1]),
			}, true
		}
	}

	return Hit{}, false
}

// namePattern builds a whole-word, case-insensitive pattern for a canonical
// name where internal spaces match any whitespace run. Word boundaries are
// only asserted next to word characters; names ending in punctuation
// (several essay titles do) would otherwise never match.
func namePattern(name string) (*regexp.Regexp, error) {
	body := strings.ReplaceAll(regexp.QuoteMeta(name), " ", `\s+`)

	expr := "(?i)"
	if startsWithWordChar(name) {
		expr += `\b`
	}
	expr += body
	if endsWithWordChar(name) {
		expr += `\b`
	}
	return regexp.Compile(expr)
}

// loosePattern builds a case-insensitive, whitespace-flexible pattern
// without word-boundary anchors.
func loosePattern(phrase string) (*regexp.Regexp, error) {
	body := strings.ReplaceAll(regexp.QuoteMeta(phrase), " ", `\s+`)
	return regexp.Compile("(?i)" + body)
}

func startsWithWordChar(s string) bool {
	if s == "" {
		return false
	}
	return isWordChar(s[0])
}

func endsWithWordChar(s string) bool {
	if s == "" {
		return false
	}
	return isWordChar(s[len(s)-1])
}

func isWordChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
