// Package knowledge holds the static catalog of Wikipedia policies,
// guidelines, and essays together with their in-text shortcuts.
//
// The catalog is built once at startup and never mutated, so it is safe
// for unsynchronized concurrent reads across requests.
package knowledge

import (
	"strings"

	"github.com/policyref/policyref/internal/model"
)

// Entry is one catalog item
type Entry struct {
	Category  model.Category
	Name      string   // Canonical display name
	Shortcuts []string // Uppercase aliases that resolve to this entry
	URL       string   // Derived project-namespace URL
}

// Base is the immutable knowledge base
type Base struct {
	entries    map[model.Category][]Entry
	byName     map[string]Entry  // lowercased canonical name -> entry
	byShortcut map[string]string // SHORTCUT -> canonical name (first registration wins)
}

var catalog = map[model.Category][]string{
	model.CategoryPolicy: {
		"Neutral point of view",
		"No original research",
		"Verifiability",
		"Article titles",
		"Biographies of living persons",
		"Image use policy",
		"What Wikipedia is not",
		"Block evasion",
		"Civility",
		"Clean start",
		"Consensus",
		"Dispute resolution",
		"Edit warring",
		"Editing policy",
		"Harassment",
		"No personal attacks",
		"No legal threats",
		"Ownership of content",
		"Sockpuppetry",
		"Username policy",
		"Vandalism",
		"Deletion policy",
		"Speedy deletion",
		"Proposed deletion",
		"Proposed deletion (BLP)",
		"Revision deletion",
		"Oversight",
	},
	model.CategoryGuideline: {
		"Assume good faith",
		"Conflict of interest",
		"Disruptive editing",
		"Don't bite the newcomers",
		"Don't disrupt to make a point",
		"Etiquette",
		"Gaming the system",
		"Citing sources",
		"External links",
		"Reliable sources",
		"Fringe theories",
		"Naming conventions",
		"Non-free content",
		"Offensive material",
		"Article size",
		"Be bold",
		"Understandability",
		"Categories, lists, templates",
		"Categorization",
		"Disambiguation",
		"Manual of Style",
		"Notability",
		"Deletion process",
	},
	model.CategoryEssay: {
		"What no consensus really means",
		"One against many",
		"Getting your way at Wikipedia",
		"Lob a grenade and run away",
		"Always keep context in mind when arguing claims",
		"Academic Neutrality",
		"Avoid contemporary sources",
		"A POV that draws a source.",
		"Beyond the Neutral Point of View",
		"Civil POV pushing is POV pushing",
		"CIVIL POV Pushing Strategies",
		"Gendered category criterion",
		"Yes. We are biased.",
		"Don't act neutral",
		"Don't throw your POV up to the sky",
		"Systemic bias against Transformers",
		"Neutrality and consensus",
		"Neutrality of sources",
		"Neutral = source-oriented",
		"No. We are not biased.",
		"NPOV, a detailed breakdown",
		"Asymmetric controversy",
		"Crying MEDRS!",
		"Lede bombing",
		"The big mistake",
		"Writing neutrally for Wikipedia",
		"Prefer truth",
		"Splitting the difference",
		"Reliable sources for geopolitical adversaries",
		"Media, Politics, and Peace",
		"ChristianityAndNPOV",
		"Essjay neutrality",
		"Yes, you are a nerd.",
		"When interest compromises neutrality",
	},
}

// shortcutPair keeps shortcut registration ordered so collisions resolve
// deterministically (first registration wins).
type shortcutPair struct {
	shortcut string
	name     string
}

var shortcuts = []shortcutPair{
	// Policies
	{"NPOV", "Neutral point of view"},
	{"NOR", "No original research"},
	{"OR", "No original research"},
	{"V", "Verifiability"},
	{"VERIFY", "Verifiability"},
	{"VERIFIABLE", "Verifiability"},
	{"BLP", "Biographies of living persons"},
	{"NOT", "What Wikipedia is not"},
	{"NOTCENSORED", "What Wikipedia is not"},
	{"CENSORED", "What Wikipedia is not"},
	{"CIVIL", "Civility"},
	{"CIVILITY", "Civility"},
	{"CON", "Consensus"},
	{"CONSENSUS", "Consensus"},
	{"EW", "Edit warring"},
	{"EDITWAR", "Edit warring"},
	{"3RR", "Edit warring"},
	{"NPA", "No personal attacks"},
	{"PA", "No personal attacks"},
	{"SOCK", "Sockpuppetry"},
	{"SOCKPUPPET", "Sockpuppetry"},
	{"VAND", "Vandalism"},
	{"VANDAL", "Vandalism"},
	{"VANDALISM", "Vandalism"},

	// Guidelines
	{"AGF", "Assume good faith"},
	{"FAITH", "Assume good faith"},
	{"COI", "Conflict of interest"},
	{"CONFLICT", "Conflict of interest"},
	{"BITE", "Don't bite the newcomers"},
	{"POINT", "Don't disrupt to make a point"},
	{"GAME", "Gaming the system"},
	{"GAMING", "Gaming the system"},
	{"CITE", "Citing sources"},
	{"CITATION", "Citing sources"},
	{"EL", "External links"},
	{"RS", "Reliable sources"},
	{"RELIABLE", "Reliable sources"},
	{"SOURCE", "Reliable sources"},
	{"SOURCES", "Reliable sources"},
	{"FRINGE", "Fringe theories"},
	{"MOS", "Manual of Style"},
	{"STYLE", "Manual of Style"},
	{"N", "Notability"},
	{"NOTABLE", "Notability"},
	{"NOTABILITY", "Notability"},
	{"UNDUE", "Neutral point of view"}, // UNDUE weight is part of NPOV
	{"WEIGHT", "Neutral point of view"},
	{"DUE", "Neutral point of view"},
	{"BRD", "Be bold"},
	{"BOLD", "Be bold"},
	{"DISRUPTIVE", "Disruptive editing"},
	{"DISRUPT", "Disruptive editing"},

	// Essays. Some of these point at pages outside the catalog (IAR,
	// DEADLINE, COMMON); they resolve to no category and are never surfaced.
	{"IAR", "Ignore all rules"},
	{"DEADLINE", "There is no deadline"},
	{"COMMON", "Common sense"},
	{"1AM", "One against many"},
	{"GRENADE", "Lob a grenade and run away"},
	{"POVPUSH", "Civil POV pushing is POV pushing"},
	{"STICK", "Always keep context in mind when arguing claims"},
	{"BEANS", "Always keep context in mind when arguing claims"},
	{"TRUTH", "Prefer truth"},
	{"SPLIT", "Splitting the difference"},
}

// New builds the knowledge base from the static tables
func New() *Base {
	b := &Base{
		entries:    make(map[model.Category][]Entry),
		byName:     make(map[string]Entry),
		byShortcut: make(map[string]string),
	}

	for _, cat := range model.Categories() {
		for _, name := range catalog[cat] {
			entry := Entry{
				Category: cat,
				Name:     name,
				URL:      PageURL(name),
			}
			b.entries[cat] = append(b.entries[cat], entry)
			b.byName[strings.ToLower(name)] = entry
		}
	}

	for _, p := range shortcuts {
		sc := strings.ToUpper(p.shortcut)
		if _, taken := b.byShortcut[sc]; taken {
			continue // first registration wins
		}
		b.byShortcut[sc] = p.name
	}

	// Attach shortcuts to their entries for display. A shortcut that
	// lost its first-wins registration belongs to no entry.
	for _, p := range shortcuts {
		sc := strings.ToUpper(p.shortcut)
		if b.byShortcut[sc] != p.name {
			continue
		}
		key := strings.ToLower(p.name)
		entry, ok := b.byName[key]
		if !ok {
			continue
		}
		entry.Shortcuts = append(entry.Shortcuts, sc)
		b.byName[key] = entry
	}

	// The per-category slices were built before attachment; refresh
	// them so Entries sees the shortcuts too.
	for cat, list := range b.entries {
		for i := range list {
			list[i] = b.byName[strings.ToLower(list[i].Name)]
		}
		b.entries[cat] = list
	}

	return b
}

// Lookup resolves a shortcut (without the WP: prefix, any case) to its
// catalog entry. Shortcuts that point at pages outside the catalog
// return ok=false.
func (b *Base) Lookup(shortcut string) (Entry, bool) {
	name, ok := b.byShortcut[strings.ToUpper(shortcut)]
	if !ok {
		return Entry{}, false
	}
	entry, ok := b.byName[strings.ToLower(name)]
	return entry, ok
}

// Resolve finds a catalog entry by canonical name (case-insensitive)
func (b *Base) Resolve(name string) (Entry, bool) {
	entry, ok := b.byName[strings.ToLower(name)]
	return entry, ok
}

// Entries returns the catalog entries for a category in registration order
func (b *Base) Entries(cat model.Category) []Entry {
	return b.entries[cat]
}

// PageURL derives the project-namespace URL for a canonical name
func PageURL(name string) string {
	return "https://en.wikipedia.org/wiki/Wikipedia:" + strings.ReplaceAll(name, " ", "_")
}
