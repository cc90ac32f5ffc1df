package model

import "time"

// Category classifies a knowledge base entry
type Category string

const (
	CategoryPolicy    Category = "policy"
	CategoryGuideline Category = "guideline"
	CategoryEssay     Category = "essay"
)

// Categories returns all categories in registration order
func Categories() []Category {
	return []Category{CategoryPolicy, CategoryGuideline, CategoryEssay}
}

// Context is one sentence window around a mention
type Context struct {
	Raw         string `json:"raw"`                   // Plain-text window
	Highlighted string `json:"highlighted"`           // Window with the matched span emphasized
	Sentence    int    `json:"sentence"`              // Index of the hit sentence (0-based)
}

// Mention aggregates every context in which one canonical name appears
type Mention struct {
	Category Category  `json:"category"`
	Name     string    `json:"name"`               // Canonical display name (dedup key)
	Shortcut string    `json:"shortcut,omitempty"` // e.g. "WP:NPOV"; empty if the full name matched
	URL      string    `json:"url"`
	Contexts []Context `json:"contexts,omitempty"`
}

// Analysis is the complete result for one discussion
// Built fresh per request, never persisted
type Analysis struct {
	Title        string    `json:"title"`                  // Page title (e.g. "Talk:Article")
	SourceURL    string    `json:"source_url"`
	Anchor       string    `json:"anchor,omitempty"`       // Section anchor from the URL fragment
	SectionFound bool      `json:"section_found"`          // False means whole-page fallback
	FetchedAt    time.Time `json:"fetched_at"`

	Policies   []Mention `json:"policies"`
	Guidelines []Mention `json:"guidelines"`
	Essays     []Mention `json:"essays"`

	SectionHTML string `json:"section_html"` // Display HTML with mention spans annotated

	LLM *LLMCommentary `json:"llm,omitempty"` // Optional generative commentary
}

// ByCategory returns the mention list for a category
func (a *Analysis) ByCategory(cat Category) []Mention {
	switch cat {
	case CategoryPolicy:
		return a.Policies
	case CategoryGuideline:
		return a.Guidelines
	case CategoryEssay:
		return a.Essays
	default:
		return nil
	}
}

// LLMCommentary contains optional free-text model output per category
// Non-deterministic and clearly separated from the extracted mentions
type LLMCommentary struct {
	Enabled    bool   `json:"enabled"`
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
	Policies   string `json:"policies,omitempty"`
	Guidelines string `json:"guidelines,omitempty"`
	Essays     string `json:"essays,omitempty"`
}
