package extract

import (
	"strings"
	"testing"
)

func TestStripWikitext_Links(t *testing.T) {
	got := StripWikitext("See [[WP:NPOV|the neutrality policy]] and [[WP:RS]].")
	want := "See the neutrality policy and WP:RS."
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestStripWikitext_TemplatesAndMarkup(t *testing.T) {
	in := "{{ping|Alice}} This is '''vital''' and ''urgent''.\n== Heading ==\nBody <small>note</small>."
	got := StripWikitext(in)

	if strings.Contains(got, "{{") || strings.Contains(got, "'''") || strings.Contains(got, "<small>") {
		t.Errorf("Markup survived stripping: %q", got)
	}
	if !strings.Contains(got, "This is vital and urgent.") {
		t.Errorf("Expected formatted text preserved, got %q", got)
	}
	if !strings.Contains(got, "Heading") || strings.Contains(got, "==") {
		t.Errorf("Heading text should survive without delimiters: %q", got)
	}
}

func TestStripWikitext_ExternalLinks(t *testing.T) {
	got := StripWikitext("Per [https://example.com/report the report] and [https://example.com/raw].")
	want := "Per the report and ."
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestStripWikitext_CollapsesBlankRuns(t *testing.T) {
	got := StripWikitext("One.\n\n\n\n\nTwo.")
	if got != "One.\n\nTwo." {
		t.Errorf("Expected collapsed blank lines, got %q", got)
	}
}

func TestStripWikitext_Empty(t *testing.T) {
	if got := StripWikitext("  \n "); got != "" {
		t.Errorf("Expected empty output, got %q", got)
	}
}
