package extract

import (
	"strings"
	"testing"

	"github.com/policyref/policyref/internal/knowledge"
)

func newTestExtractor() *Extractor {
	return NewExtractor(knowledge.New(), WindowMedium)
}

func TestExtract_ShortcutAndNameCollapseToOneMention(t *testing.T) {
	e := newTestExtractor()

	in := Input{
		Text: "Please follow WP:NPOV here. The neutral point of view is not optional. Thanks.",
	}
	res := e.Extract(in)

	if len(res.Policies) != 1 {
		t.Fatalf("expected 1 policy mention, got %d", len(res.Policies))
	}
	m := res.Policies[0]
	if m.Name != "Neutral point of view" {
		t.Errorf("unexpected name: %q", m.Name)
	}
	if m.Shortcut != "WP:NPOV" {
		t.Errorf("expected the shortcut form to win: %q", m.Shortcut)
	}
	if m.URL != "https://en.wikipedia.org/wiki/Wikipedia:Neutral_point_of_view" {
		t.Errorf("unexpected URL: %q", m.URL)
	}
	// Shortcut hit and full-name hit land in different sentences: two
	// contexts. Both matching rules inside one window would collapse.
	if len(m.Contexts) < 1 {
		t.Fatal("expected contexts")
	}
	for _, c := range m.Contexts {
		if c.Raw == "" {
			t.Error("context with empty raw text")
		}
	}
}

func TestExtract_SameWindowDeduplicated(t *testing.T) {
	e := newTestExtractor()

	// Shortcut and full name in the same single sentence: the two search
	// terms produce the same raw window, which must collapse to one.
	in := Input{Text: "Per WP:NPOV the neutral point of view applies."}
	res := e.Extract(in)

	if len(res.Policies) != 1 {
		t.Fatalf("expected 1 mention, got %d", len(res.Policies))
	}
	if len(res.Policies[0].Contexts) != 1 {
		t.Errorf("expected 1 deduplicated context, got %d", len(res.Policies[0].Contexts))
	}
}

func TestExtract_MixedCategories(t *testing.T) {
	e := newTestExtractor()

	res := e.Extract(Input{Text: "Please review this per WP:NPOV and also check WP:RS before reverting."})

	if len(res.Policies) != 1 || res.Policies[0].Name != "Neutral point of view" {
		t.Errorf("unexpected policies: %+v", res.Policies)
	}
	if res.Policies[0].Shortcut != "WP:NPOV" {
		t.Errorf("unexpected policy shortcut: %q", res.Policies[0].Shortcut)
	}
	if len(res.Guidelines) != 1 || res.Guidelines[0].Name != "Reliable sources" {
		t.Errorf("unexpected guidelines: %+v", res.Guidelines)
	}
	if len(res.Essays) != 0 {
		t.Errorf("unexpected essays: %+v", res.Essays)
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	e := newTestExtractor()

	res := e.Extract(Input{})

	if len(res.Policies) != 0 || len(res.Guidelines) != 0 || len(res.Essays) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestExtract_LinkPathUnion(t *testing.T) {
	e := newTestExtractor()

	in := Input{
		HTML: `<div><p>See <a href="/wiki/Wikipedia:Verifiability">the policy</a>.</p></div>`,
		Text: "See the policy.",
	}
	res := e.Extract(in)

	if len(res.Policies) != 1 || res.Policies[0].Name != "Verifiability" {
		t.Fatalf("expected Verifiability from the link path, got %+v", res.Policies)
	}
}

func TestExtract_LinkAndTextPathsDeduplicate(t *testing.T) {
	e := newTestExtractor()

	in := Input{
		HTML: `<div><p>Check <a href="/wiki/Wikipedia:Reliable_sources">WP:RS</a> first.</p></div>`,
		Text: "Check WP:RS first.",
	}
	res := e.Extract(in)

	if len(res.Guidelines) != 1 {
		t.Fatalf("expected 1 guideline after union dedup, got %d", len(res.Guidelines))
	}
}

func TestAnalyze_HTMLSection(t *testing.T) {
	e := newTestExtractor()

	res, found := e.Analyze(talkPageHTML, "First_topic")

	if !found {
		t.Fatal("expected section to be located")
	}
	if len(res.Policies) != 1 || res.Policies[0].Name != "Neutral point of view" {
		t.Errorf("unexpected policies: %+v", res.Policies)
	}
}

func TestAnalyze_AbsentAnchorFallsBackToWholeDocument(t *testing.T) {
	e := newTestExtractor()

	res, found := e.Analyze(talkPageHTML, "No_such_anchor")

	if found {
		t.Error("expected section-not-found")
	}
	// Whole-document fallback still analyzes everything
	if len(res.Policies) != 1 {
		t.Errorf("expected fallback analysis to find the NPOV mention, got %+v", res.Policies)
	}
}

func TestAnalyze_Wikitext(t *testing.T) {
	e := newTestExtractor()

	res, found := e.Analyze(talkPageWikitext, "First_topic")

	if !found {
		t.Fatal("expected section to be located")
	}
	if len(res.Policies) != 1 || res.Policies[0].Shortcut != "WP:NPOV" {
		t.Errorf("unexpected policies: %+v", res.Policies)
	}
}

func TestExtractText_SkipsScripts(t *testing.T) {
	text := ExtractText(`<div><p>Visible.</p><script>var hidden = 1;</script></div>`)

	if !strings.Contains(text, "Visible.") {
		t.Errorf("expected visible text, got %q", text)
	}
	if strings.Contains(text, "hidden") {
		t.Errorf("script content leaked: %q", text)
	}
}

func TestAnnotateHTML_WrapsFirstOccurrence(t *testing.T) {
	e := newTestExtractor()

	in := Input{
		HTML: `<div><p>Per WP:NPOV this is fine. WP:NPOV again.</p></div>`,
		Text: "Per WP:NPOV this is fine. WP:NPOV again.",
	}
	res := e.Extract(in)

	if strings.Count(res.SectionHTML, `class="policy-mention"`) != 1 {
		t.Errorf("expected exactly one annotation span: %q", res.SectionHTML)
	}
	if !strings.Contains(res.SectionHTML, `id="highlight-0"`) {
		t.Errorf("expected highlight id: %q", res.SectionHTML)
	}
}

func TestAnnotateHTML_UnannotatableMentionSkipped(t *testing.T) {
	// The shortcut appears nowhere in the HTML; annotation must not
	// disturb the document or the other mentions.
	html := `<div><p>Body text with WP:RS only.</p></div>`
	e := newTestExtractor()

	res := e.Extract(Input{HTML: html, Text: "Body text with WP:RS only. Also WP:NPOV mentioned in text."})

	if !strings.Contains(res.SectionHTML, "Body text with") {
		t.Errorf("document content lost: %q", res.SectionHTML)
	}
	if strings.Count(res.SectionHTML, `class="policy-mention"`) != 1 {
		t.Errorf("expected one annotated span for WP:RS: %q", res.SectionHTML)
	}
}
