package extract

import (
	"strings"
	"testing"
)

const talkPageHTML = `<div class="mw-parser-output">
<p>Intro text before any section.</p>
<h2><span class="mw-headline" id="First_topic">First topic</span></h2>
<p>Opening comment citing WP:NPOV.</p>
<h3><span class="mw-headline" id="Sub_thread">Sub thread</span></h3>
<p>A reply inside the sub thread.</p>
<h2 id="Second_topic">Second topic</h2>
<p>Another discussion entirely.</p>
</div>`

func TestLocateHTMLSection_ByHeadlineSpanID(t *testing.T) {
	sec, ok := LocateHTMLSection(talkPageHTML, "First_topic")
	if !ok {
		t.Fatal("expected section")
	}

	if sec.Rank != 2 {
		t.Errorf("expected rank 2, got %d", sec.Rank)
	}
	if sec.Title != "First topic" {
		t.Errorf("unexpected title: %q", sec.Title)
	}
	if !strings.Contains(sec.Content, "WP:NPOV") {
		t.Errorf("section must contain its body: %q", sec.Content)
	}
	// The h3 sub thread belongs to this section; the next h2 does not
	if !strings.Contains(sec.Content, "Sub thread") {
		t.Errorf("lower-rank subsection must be included: %q", sec.Content)
	}
	if strings.Contains(sec.Content, "Second topic") {
		t.Errorf("equal-rank sibling must be excluded: %q", sec.Content)
	}
}

func TestLocateHTMLSection_ByHeadingID(t *testing.T) {
	sec, ok := LocateHTMLSection(talkPageHTML, "Second_topic")
	if !ok {
		t.Fatal("expected section")
	}
	if !strings.Contains(sec.Content, "Another discussion") {
		t.Errorf("unexpected content: %q", sec.Content)
	}
	if sec.End != len(talkPageHTML) {
		t.Errorf("last section must run to end of document, End=%d", sec.End)
	}
}

func TestLocateHTMLSection_Subsection(t *testing.T) {
	sec, ok := LocateHTMLSection(talkPageHTML, "Sub_thread")
	if !ok {
		t.Fatal("expected section")
	}
	if sec.Rank != 3 {
		t.Errorf("expected rank 3, got %d", sec.Rank)
	}
	if !strings.Contains(sec.Content, "A reply inside") {
		t.Errorf("unexpected content: %q", sec.Content)
	}
	// Bounded by the next h2, which outranks the h3
	if strings.Contains(sec.Content, "Second topic") {
		t.Errorf("higher-rank boundary not honored: %q", sec.Content)
	}
}

func TestLocateHTMLSection_SliceWithinBounds(t *testing.T) {
	for _, anchor := range []string{"First_topic", "Sub_thread", "Second_topic"} {
		sec, ok := LocateHTMLSection(talkPageHTML, anchor)
		if !ok {
			t.Fatalf("anchor %q: expected section", anchor)
		}
		if sec.Start < 0 || sec.End > len(talkPageHTML) || sec.Start >= sec.End {
			t.Errorf("anchor %q: bad bounds [%d, %d)", anchor, sec.Start, sec.End)
		}
		if sec.Content != talkPageHTML[sec.Start:sec.End] {
			t.Errorf("anchor %q: content does not equal the document slice", anchor)
		}
	}
}

func TestLocateHTMLSection_NotFound(t *testing.T) {
	if _, ok := LocateHTMLSection(talkPageHTML, "No_such_anchor"); ok {
		t.Error("expected miss for absent anchor")
	}
	if _, ok := LocateHTMLSection(talkPageHTML, ""); ok {
		t.Error("expected miss for empty anchor")
	}
}

const talkPageWikitext = `Some lead text.

== First topic ==
Opening comment citing [[WP:NPOV]].

=== Sub thread ===
A reply inside the sub thread.

==Second topic==
Another discussion entirely.
`

func TestLocateWikitextSection_Basic(t *testing.T) {
	sec, ok := LocateWikitextSection(talkPageWikitext, "First_topic")
	if !ok {
		t.Fatal("expected section")
	}

	if sec.Rank != 2 {
		t.Errorf("expected rank 2, got %d", sec.Rank)
	}
	if !strings.Contains(sec.Content, "WP:NPOV") {
		t.Errorf("unexpected content: %q", sec.Content)
	}
	if !strings.Contains(sec.Content, "Sub thread") {
		t.Errorf("deeper heading must be included: %q", sec.Content)
	}
	if strings.Contains(sec.Content, "Second topic") {
		t.Errorf("equal-rank boundary not honored: %q", sec.Content)
	}
}

func TestLocateWikitextSection_SpacelessHeadingDelimiters(t *testing.T) {
	// ==Second topic== carries no spaces inside the delimiters
	sec, ok := LocateWikitextSection(talkPageWikitext, "Second topic")
	if !ok {
		t.Fatal("expected section")
	}
	if !strings.Contains(sec.Content, "Another discussion") {
		t.Errorf("unexpected content: %q", sec.Content)
	}
}

func TestLocateWikitextSection_SubthreadBoundedByHigherRank(t *testing.T) {
	sec, ok := LocateWikitextSection(talkPageWikitext, "Sub thread")
	if !ok {
		t.Fatal("expected section")
	}
	if sec.Rank != 3 {
		t.Errorf("expected rank 3, got %d", sec.Rank)
	}
	if strings.Contains(sec.Content, "Second topic") {
		t.Errorf("rank-2 boundary not honored: %q", sec.Content)
	}
}

func TestLocateWikitextSection_NotFound(t *testing.T) {
	if _, ok := LocateWikitextSection(talkPageWikitext, "Missing section"); ok {
		t.Error("expected miss for absent heading")
	}
}
