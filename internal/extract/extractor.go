package extract

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/policyref/policyref/internal/knowledge"
	"github.com/policyref/policyref/internal/model"
)

// Extractor combines the section locator, term matcher, and context
// builder into the full reference-extraction pipeline.
type Extractor struct {
	kb      *knowledge.Base
	matcher *Matcher
	window  Window
}

// NewExtractor creates an extractor over the given knowledge base
func NewExtractor(kb *knowledge.Base, window Window) *Extractor {
	return &Extractor{
		kb:      kb,
		matcher: NewMatcher(kb),
		window:  window,
	}
}

// Input carries one located discussion section in both forms. HTML may be
// empty when only plain text is available; the link detection path is
// skipped in that case.
type Input struct {
	HTML string
	Text string
}

// Result is the categorized, contextualized output for one discussion
type Result struct {
	Policies    []model.Mention
	Guidelines  []model.Mention
	Essays      []model.Mention
	SectionHTML string // Display HTML with mention spans annotated
}

// Analyze locates the anchored section inside a raw document (rendered
// HTML or wikitext, detected by shape) and extracts references from it.
// An absent anchor falls back to the whole document; the second return
// reports whether the section was actually found.
func (e *Extractor) Analyze(doc, anchor string) (*Result, bool) {
	content := doc
	found := false

	if looksLikeHTML(doc) {
		if sec, ok := LocateHTMLSection(doc, anchor); ok {
			content = sec.Content
			found = true
		}
		return e.Extract(Input{HTML: content, Text: ExtractText(content)}), found
	}

	if sec, ok := LocateWikitextSection(doc, anchor); ok {
		content = sec.Content
		found = true
	}
	return e.Extract(Input{Text: StripWikitext(content)}), found
}

// Extract runs mention detection over both the link path (HTML anchors
// pointing into the project namespace) and the text path, unions them by
// canonical name, and attaches deduplicated context windows.
func (e *Extractor) Extract(in Input) *Result {
	hits := e.linkHits(in.HTML)

	present := make(map[string]bool, len(hits))
	for _, h := range hits {
		present[h.Name] = true
	}
	for _, h := range e.matcher.FindMentions(in.Text) {
		if present[h.Name] {
			continue
		}
		present[h.Name] = true
		hits = append(hits, h)
	}

	sentences := Segment(in.Text)

	result := &Result{}
	for _, h := range hits {
		mention := e.buildMention(h, sentences)
		switch h.Category {
		case model.CategoryPolicy:
			result.Policies = append(result.Policies, mention)
		case model.CategoryGuideline:
			result.Guidelines = append(result.Guidelines, mention)
		case model.CategoryEssay:
			result.Essays = append(result.Essays, mention)
		}
	}

	// Highlight ids number mentions in category order so display code
	// can reconstruct them from the per-category lists
	var all []model.Mention
	all = append(all, result.Policies...)
	all = append(all, result.Guidelines...)
	all = append(all, result.Essays...)
	result.SectionHTML = AnnotateHTML(in.HTML, all)
	return result
}

// buildMention assembles one mention with all of its contexts: shortcut
// occurrences first, then full-name occurrences, deduplicated by raw span.
func (e *Extractor) buildMention(h Hit, sentences []string) model.Mention {
	var contexts []model.Context
	if h.Shortcut != "" {
		contexts = BuildContexts(sentences, h.Shortcut, e.window)
	}
	contexts = MergeContexts(contexts, BuildContexts(sentences, h.Name, e.window))

	return model.Mention{
		Category: h.Category,
		Name:     h.Name,
		Shortcut: h.Shortcut,
		URL:      knowledge.PageURL(h.Name),
		Contexts: contexts,
	}
}

// linkHits scans anchor elements for project-namespace targets
func (e *Extractor) linkHits(htmlStr string) []Hit {
	if htmlStr == "" {
		return nil
	}
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return nil
	}

	var hits []Hit
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			for _, a := range n.Attr {
				if a.Key != "href" {
					continue
				}
				if h, ok := e.matcher.MatchLink(a.Val); ok && !seen[h.Name] {
					seen[h.Name] = true
					hits = append(hits, h)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return hits
}

// ExtractText collects visible text from HTML, skipping script and
// style subtrees.
func ExtractText(htmlStr string) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return htmlStr
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Iframe:
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(buf.String())
}

// AnnotateHTML wraps the first occurrence of each mention's shortcut in
// an identifiable span so a UI can scroll to it. Best-effort: a mention
// that cannot be annotated is skipped without affecting the others, and
// unparseable input is returned unchanged.
func AnnotateHTML(src string, mentions []model.Mention) string {
	if src == "" {
		return src
	}
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return src
	}

	for i, m := range mentions {
		if m.Shortcut == "" {
			continue
		}
		annotateFirst(doc, m.Shortcut, fmt.Sprintf("highlight-%d", i))
	}

	body := findBody(doc)
	if body == nil {
		return src
	}
	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return src
		}
	}
	return buf.String()
}

// annotateFirst splits the first text node containing term and wraps the
// matched span. Returns false when the term appears in no text node.
func annotateFirst(root *html.Node, term, id string) bool {
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.TextNode {
			idx := strings.Index(n.Data, term)
			if idx < 0 {
				return false
			}

			parent := n.Parent
			if parent == nil {
				return false
			}

			span := &html.Node{
				Type:     html.ElementNode,
				DataAtom: atom.Span,
				Data:     "span",
				Attr: []html.Attribute{
					{Key: "id", Val: id},
					{Key: "class", Val: "policy-mention"},
				},
			}
			span.AppendChild(&html.Node{Type: html.TextNode, Data: term})

			if before := n.Data[:idx]; before != "" {
				parent.InsertBefore(&html.Node{Type: html.TextNode, Data: before}, n)
			}
			parent.InsertBefore(span, n)
			if after := n.Data[idx+len(term):]; after != "" {
				parent.InsertBefore(&html.Node{Type: html.TextNode, Data: after}, n)
			}
			parent.RemoveChild(n)
			return true
		}

		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style:
				return false
			}
		}

		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			if walk(c) {
				return true
			}
			c = next
		}
		return false
	}
	return walk(root)
}

func findBody(doc *html.Node) *html.Node {
	var body *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return body
}

// looksLikeHTML distinguishes rendered markup from wikitext by shape
func looksLikeHTML(doc string) bool {
	trimmed := strings.TrimSpace(doc)
	return strings.HasPrefix(trimmed, "<") || strings.Contains(trimmed, "</")
}
