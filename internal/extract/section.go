package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Section is a contiguous [Start, End) slice of a source document owned
// by one heading. The end boundary is the start of the next heading of
// equal or higher rank, or end of document.
type Section struct {
	Anchor  string
	Title   string
	Rank    int // Heading level; lower number = higher in the outline
	Start   int
	End     int
	Content string
}

// htmlHeading is one heading element found while tokenizing
type htmlHeading struct {
	level    int
	id       string
	childIDs []string // ids on labeled spans inside the heading
	title    string
	start    int // byte offset of the opening tag in the source
}

// LocateHTMLSection finds the section owned by the heading whose id (or
// whose labeled child span's id) equals anchor. Returns ok=false when no
// heading matches; the caller is expected to fall back to the whole
// document rather than fail.
func LocateHTMLSection(doc, anchor string) (*Section, bool) {
	if anchor == "" {
		return nil, false
	}

	headings := scanHTMLHeadings(doc)

	matched := -1
	for i, h := range headings {
		if h.id == anchor {
			matched = i
			break
		}
		for _, cid := range h.childIDs {
			if cid == anchor {
				matched = i
				break
			}
		}
		if matched >= 0 {
			break
		}
	}
	if matched < 0 {
		return nil, false
	}

	target := headings[matched]
	end := len(doc)
	for _, h := range headings[matched+1:] {
		if h.level <= target.level {
			end = h.start
			break
		}
	}

	return &Section{
		Anchor:  anchor,
		Title:   strings.TrimSpace(target.title),
		Rank:    target.level,
		Start:   target.start,
		End:     end,
		Content: doc[target.start:end],
	}, true
}

// scanHTMLHeadings tokenizes the document and records every h1-h6 with
// its byte offset. Offsets are recovered by accumulating raw token
// lengths, so slices line up with the original source exactly.
func scanHTMLHeadings(doc string) []htmlHeading {
	z := html.NewTokenizer(strings.NewReader(doc))

	var headings []htmlHeading
	var cur *htmlHeading
	offset := 0

	for {
		tt := z.Next()
		tokStart := offset
		offset += len(z.Raw())

		switch tt {
		case html.ErrorToken:
			return headings

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			level := headingLevel(string(name))

			if level > 0 && cur == nil {
				h := htmlHeading{level: level, start: tokStart}
				if id, ok := tagAttr(z, hasAttr, "id"); ok {
					h.id = id
				}
				cur = &h
				continue
			}

			// Inside a heading: MediaWiki attaches the anchor to a
			// span.mw-headline child rather than the heading itself
			if cur != nil {
				if id, ok := tagAttr(z, hasAttr, "id"); ok && id != "" {
					cur.childIDs = append(cur.childIDs, id)
				}
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if cur != nil && headingLevel(string(name)) == cur.level {
				headings = append(headings, *cur)
				cur = nil
			}

		case html.TextToken:
			if cur != nil {
				cur.title += string(z.Text())
			}
		}
	}
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func tagAttr(z *html.Tokenizer, hasAttr bool, want string) (string, bool) {
	for hasAttr {
		key, val, more := z.TagAttr()
		if string(key) == want {
			return string(val), true
		}
		hasAttr = more
	}
	return "", false
}

// wikitext heading line: rank is encoded by the delimiter run length
var wikitextHeadingLine = regexp.MustCompile(`(?m)^(=+)([^=\n][^\n]*?)(=+)[ \t]*$`)

type wikitextHeading struct {
	level int
	title string
	start int
}

// LocateWikitextSection finds the section owned by the heading line whose
// title matches anchor (underscores and spaces are interchangeable, as in
// MediaWiki anchors). Returns ok=false when no heading matches.
func LocateWikitextSection(wikitext, anchor string) (*Section, bool) {
	if anchor == "" {
		return nil, false
	}

	headings := scanWikitextHeadings(wikitext)
	want := normalizeAnchor(anchor)

	matched := -1
	for i, h := range headings {
		if normalizeAnchor(h.title) == want {
			matched = i
			break
		}
	}
	if matched < 0 {
		return nil, false
	}

	target := headings[matched]
	end := len(wikitext)
	for _, h := range headings[matched+1:] {
		if h.level <= target.level {
			end = h.start
			break
		}
	}

	return &Section{
		Anchor:  anchor,
		Title:   target.title,
		Rank:    target.level,
		Start:   target.start,
		End:     end,
		Content: wikitext[target.start:end],
	}, true
}

func scanWikitextHeadings(wikitext string) []wikitextHeading {
	var headings []wikitextHeading
	for _, loc := range wikitextHeadingLine.FindAllStringSubmatchIndex(wikitext, -1) {
		openRun := loc[3] - loc[2]
		closeRun := loc[7] - loc[6]
		level := openRun
		if closeRun < openRun {
			level = closeRun
		}
		headings = append(headings, wikitextHeading{
			level: level,
			title: strings.TrimSpace(wikitext[loc[4]:loc[5]]),
			start: loc[0],
		})
	}
	return headings
}

func normalizeAnchor(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
}
