package server

import (
	"fmt"
	"html"
	"strings"

	"github.com/policyref/policyref/internal/model"
)

// emptyCategoryHTML is returned when a category has no mentions.
const emptyCategoryHTML = "No items explicitly mentioned in this discussion."

const shownContexts = 2

const snippetMaxChars = 200

// FormatMentions renders one category's mentions as an HTML fragment.
// idxOffset is the running highlight index of the first mention, so
// the data-highlight attributes line up with the span ids annotated
// into the discussion HTML.
func FormatMentions(mentions []model.Mention, idxOffset int) string {
	if len(mentions) == 0 {
		return emptyCategoryHTML
	}

	var b strings.Builder
	for i, m := range mentions {
		if m.Shortcut == "" {
			fmt.Fprintf(&b, `<div class="policy-item-wrapper"><a href="%s" target="_blank">%s</a></div>`,
				m.URL, html.EscapeString(m.Name))
			continue
		}

		highlightID := fmt.Sprintf("highlight-%d", idxOffset+i)
		fmt.Fprintf(&b, `<div class="policy-item-wrapper"><div class="policy-item" data-highlight="%s">`, highlightID)
		fmt.Fprintf(&b, `<a href="%s" target="_blank" onclick="event.stopPropagation()" class="policy-link">%s</a> `,
			m.URL, html.EscapeString(m.Shortcut))
		fmt.Fprintf(&b, `<span class="policy-name">(%s)</span>`, html.EscapeString(m.Name))
		if len(m.Contexts) > 0 {
			fmt.Fprintf(&b, ` <span class="mention-count">&#8226; %d mention(s)</span>`, len(m.Contexts))
		}
		b.WriteString(`</div>`)

		if len(m.Contexts) > 0 {
			b.WriteString(`<div class="context-snippets">`)
			for _, ctx := range m.Contexts[:min(shownContexts, len(m.Contexts))] {
				fmt.Fprintf(&b, `<div class="context-snippet">"%s"</div>`, html.EscapeString(truncateSnippet(ctx.Raw)))
			}
			if extra := len(m.Contexts) - shownContexts; extra > 0 {
				fmt.Fprintf(&b, `<div class="more-contexts">... and %d more</div>`, extra)
			}
			b.WriteString(`</div>`)
		}

		b.WriteString(`</div>`)
	}

	return b.String()
}

// truncateSnippet counts characters, not bytes, so multi-byte text is
// never cut mid-rune.
func truncateSnippet(s string) string {
	runes := []rune(s)
	if len(runes) <= snippetMaxChars {
		return s
	}
	return string(runes[:snippetMaxChars-3]) + "..."
}
