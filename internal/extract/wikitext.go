package extract

import (
	"regexp"
	"strings"
)

var (
	wikiTemplate     = regexp.MustCompile(`\{\{[^}]+\}\}`)
	wikiPipedLink    = regexp.MustCompile(`\[\[(?:[^|\]]+)\|([^\]]+)\]\]`)
	wikiBareLink     = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	wikiExtLinkText  = regexp.MustCompile(`\[https?://[^\s\]]+\s+([^\]]+)\]`)
	wikiExtLinkBare  = regexp.MustCompile(`\[https?://[^\]]+\]`)
	wikiBold         = regexp.MustCompile(`'''([^']+)'''`)
	wikiItalic       = regexp.MustCompile(`''([^']+)''`)
	wikiHeadingMarks = regexp.MustCompile(`(?m)^=+\s*(.+?)\s*=+\s*$`)
	wikiHTMLTag      = regexp.MustCompile(`<[^>]+>`)
	wikiBlankRuns    = regexp.MustCompile(`\n{3,}`)
)

// StripWikitext derives plain text from wikitext for analysis purposes.
// Close enough for mention scanning, not a rendering of the markup.
func StripWikitext(wikitext string) string {
	text := wikitext

	text = wikiTemplate.ReplaceAllString(text, "")
	text = wikiPipedLink.ReplaceAllString(text, "$1")
	text = wikiBareLink.ReplaceAllString(text, "$1")
	text = wikiExtLinkText.ReplaceAllString(text, "$1")
	text = wikiExtLinkBare.ReplaceAllString(text, "")
	text = wikiBold.ReplaceAllString(text, "$1")
	text = wikiItalic.ReplaceAllString(text, "$1")
	text = wikiHeadingMarks.ReplaceAllString(text, "$1")
	text = wikiHTMLTag.ReplaceAllString(text, "")
	text = wikiBlankRuns.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
