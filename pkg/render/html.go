package render

import "strings"

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#39;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#39;",
		"\n", "&#10;", "\r", "&#13;", "\t", "&#9;",
	)
)

func escapeHTML(s string) string { return textEscaper.Replace(s) }

// escapeAttr also encodes whitespace controls so values survive
// re-parsing unchanged.
func escapeAttr(s string) string { return attrEscaper.Replace(s) }

// Phrasing elements stay on their parent's line in pretty output.
var inlineElements = func() map[string]bool {
	m := make(map[string]bool)
	for _, tag := range strings.Fields(`a abbr b bdi bdo br button cite code
		data dfn em i kbd label mark q s samp small span strong sub sup time u
		var wbr`) {
		m[tag] = true
	}
	return m
}()

func isInlineElement(tag string) bool { return inlineElements[tag] }
