package rewrite

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Importer converts whole markdown documents to HTML for net-new article
// ingestion. Unlike the repair chain, it assumes the entire input is
// markdown; it is not safe to run on content that is already HTML.
type Importer struct {
	sanitizer *bluemonday.Policy
}

// NewImporter builds the importer with a sanitization policy covering the
// markup the converter emits. UGCPolicy is not used because it forces
// rel=nofollow onto links, clobbering the noopener/noreferrer attributes.
func NewImporter() *Importer {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "h2", "h3", "h4", "ul", "ol", "li", "strong", "em", "blockquote")
	p.AllowAttrs("href", "target", "rel").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireParseableURLs(true)
	return &Importer{sanitizer: p}
}

var (
	mdH3LineExpr  = regexp.MustCompile(`(?m)^###\s+(.+)$`)
	mdH2LineExpr  = regexp.MustCompile(`(?m)^##\s+(.+)$`)
	mdH1LineExpr  = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	mdBoldExpr    = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	mdItalicExpr  = regexp.MustCompile(`\*([^*\s][^*\n]*)\*`)
	mdImportLinks = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

// Convert renders a markdown document as sanitized HTML. Inline syntax is
// rewritten first via regex passes, then a line walk emits list and
// paragraph structure with an explicit list state machine.
func (im *Importer) Convert(md string) string {
	// Heading order matters: ### before ## before #. The storefront
	// reserves h1 for page titles, so top-level headings land on h2.
	html := mdH3LineExpr.ReplaceAllString(md, "<h3>$1</h3>")
	html = mdH2LineExpr.ReplaceAllString(html, "<h2>$1</h2>")
	html = mdH1LineExpr.ReplaceAllString(html, "<h2>$1</h2>")
	html = mdBoldExpr.ReplaceAllString(html, "<strong>$1</strong>")
	html = mdItalicExpr.ReplaceAllString(html, "<em>$1</em>")
	html = mdImportLinks.ReplaceAllStringFunc(html, func(match string) string {
		m := mdImportLinks.FindStringSubmatch(match)
		text := strings.TrimSpace(m[1])
		url := strings.TrimSpace(m[2])
		return `<a href="` + url + `" target="_blank" rel="noopener noreferrer">` + text + `</a>`
	})

	lines := strings.Split(html, "\n")
	out := make([]string, 0, len(lines))
	state := noList

	closeList := func() {
		switch state {
		case inUL:
			out = append(out, "</ul>")
		case inOL:
			out = append(out, "</ol>")
		}
		state = noList
	}

	for _, line := range lines {
		if m := bulletItemExpr.FindStringSubmatch(line); m != nil {
			if state == inOL {
				closeList()
			}
			if state != inUL {
				out = append(out, "<ul>")
				state = inUL
			}
			out = append(out, "<li>"+strings.TrimSpace(m[1])+"</li>")
			continue
		}
		if m := orderedItemExpr.FindStringSubmatch(line); m != nil {
			if state == inUL {
				closeList()
			}
			if state != inOL {
				out = append(out, "<ol>")
				state = inOL
			}
			out = append(out, "<li>"+strings.TrimSpace(m[1])+"</li>")
			continue
		}

		closeList()

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "<") {
			out = append(out, trimmed)
			continue
		}
		out = append(out, "<p>"+trimmed+"</p>")
	}
	closeList()

	return im.sanitizer.Sanitize(strings.Join(out, "\n"))
}
