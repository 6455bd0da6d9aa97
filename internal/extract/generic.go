package extract

import (
	"bytes"
	"strings"

	"github.com/go-shiori/go-readability"
)

const maxTextLen = 10000

// generic reads og: and standard meta tags, with readability filling in
// whatever the page does not declare.
type generic struct{}

func (generic) Name() string {
	return "generic"
}

func (generic) Matches(string) bool {
	return true
}

func (generic) Extract(page *Page, md *Metadata) {
	doc := page.Doc

	md.Title = firstNonEmpty(
		metaContent(doc, `meta[property="og:title"]`),
		metaContent(doc, `meta[name="title"]`),
		titleTag(doc),
	)
	md.Description = firstNonEmpty(
		metaContent(doc, `meta[property="og:description"]`),
		metaContent(doc, `meta[name="description"]`),
	)
	md.Thumbnail = metaContent(doc, `meta[property="og:image"]`)

	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(page.Raw), page.URL)
	if err != nil {
		md.Text = md.Description
		return
	}

	if md.Description == "" {
		md.Description = strings.TrimSpace(article.Excerpt)
	}
	if md.Thumbnail == "" {
		md.Thumbnail = article.Image
	}
	md.Author = strings.TrimSpace(article.Byline)

	text := Truncate(strings.TrimSpace(article.TextContent), maxTextLen)
	md.Text = firstNonEmpty(text, md.Description)
}
