package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const githubDefaultTitle = "GitHub Repository"

type gitHub struct{}

func (gitHub) Name() string {
	return "github"
}

func (gitHub) Matches(lowerURL string) bool {
	return strings.Contains(lowerURL, "github.com")
}

func (gitHub) Extract(page *Page, md *Metadata) {
	doc := page.Doc

	md.Title = firstNonEmpty(
		metaContent(doc, `meta[property="og:title"]`),
		titleTag(doc),
		githubDefaultTitle,
	)
	md.Description = metaContent(doc, `meta[property="og:description"]`)
	md.Thumbnail = metaContent(doc, `meta[property="og:image"]`)
	md.Text = md.Description

	// Older markup tags topics with data-octo-click, newer with .topic-tag.
	seen := make(map[string]bool)
	topics := []string{}
	doc.Find(`[data-octo-click="topic"], a.topic-tag`).Each(func(_ int, s *goquery.Selection) {
		topic := strings.TrimSpace(s.Text())
		if topic == "" || seen[topic] {
			return
		}
		seen[topic] = true
		topics = append(topics, topic)
	})
	md.Tags = topics
}
