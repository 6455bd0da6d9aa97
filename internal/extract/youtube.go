package extract

import (
	"regexp"
	"strings"
)

var (
	ytTitleRe = regexp.MustCompile(`"title":"([^"]+)"`)

	// only title tags are trusted; descriptions mention too much
	techKeywords = []string{
		"react", "javascript", "python", "java", "node", "angular", "vue", "typescript",
		"css", "html", "docker", "kubernetes", "aws", "azure", "ai", "ml",
	}
)

type youTube struct{}

func (youTube) Name() string {
	return "youtube"
}

func (youTube) Matches(lowerURL string) bool {
	return strings.Contains(lowerURL, "youtube.com") || strings.Contains(lowerURL, "youtu.be")
}

func (youTube) Extract(page *Page, md *Metadata) {
	doc := page.Doc

	md.Title = firstNonEmpty(
		metaContent(doc, `meta[property="og:title"]`),
		metaContent(doc, `meta[name="title"]`),
		strings.TrimSpace(strings.Replace(titleTag(doc), " - YouTube", "", 1)),
	)

	// Consent walls and stripped pages leave the embedded player data.
	if len(md.Title) < 5 {
		if m := ytTitleRe.FindSubmatch(page.Raw); m != nil {
			t := strings.ReplaceAll(string(m[1]), `\u0026`, "&")
			md.Title = strings.ReplaceAll(t, `\"`, `"`)
		}
	}

	md.Description = firstNonEmpty(
		metaContent(doc, `meta[property="og:description"]`),
		metaContent(doc, `meta[name="description"]`),
	)
	md.Thumbnail = metaContent(doc, `meta[property="og:image"]`)
	md.Tags = titleTags(md.Title)
	md.Text = md.Description
}

func titleTags(title string) []string {
	lower := strings.ToLower(title)
	tags := []string{}
	for _, kw := range techKeywords {
		if strings.Contains(lower, kw) {
			tags = append(tags, kw)
		}
	}
	return tags
}
