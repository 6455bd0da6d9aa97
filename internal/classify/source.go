package classify

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// OtherSource is used when the URL cannot be parsed.
const OtherSource = "Other"

// DetectSource names the platform a link comes from. URL rules are checked
// first, then keywords anywhere in the URL, title or description, and finally
// the name is derived from the host.
func (c *Classifier) DetectSource(rawURL, title, description string) string {
	lowerURL := strings.ToLower(rawURL)
	for _, r := range c.sourceRules {
		if containsAny(lowerURL, r.patterns) {
			return r.name
		}
	}

	combined := strings.ToLower(rawURL + " " + title + " " + description)
	for _, s := range c.sourceKeywords {
		if containsAny(combined, s.patterns) {
			return s.name
		}
	}

	return sourceFromHost(rawURL)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func sourceFromHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return OtherSource
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	label, _, _ := strings.Cut(host, ".")
	if label == "" {
		return OtherSource
	}
	r, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(r)) + label[size:]
}
