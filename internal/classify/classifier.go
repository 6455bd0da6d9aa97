// Package classify files links into a source folder and a topic sub-folder
// using keyword scoring over static tables.
package classify

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// GeneralCategory is returned when nothing in the tables matches.
const GeneralCategory = "General"

// Scoring constants. Changing any of them changes classification outcomes.
const (
	titleWeight      = 5
	shortKeywordLen  = 3
	longKeywordLen   = 10
	shortMatchWeight = 3
	longMatchWeight  = 3
	matchWeight      = 2
	leadingWords     = 5
	leadingWordBoost = 100
	confidenceDivide = 10
	maxConfidence    = 100
	topCategoryCount = 3
)

// Input is the text a link is classified from. Tags are carried along for
// callers that have them; they do not contribute to the score.
type Input struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

// CategoryScore is one ranked alternative in a Result.
type CategoryScore struct {
	Category   string  `json:"category"`
	Score      int     `json:"score"`
	Confidence float64 `json:"confidence"`
}

// Result is the outcome of PredictCategory.
type Result struct {
	PredictedCategory string          `json:"predicted_category"`
	Confidence        float64         `json:"confidence"`
	TopCategories     []CategoryScore `json:"top_categories"`
}

type keyword struct {
	text   string
	weight int
	// set for short keywords, which only count on word boundaries
	wordRe *regexp.Regexp
}

func (k keyword) count(text string) int {
	if k.wordRe != nil {
		return len(k.wordRe.FindAllStringIndex(text, -1))
	}
	return strings.Count(text, k.text)
}

type category struct {
	name     string
	keywords []keyword
}

func (c category) score(text string) int {
	if text == "" {
		return 0
	}
	total := 0
	for _, kw := range c.keywords {
		if n := kw.count(text); n > 0 {
			total += n * kw.weight
		}
	}
	return total
}

func (c category) inAnyWord(words []string) bool {
	for _, kw := range c.keywords {
		for _, w := range words {
			if strings.Contains(w, kw.text) {
				return true
			}
		}
	}
	return false
}

type sourceRule struct {
	name     string
	patterns []string
}

// Classifier predicts categories, sources and folder placement for links.
// It is safe for concurrent use.
type Classifier struct {
	tables         *Tables
	categories     []category
	sourceRules    []sourceRule
	sourceKeywords []sourceRule
}

// New compiles the tables into a Classifier.
func New(tables *Tables) *Classifier {
	c := &Classifier{tables: tables}

	for _, tc := range tables.Categories {
		cat := category{name: tc.Name}
		for _, raw := range tc.Keywords {
			cat.keywords = append(cat.keywords, compileKeyword(raw))
		}
		c.categories = append(c.categories, cat)
	}
	for _, r := range tables.SourceRules {
		c.sourceRules = append(c.sourceRules, sourceRule{name: r.Name, patterns: lowerAll(r.Patterns)})
	}
	for _, s := range tables.SourceKeywords {
		c.sourceKeywords = append(c.sourceKeywords, sourceRule{name: s.Name, patterns: lowerAll(s.Keywords)})
	}

	return c
}

func compileKeyword(raw string) keyword {
	lower := strings.ToLower(raw)
	n := utf8.RuneCountInString(raw)

	kw := keyword{text: lower}
	switch {
	case n <= shortKeywordLen:
		kw.weight = shortMatchWeight
		kw.wordRe = regexp.MustCompile(`\b` + regexp.QuoteMeta(lower) + `\b`)
	case n > longKeywordLen:
		kw.weight = longMatchWeight
	default:
		kw.weight = matchWeight
	}
	return kw
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// Tables returns the tables the classifier was built from.
func (c *Classifier) Tables() *Tables {
	return c.tables
}

// PredictCategory scores the title and description against every category
// and returns the best match with up to three ranked alternatives.
func (c *Classifier) PredictCategory(in Input) Result {
	title := strings.ToLower(in.Title)
	desc := strings.ToLower(in.Description)

	scores := make([]int, len(c.categories))
	for i, cat := range c.categories {
		scores[i] = cat.score(title)*titleWeight + cat.score(desc)
	}

	// A topic word near the start of the title outweighs everything else.
	words := strings.Fields(title)
	if len(words) > leadingWords {
		words = words[:leadingWords]
	}
	for i, cat := range c.categories {
		if cat.inAnyWord(words) {
			scores[i] += leadingWordBoost
		}
	}

	best, maxScore := -1, 0
	for i, s := range scores {
		if s > maxScore {
			best, maxScore = i, s
		}
	}

	res := Result{PredictedCategory: GeneralCategory}
	if best >= 0 {
		res.PredictedCategory = c.categories[best].name
		res.Confidence = confidence(maxScore)
	}
	res.TopCategories = c.rank(scores, maxScore)
	return res
}

func confidence(score int) float64 {
	if score <= 0 {
		return 0
	}
	conf := float64(score) / confidenceDivide * 100
	if conf > maxConfidence {
		return maxConfidence
	}
	return conf
}

func (c *Classifier) rank(scores []int, maxScore int) []CategoryScore {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	n := topCategoryCount
	if len(order) < n {
		n = len(order)
	}
	top := make([]CategoryScore, 0, n)
	for _, i := range order[:n] {
		cs := CategoryScore{Category: c.categories[i].name, Score: scores[i]}
		if maxScore > 0 {
			cs.Confidence = float64(scores[i]) / float64(maxScore) * 100
		}
		top = append(top, cs)
	}
	return top
}
