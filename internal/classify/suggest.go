package classify

import (
	"strings"
	"unicode/utf8"
)

const (
	minContentConfidence = 20
	minTitleLen          = 10
	suggestionFloor      = 50
)

// FolderSuggestion is where a new link should be filed.
type FolderSuggestion struct {
	MainFolder string  `json:"main_folder"`
	SubFolder  string  `json:"sub_folder"`
	Confidence float64 `json:"confidence"`
}

// urlTopic is checked in order against the lower-cased URL when the content
// is too thin to classify.
type urlTopic struct {
	topic   string
	match   []string
	exclude []string
}

var urlTopics = []urlTopic{
	{topic: "Java", match: []string{"java"}, exclude: []string{"javascript"}},
	{topic: "Python", match: []string{"python"}},
	{topic: "JavaScript", match: []string{"javascript", "js"}},
	{topic: "React", match: []string{"react"}},
	{topic: "JavaScript", match: []string{"node"}},
	{topic: "Programming Tools", match: []string{"compiler"}},
	{topic: "Development Tools", match: []string{"editor", "ide"}},
}

// SuggestHierarchicalFolder picks a main folder from the link's source and a
// sub-folder from its topic. Short or unconvincing titles fall back to topic
// hints in the URL itself.
func (c *Classifier) SuggestHierarchicalFolder(rawURL, title, description string) FolderSuggestion {
	prediction := c.PredictCategory(Input{Title: title, Description: description})

	sub := prediction.PredictedCategory
	if prediction.Confidence < minContentConfidence || utf8.RuneCountInString(title) < minTitleLen {
		sub = topicFromURL(rawURL)
	}

	conf := prediction.Confidence
	if conf < suggestionFloor {
		conf = suggestionFloor
	}

	return FolderSuggestion{
		MainFolder: c.DetectSource(rawURL, title, description),
		SubFolder:  sub,
		Confidence: conf,
	}
}

func topicFromURL(rawURL string) string {
	lower := strings.ToLower(rawURL)
	for _, t := range urlTopics {
		if containsAny(lower, t.match) && !containsAny(lower, t.exclude) {
			return t.topic
		}
	}
	return GeneralCategory
}

// MatchFolders returns the names that look like the predicted category: the
// name contains the category or the category contains the name.
func MatchFolders(names []string, prediction Result) []string {
	predicted := strings.ToLower(prediction.PredictedCategory)
	var matches []string
	for _, name := range names {
		lower := strings.ToLower(name)
		if lower == "" {
			continue
		}
		if strings.Contains(lower, predicted) || strings.Contains(predicted, lower) {
			matches = append(matches, name)
		}
	}
	return matches
}
