package prompt

import (
	"regexp"
	"strings"
)

// durationLeadPattern recognizes prompts that open with a duration phrase
// ("3 days in ...", "2 weeks to ..."); those are accepted without consulting
// the keyword vocabulary.
var durationLeadPattern = regexp.MustCompile(`(?i)^\d+\s*(days?|nights?|weeks?)\s+(in|at|to|for)\s+`)

// travelVocabulary is the fixed keyword list for the relevance gate.
var travelVocabulary = []string{
	"trip", "travel", "visit", "vacation", "holiday", "tour", "destination",
	"itinerary", "plan", "journey", "explore", "adventure", "fly", "flight",
	"hotel", "accommodation", "resort", "beach", "mountain", "city",
	"country", "abroad", "overseas", "cruise", "road trip", "backpacking",
}

// IsTravelRelated reports whether the text is plausibly a travel request.
// The classifier favors recall: a single vocabulary hit anywhere in the
// text suffices.
func IsTravelRelated(text string) bool {
	if durationLeadPattern.MatchString(text) {
		return true
	}

	lower := strings.ToLower(text)
	for _, term := range travelVocabulary {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
