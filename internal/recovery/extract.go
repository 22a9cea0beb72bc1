package recovery

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	titleField     = regexp.MustCompile(`"title"\s*:\s*"([^"]+)"`)
	summaryField   = regexp.MustCompile(`"summary"\s*:\s*"([^"]+)"`)
	highlightsSpan = regexp.MustCompile(`(?s)"highlights"\s*:\s*\[(.*?)\]`)
	quotedString   = regexp.MustCompile(`"([^"]+)"`)
	dayField       = regexp.MustCompile(`"day"\s*:\s*(\d+)`)
)

// extractFields is the last-resort stage: it pulls individual fields out of
// the text with regular expressions, ignoring JSON structure entirely. It
// always succeeds; missing fields are simply absent from the result and
// pick up defaults during normalization.
func extractFields(text string) (map[string]any, bool) {
	result := map[string]any{}

	if m := titleField.FindStringSubmatch(text); m != nil {
		result["title"] = m[1]
	}
	if m := summaryField.FindStringSubmatch(text); m != nil {
		result["summary"] = m[1]
	}

	if m := highlightsSpan.FindStringSubmatch(text); m != nil {
		highlights := []any{}
		for _, q := range quotedString.FindAllStringSubmatch(m[1], -1) {
			highlights = append(highlights, q[1])
		}
		result["highlights"] = highlights
	}

	// Day objects emit their number before their title, so the Nth day
	// pairs with the (N+1)th title match: title match zero is the top-level
	// plan title.
	days := dayField.FindAllStringSubmatch(text, -1)
	titles := titleField.FindAllStringSubmatch(text, -1)

	if len(days) > 0 {
		itinerary := make([]any, 0, len(days))
		for i, d := range days {
			n, err := strconv.Atoi(d[1])
			if err != nil {
				continue
			}

			title := fmt.Sprintf("Day %d", n)
			if i+1 < len(titles) {
				title = titles[i+1][1]
			}

			activities := make([]any, len(placeholderActivities))
			for j, a := range placeholderActivities {
				activities[j] = a
			}

			itinerary = append(itinerary, map[string]any{
				"day":        float64(n),
				"title":      title,
				"activities": activities,
			})
		}
		result["itinerary"] = itinerary
	}

	return result, true
}
