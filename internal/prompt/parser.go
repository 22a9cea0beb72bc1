package prompt

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jmickel/wayfarer-api/internal/domain"
)

// Hard cap on trip length; anything the duration pattern yields above this
// is clamped rather than rejected.
const maxDays = 30

// defaultDays is used when no duration pattern matches.
const defaultDays = 3

var (
	durationPattern = regexp.MustCompile(`(?i)(\d+)\s*(days?|nights?|weeks?)`)

	// Tried in order; the first pattern that yields a candidate longer than
	// two characters wins. The first is anchored on "<duration> in <place>",
	// the second is a looser phrase capture bounded by a terminator word.
	destinationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+\s*(?:days?|nights?|weeks?)\s+in\s+)([a-zA-Z\s]+?)(?:\s+for|\s+on|\s*$)`),
		regexp.MustCompile(`(?i)(?:plan\s+(?:a\s+)?(?:trip\s+to|visit)|(?:go\s+to|visit)\s+)?([a-zA-Z\s]+?)(?:\s+for|\s+in|\s+over|\s+within|\s+\d)`),
	}

	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// budgetVocabulary is scanned in order against the lowercased prompt; the
// first hit wins and is folded into one of the canonical budget values.
var budgetVocabulary = []string{
	"budget",
	"moderate",
	"mid-range",
	"luxury",
	"expensive",
	"cheap",
	"affordable",
}

// travelerVocabulary is scanned in order; first hit wins before the
// override pass in parseTravelerType runs.
var travelerVocabulary = []string{
	"solo",
	"couple",
	"family",
	"friends",
	"business",
	"adventure",
	"relaxation",
	"budget",
	"luxury",
}

// Parse extracts structured plan parameters from a free-text travel request.
// It is a total function: every field has a fall-through default, so Parse
// never fails regardless of input.
func Parse(text string) domain.PlanParams {
	lower := strings.ToLower(text)

	return domain.PlanParams{
		Destination:  parseDestination(text),
		Days:         parseDays(text),
		Budget:       parseBudget(lower),
		TravelerType: parseTravelerType(lower),
	}
}

// parseDays matches "<integer> day(s)|night(s)|week(s)" anywhere in the
// text. Weeks multiply by 7. Defaults to 3, clamps at 30.
func parseDays(text string) int {
	m := durationPattern.FindStringSubmatch(text)
	if m == nil {
		return defaultDays
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return defaultDays
	}

	if strings.HasPrefix(strings.ToLower(m[2]), "week") {
		n *= 7
	}

	if n > maxDays {
		n = maxDays
	}
	return n
}

func parseDestination(text string) string {
	destination := ""

	for _, pattern := range destinationPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		// The destination sits in the last capture group when the pattern
		// carries a duration prefix group, otherwise in the first.
		candidate := m[len(m)-1]
		if strings.TrimSpace(candidate) == "" {
			candidate = m[1]
		}

		destination = strings.TrimSpace(candidate)
		if len(destination) > 2 {
			break
		}
	}

	if destination == "" {
		destination = firstSignificantWords(text, 3)
	}

	destination = whitespaceRuns.ReplaceAllString(destination, " ")
	return strings.TrimSpace(destination)
}

// firstSignificantWords joins the first n words longer than two characters.
// Returns the "Unknown" sentinel when no such words exist.
func firstSignificantWords(text string, n int) string {
	var words []string
	for _, w := range strings.Fields(text) {
		if len(w) > 2 {
			words = append(words, w)
			if len(words) == n {
				break
			}
		}
	}

	if len(words) == 0 {
		return "Unknown"
	}
	return strings.Join(words, " ")
}

func parseBudget(lower string) string {
	for _, term := range budgetVocabulary {
		if !strings.Contains(lower, term) {
			continue
		}

		switch term {
		case "cheap", "budget", "affordable":
			return "budget"
		case "expensive", "luxury":
			return "luxury"
		default:
			return term
		}
	}
	return "moderate"
}

func parseTravelerType(lower string) string {
	travelerType := "friends"
	for _, term := range travelerVocabulary {
		if strings.Contains(lower, term) {
			travelerType = term
			break
		}
	}

	// Override pass so conversational phrasing ("honeymoon trip", "with the
	// kids") outranks the generic keyword scan. Order is significant.
	switch {
	case strings.Contains(lower, "couple") || strings.Contains(lower, "honeymoon"):
		travelerType = "couple"
	case strings.Contains(lower, "family") || strings.Contains(lower, "kids"):
		travelerType = "family"
	case strings.Contains(lower, "business") || strings.Contains(lower, "work"):
		travelerType = "business"
	}

	return travelerType
}
