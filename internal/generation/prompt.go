package generation

import (
	"fmt"
	"strings"

	"github.com/jmickel/wayfarer-api/internal/domain"
)

// BuildPrompt renders the generation prompt for the given plan parameters.
// The exact text doubles as the memoization key for the response cache, so
// identical parameter tuples always produce identical prompts.
func BuildPrompt(params domain.PlanParams) string {
	var b strings.Builder

	b.WriteString("You are a travel planning assistant. Generate a travel itinerary.\n\n")
	b.WriteString("Return ONLY a JSON object with this structure:\n")
	b.WriteString(`{
  "title": "Trip title",
  "summary": "Brief summary",
  "highlights": ["h1", "h2", "h3", "h4", "h5"],
  "itinerary": [
    {"day": 1, "title": "Day 1", "activities": ["a1", "a2", "a3"]}
  ]
}`)
	b.WriteString("\n\nRequirements:\n")
	fmt.Fprintf(&b, "- Exactly %d days\n", params.Days)
	fmt.Fprintf(&b, "- Destination: %s\n", params.Destination)
	fmt.Fprintf(&b, "- Budget: %s\n", params.Budget)
	fmt.Fprintf(&b, "- Travelers: %s\n", params.TravelerType)
	b.WriteString("- 3 activities per day\n")
	b.WriteString("- Plain text only, no markdown")

	return b.String()
}
