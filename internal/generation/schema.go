package generation

import "github.com/jmickel/wayfarer-api/internal/domain"

// Version tags persisted alongside a completed plan so stored results can
// be traced back to the generator and prompt wording that produced them.
const (
	GeneratorVersion = "v1"
	PromptVersion    = "v1"
)

// ItineraryPayload is the structured shape the generation backend is asked
// to target. The validate tags describe the required schema the orchestrator
// checks after recovery; a violation counts as a failed generation attempt.
type ItineraryPayload struct {
	Title      string      `json:"title"      validate:"required"`
	Summary    string      `json:"summary"`
	Highlights []string    `json:"highlights" validate:"dive,required"`
	Itinerary  []DaySchema `json:"itinerary"  validate:"dive"`
}

// DaySchema is a single itinerary day in the payload.
type DaySchema struct {
	Day        int      `json:"day"        validate:"gt=0"`
	Title      string   `json:"title"      validate:"required"`
	Activities []string `json:"activities"`
}

// Days converts the payload's itinerary entries to domain values.
func (p *ItineraryPayload) Days() []domain.ItineraryDay {
	days := make([]domain.ItineraryDay, 0, len(p.Itinerary))
	for _, d := range p.Itinerary {
		days = append(days, domain.ItineraryDay{
			Day:        d.Day,
			Title:      d.Title,
			Activities: d.Activities,
		})
	}
	return days
}
