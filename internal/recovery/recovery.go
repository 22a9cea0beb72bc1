package recovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmickel/wayfarer-api/internal/generation"
)

// ErrEmptyInput is returned when there is no text to recover from.
// This is the pipeline's only hard failure.
var ErrEmptyInput = errors.New("empty response text")

// placeholderActivities fill in itinerary days recovered without any
// extractable activity list.
var placeholderActivities = []string{
	"Explore destination",
	"Visit attractions",
	"Enjoy local cuisine",
}

// stage attempts to turn raw text into loosely-typed parsed structure.
// Stages are pure; ok reports whether the stage produced usable output.
type stage func(text string) (map[string]any, bool)

// stages are tried in order. Later stages are progressively more invasive:
// plain parse after cleanup, bracket slicing, structural repair, and
// finally field-level regex extraction which cannot fail.
var stages = []stage{
	parseNormalized,
	parseBracketSlice,
	parseRepaired,
	extractFields,
}

// Recover converts raw generated text into a validated itinerary payload.
// It returns a best-effort value for any non-empty input; an empty
// itinerary is a valid outcome (the orchestrator synthesizes days), not an
// error. Only empty input fails.
func Recover(raw string) (*generation.ItineraryPayload, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInput
	}

	text := normalizeText(raw)

	for _, s := range stages {
		if parsed, ok := s(text); ok {
			return normalizePayload(parsed), nil
		}
	}

	// Unreachable: extractFields always succeeds.
	return nil, fmt.Errorf("no recovery stage produced structure")
}

// parseNormalized attempts a strict parse of the cleaned text.
func parseNormalized(text string) (map[string]any, bool) {
	return strictParse(text)
}

// parseBracketSlice slices between the first "{" and the last "}" inclusive
// and attempts a strict parse on the slice.
func parseBracketSlice(text string) (map[string]any, bool) {
	slice, ok := bracketSlice(text)
	if !ok {
		return nil, false
	}
	return strictParse(slice)
}

// parseRepaired applies structural repairs to the sliced text and attempts
// a strict parse of the result.
func parseRepaired(text string) (map[string]any, bool) {
	slice, ok := bracketSlice(text)
	if !ok {
		slice = text
	}
	return strictParse(repairStructure(slice))
}

// strictParse unmarshals text into a generic JSON object. Non-object
// top-level values are rejected.
func strictParse(text string) (map[string]any, bool) {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}

// bracketSlice returns the substring from the first "{" through the last
// "}" inclusive, if both exist in that order.
func bracketSlice(text string) (string, bool) {
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first == -1 || last == -1 || last < first {
		return "", false
	}
	return text[first : last+1], true
}

// normalizePayload coerces loosely-typed parsed structure into the payload
// shape. It is applied to whichever stage succeeded: wrong-typed fields
// fall back to defaults rather than failing, and non-string entries are
// dropped from string lists.
func normalizePayload(parsed map[string]any) *generation.ItineraryPayload {
	payload := &generation.ItineraryPayload{
		Title:      "Travel Plan",
		Summary:    "",
		Highlights: []string{},
		Itinerary:  []generation.DaySchema{},
	}

	if title, ok := parsed["title"].(string); ok {
		payload.Title = title
	}
	if summary, ok := parsed["summary"].(string); ok {
		payload.Summary = summary
	}

	if highlights, ok := parsed["highlights"].([]any); ok {
		for _, h := range highlights {
			if s, ok := h.(string); ok {
				payload.Highlights = append(payload.Highlights, s)
			}
		}
	}

	if itinerary, ok := parsed["itinerary"].([]any); ok {
		for i, raw := range itinerary {
			day := generation.DaySchema{
				Day:        i + 1,
				Title:      fmt.Sprintf("Day %d", i+1),
				Activities: []string{},
			}

			if entry, ok := raw.(map[string]any); ok {
				if n, ok := entry["day"].(float64); ok {
					day.Day = int(n)
				}
				if title, ok := entry["title"].(string); ok {
					day.Title = title
				}
				if activities, ok := entry["activities"].([]any); ok {
					for _, a := range activities {
						if s, ok := a.(string); ok {
							day.Activities = append(day.Activities, s)
						}
					}
				}
			}

			payload.Itinerary = append(payload.Itinerary, day)
		}
	}

	return payload
}
