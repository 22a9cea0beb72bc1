package generation

import "context"

// Generator defines the interface for producing raw itinerary text from a
// generation prompt. This interface serves as a boundary between the
// application core and external AI/LLM services.
//
// The returned string is untrusted: providers frequently wrap the payload
// in code fences or prose, so callers are expected to run it through the
// recovery pipeline before use.
type Generator interface {
	// GenerateItinerary sends the prompt to the backing model and returns
	// the raw response text.
	//
	// Parameters:
	//   - ctx: Context for the operation, which bounds the call and can
	//     carry cancellation
	//   - prompt: The full generation prompt text
	//
	// Returns:
	//   - The raw response text from the model
	//   - An error if the call fails (see errors.go for specific types)
	GenerateItinerary(ctx context.Context, prompt string) (string, error)
}
