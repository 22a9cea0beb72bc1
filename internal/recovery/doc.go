// Package recovery converts unreliable generated text into a validated
// itinerary structure. The backend targets a JSON payload but frequently
// wraps it in code fences or prose, uses smart quotes, leaves trailing
// commas, or drops closing brackets. Recovery runs an ordered chain of
// repair stages, each a pure function tried only when the previous stage
// failed to produce parseable structure, and always finishes with a
// normalization pass that coerces the winning stage's output into the
// expected shape. Only empty input is a hard failure.
package recovery
