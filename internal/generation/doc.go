// Package generation provides interfaces and types for interacting with
// external text-generation services. It abstracts the details of the LLM
// API integration, allowing the application to request travel itineraries
// without coupling to a specific provider. Raw responses are untrusted
// text; structural recovery lives in the recovery package.
package generation
