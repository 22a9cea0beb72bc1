// Package gemini provides an implementation of the generation.Generator
// interface that uses Google's Gemini API for generating travel itineraries
// from prompt text.
//
// This package is an infrastructure adapter in the hexagonal architecture,
// connecting the application's domain logic to Google's external Gemini AI
// service. It returns the model's raw text unmodified; interpreting and
// repairing that text is the job of the recovery package, so that every
// response shape the model produces can flow through the same pipeline.
//
// The adapter consults a quota.Tracker before every upstream call: cached
// responses are served without consuming quota, and the daily request
// ceiling is enforced before any network traffic happens.
package gemini
