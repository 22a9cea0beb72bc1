// Package service provides application-level services for managing travel
// plans. It owns the request-to-plan workflow: gating free-text prompts,
// deriving structured parameters, deduplicating equivalent requests, and
// handing generation work to the background task runner.
package service
