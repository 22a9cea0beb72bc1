// Package prompt derives structured plan parameters from free-text travel
// requests. It deliberately stops at keyword and regex heuristics: the goal
// is a total, predictable extraction with fall-through defaults, not natural
// language understanding.
package prompt
