package gemini

import "errors"

// ErrEmptyPrompt indicates that an empty prompt was passed to the generator.
var ErrEmptyPrompt = errors.New("prompt text cannot be empty")
