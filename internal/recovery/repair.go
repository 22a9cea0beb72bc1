package recovery

import (
	"regexp"
	"strings"
)

var (
	codeFenceMarkers = regexp.MustCompile("```json\\s*|\\s*```")
	smartSingles     = strings.NewReplacer("‘", "'", "’", "'")
	smartDoubles     = strings.NewReplacer("“", `"`, "”", `"`)
	controlChars     = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F-\x9F]`)

	trailingCommas = regexp.MustCompile(`,\s*([}\]])`)
	strayParenDot  = regexp.MustCompile(`\.\)"`)
	strayParen     = regexp.MustCompile(`\)\s*"`)
)

// normalizeText strips the decorations models habitually wrap around JSON:
// code fences, markdown bold markers, smart quotes, and non-printable
// control characters.
func normalizeText(text string) string {
	text = codeFenceMarkers.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "**", "")
	text = smartSingles.Replace(text)
	text = smartDoubles.Replace(text)
	text = controlChars.ReplaceAllString(text, "")
	return text
}

// repairStructure fixes the malformations seen in practice: trailing commas
// before a closing bracket, a stray ")" immediately before a closing quote,
// and unbalanced brackets, which are closed by appending the missing
// characters.
func repairStructure(text string) string {
	text = trailingCommas.ReplaceAllString(text, "$1")
	text = strayParenDot.ReplaceAllString(text, `."`)
	text = strayParen.ReplaceAllString(text, `"`)

	if missing := strings.Count(text, "[") - strings.Count(text, "]"); missing > 0 {
		text += strings.Repeat("]", missing)
	}
	if missing := strings.Count(text, "{") - strings.Count(text, "}"); missing > 0 {
		text += strings.Repeat("}", missing)
	}

	return text
}
