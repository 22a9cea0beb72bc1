package prompt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var nonAlphanumericRuns = regexp.MustCompile(`[^a-z0-9]+`)

// NewSlug builds a unique, human-readable identifier for a plan request.
// The output always begins with the normalized parameter base; a timestamp
// and random component follow so that two calls with identical inputs never
// collide, even under concurrent identical requests. Deduplication of
// semantically identical requests is the store's job (unique index over the
// parameter tuple), not the slug's.
func NewSlug(destination string, days int, budget, travelerType string) string {
	base := nonAlphanumericRuns.ReplaceAllString(strings.ToLower(destination), "-")
	base = strings.Trim(base, "-")
	base = fmt.Sprintf("%s-%d-days-%s-%s", base, days, budget, travelerType)

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 36)
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]

	return base + "-" + timestamp + "-" + random
}
