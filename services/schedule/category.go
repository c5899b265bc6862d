package schedule

import (
	"strings"

	"bengkelbot/models"
)

// CategoryFor infers the capacity category from a service name. Repaint jobs
// occupy the workshop for days; detailing and coating are same-day work with
// a per-day cap; everything else only contends on direct time overlap.
func CategoryFor(service string) string {
	name := strings.ToLower(service)
	switch {
	case strings.Contains(name, "repaint") || strings.Contains(name, "cat ulang"):
		return models.CategoryRepaint
	case strings.Contains(name, "detailing") || strings.Contains(name, "coating") || strings.Contains(name, "poles"):
		return models.CategoryDetailing
	default:
		return models.CategoryOther
	}
}
