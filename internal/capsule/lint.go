package capsule

import "fmt"

// MaxTitleChars is the soft ceiling on title length.
const MaxTitleChars = 100

// LintResult contains the results of linting a capsule.
type LintResult struct {
	Valid    bool
	Warnings []string
}

// Lint reports soft-constraint violations. It never rejects a capsule;
// callers log the warnings.
func Lint(c *Capsule) *LintResult {
	result := &LintResult{Valid: true}
	if c == nil {
		result.Valid = false
		result.Warnings = append(result.Warnings, "capsule is nil")
		return result
	}

	if n := CountChars(c.Title); n > MaxTitleChars {
		result.Warnings = append(result.Warnings, fmt.Sprintf("title is %d chars (soft max %d)", n, MaxTitleChars))
	}
	if c.Summary == "" {
		result.Warnings = append(result.Warnings, "summary is empty")
	}
	if len(c.Actions) == 0 {
		result.Warnings = append(result.Warnings, "no actions proposed")
	}

	result.Valid = len(result.Warnings) == 0
	return result
}
