// Package doctor runs environment diagnostics: config file, region,
// credentials, and whether EC2 and SSM answer for the resolved region.
package doctor

import (
	"context"
	"fmt"
	"sync"
)

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

var statusNames = [...]string{StatusPass: "pass", StatusWarn: "warn", StatusFail: "fail"}

func (s CheckStatus) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// MarshalText renders the status as its string form in JSON output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult is what a check reports. Name and Category are filled from
// the check when left empty.
type CheckResult struct {
	Name       string      `json:"name"`
	Category   string      `json:"category"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Check defines the interface for diagnostic checks.
type Check interface {
	// Name returns the check's identifier.
	Name() string

	// Category returns the check's category (e.g., "CONFIG", "AWS").
	Category() string

	// Run executes the check and returns the result.
	Run(ctx context.Context) CheckResult
}

// Categories in display order.
const (
	CategoryConfig = "CONFIG"
	CategoryAWS    = "AWS"
)

// RunAll runs checks one after another.
func RunAll(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		results[i] = stamp(check, check.Run(ctx))
	}
	return results
}

// RunAllParallel executes all checks concurrently. Results keep the order of checks.
func RunAllParallel(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup

	for i, check := range checks {
		wg.Add(1)
		go func(idx int, c Check) {
			defer wg.Done()
			results[idx] = stamp(c, c.Run(ctx))
		}(i, check)
	}

	wg.Wait()
	return results
}

func stamp(c Check, r CheckResult) CheckResult {
	if r.Name == "" {
		r.Name = c.Name()
	}
	if r.Category == "" {
		r.Category = c.Category()
	}
	return r
}

// CountByStatus tallies results per status.
func CountByStatus(results []CheckResult) map[CheckStatus]int {
	counts := make(map[CheckStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// HasFailures reports whether any check failed.
func HasFailures(results []CheckResult) bool {
	return anyStatus(results, StatusFail)
}

// HasIssues reports whether any check failed or warned.
func HasIssues(results []CheckResult) bool {
	return anyStatus(results, StatusFail, StatusWarn)
}

func anyStatus(results []CheckResult, statuses ...CheckStatus) bool {
	for _, r := range results {
		for _, s := range statuses {
			if r.Status == s {
				return true
			}
		}
	}
	return false
}

// Summary is the one-line verdict printed under the report.
func Summary(results []CheckResult) string {
	counts := CountByStatus(results)
	issues := counts[StatusWarn] + counts[StatusFail]

	switch issues {
	case 0:
		return "Everything looks good"
	case 1:
		return "1 issue found"
	default:
		return fmt.Sprintf("%d issues found", issues)
	}
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
