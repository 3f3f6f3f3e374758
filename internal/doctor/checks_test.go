package doctor

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestCheckStatus_String(t *testing.T) {
	tests := []struct {
		status   CheckStatus
		expected string
	}{
		{StatusPass, "pass"},
		{StatusWarn, "warn"},
		{StatusFail, "fail"},
		{CheckStatus(99), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			if got := tc.status.String(); got != tc.expected {
				t.Errorf("got %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestCheckResultJSON(t *testing.T) {
	data, err := json.Marshal(CheckResult{Name: "region", Category: CategoryAWS, Status: StatusWarn, Message: "m"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"status":"warn"`) {
		t.Errorf("status should marshal as text, got %s", data)
	}
	if strings.Contains(string(data), "suggestion") {
		t.Errorf("empty suggestion should be omitted, got %s", data)
	}
}

// mockCheck is a test implementation of Check.
type mockCheck struct {
	name     string
	category string
	result   CheckResult
	calls    int
}

func (m *mockCheck) Name() string     { return m.name }
func (m *mockCheck) Category() string { return m.category }
func (m *mockCheck) Run(_ context.Context) CheckResult {
	m.calls++
	return m.result
}

func TestRunAll(t *testing.T) {
	checks := []Check{
		&mockCheck{
			name:     "check1",
			category: "TEST",
			result:   CheckResult{Status: StatusPass, Message: "OK"},
		},
		&mockCheck{
			name:     "check2",
			category: "TEST",
			result:   CheckResult{Status: StatusFail, Message: "Failed"},
		},
	}

	results := RunAll(context.Background(), checks)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusPass {
		t.Errorf("expected first check to pass")
	}
	if results[1].Status != StatusFail {
		t.Errorf("expected second check to fail")
	}
	// Name and category are filled from the check
	if results[1].Name != "check2" || results[1].Category != "TEST" {
		t.Errorf("expected stamped name/category, got %q/%q", results[1].Name, results[1].Category)
	}
}

func TestRunAllParallel(t *testing.T) {
	checks := []Check{
		&mockCheck{name: "check1", category: "TEST", result: CheckResult{Status: StatusPass}},
		&mockCheck{name: "check2", category: "TEST", result: CheckResult{Status: StatusWarn}},
		&mockCheck{name: "check3", category: "TEST", result: CheckResult{Status: StatusFail}},
	}

	results := RunAllParallel(context.Background(), checks)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	// Order is preserved
	want := []CheckStatus{StatusPass, StatusWarn, StatusFail}
	for i, w := range want {
		if results[i].Status != w {
			t.Errorf("result %d: got %v, want %v", i, results[i].Status, w)
		}
		if results[i].Name != checks[i].Name() {
			t.Errorf("result %d: got name %q", i, results[i].Name)
		}
	}
	for _, c := range checks {
		if c.(*mockCheck).calls != 1 {
			t.Errorf("%s ran %d times", c.Name(), c.(*mockCheck).calls)
		}
	}
}

func TestCountByStatus(t *testing.T) {
	results := []CheckResult{
		{Status: StatusPass},
		{Status: StatusPass},
		{Status: StatusWarn},
		{Status: StatusFail},
	}

	counts := CountByStatus(results)

	if counts[StatusPass] != 2 {
		t.Errorf("expected 2 pass, got %d", counts[StatusPass])
	}
	if counts[StatusWarn] != 1 {
		t.Errorf("expected 1 warn, got %d", counts[StatusWarn])
	}
	if counts[StatusFail] != 1 {
		t.Errorf("expected 1 fail, got %d", counts[StatusFail])
	}
}

func TestHasFailuresAndIssues(t *testing.T) {
	tests := []struct {
		name         string
		results      []CheckResult
		wantFailures bool
		wantIssues   bool
	}{
		{
			name:    "all pass",
			results: []CheckResult{{Status: StatusPass}, {Status: StatusPass}},
		},
		{
			name:       "with warn only",
			results:    []CheckResult{{Status: StatusPass}, {Status: StatusWarn}},
			wantIssues: true,
		},
		{
			name:         "with fail",
			results:      []CheckResult{{Status: StatusWarn}, {Status: StatusFail}},
			wantFailures: true,
			wantIssues:   true,
		},
		{
			name: "empty",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := HasFailures(tc.results); got != tc.wantFailures {
				t.Errorf("HasFailures: got %v, want %v", got, tc.wantFailures)
			}
			if got := HasIssues(tc.results); got != tc.wantIssues {
				t.Errorf("HasIssues: got %v, want %v", got, tc.wantIssues)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name     string
		results  []CheckResult
		expected string
	}{
		{"all pass", []CheckResult{{Status: StatusPass}}, "Everything looks good"},
		{"one issue", []CheckResult{{Status: StatusPass}, {Status: StatusWarn}}, "1 issue found"},
		{"two issues", []CheckResult{{Status: StatusFail}, {Status: StatusWarn}}, "2 issues found"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Summary(tc.results); got != tc.expected {
				t.Errorf("got %q, want %q", got, tc.expected)
			}
		})
	}
}
