// Package doctor runs health checks against a casekit setup.
package doctor

import (
	"context"
	"fmt"
)

type Status int

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
)

var statusNames = [...]string{StatusPass: "pass", StatusWarn: "warn", StatusFail: "fail"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// MarshalText renders the status by name in JSON output.
func (s Status) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

// CheckItem is one line of a check result.
type CheckItem struct {
	Label  string `json:"label"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Result groups the items a single check produced.
type Result struct {
	Name  string      `json:"name"`
	Items []CheckItem `json:"items"`
}

func (r *Result) add(label string, status Status, detail string) {
	r.Items = append(r.Items, CheckItem{Label: label, Status: status, Detail: detail})
}

// Check is a single doctor check.
type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// RunAll runs checks in order. Checks not started before ctx is done are
// reported as failed.
func RunAll(ctx context.Context, checks []Check) []Result {
	results := make([]Result, 0, len(checks))
	for _, check := range checks {
		if err := ctx.Err(); err != nil {
			r := Result{Name: check.Name()}
			r.add("Run", StatusFail, err.Error())
			results = append(results, r)
			continue
		}
		results = append(results, check.Run(ctx))
	}
	return results
}

// Counts tallies item statuses across results.
type Counts struct {
	Passed int `json:"passed"`
	Warned int `json:"warned"`
	Failed int `json:"failed"`
}

// Healthy reports whether no item failed.
func (c Counts) Healthy() bool { return c.Failed == 0 }

func (c Counts) String() string {
	return fmt.Sprintf("%d passed, %d warnings, %d failed", c.Passed, c.Warned, c.Failed)
}

func Summary(results []Result) Counts {
	var c Counts
	for _, r := range results {
		for _, item := range r.Items {
			switch item.Status {
			case StatusPass:
				c.Passed++
			case StatusWarn:
				c.Warned++
			case StatusFail:
				c.Failed++
			}
		}
	}
	return c
}
