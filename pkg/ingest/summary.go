package ingest

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/NERVsystems/osmingest/pkg/listing"
	"github.com/NERVsystems/osmingest/pkg/monitoring"
)

// Exit codes of a run
const (
	ExitOK      = 0
	ExitFailed  = 1
	ExitPartial = 2
)

// StepStatus is the outcome of one category step
type StepStatus string

// Step outcomes
const (
	StepSuccess   StepStatus = "success"
	StepFailed    StepStatus = "failed"
	StepCancelled StepStatus = "cancelled"
	StepSkipped   StepStatus = "skipped"
)

func (s StepStatus) metricStatus() string {
	switch s {
	case StepSuccess:
		return monitoring.StatusSuccess
	case StepCancelled:
		return monitoring.StatusCancelled
	default:
		return monitoring.StatusError
	}
}

// StepResult reports one category
type StepResult struct {
	Category listing.Category
	Status   StepStatus
	Fetched  int
	Eligible int
	Emitted  int
	Duration time.Duration
	Err      error
}

// Dropped counts fetched elements that did not become records
func (r StepResult) Dropped() int {
	return max(r.Fetched-r.Emitted, 0)
}

// Summary reports a whole run
type Summary struct {
	RunID        string
	Started      time.Time
	Duration     time.Duration
	Steps        []StepResult
	AllowPartial bool

	// Err is set when the run failed before any category ran
	Err error
}

// Failed returns the steps that did not succeed
func (s *Summary) Failed() []StepResult {
	var out []StepResult
	for _, r := range s.Steps {
		if r.Status != StepSuccess {
			out = append(out, r)
		}
	}
	return out
}

// ExitCode maps the run outcome to a process exit status: 0 when every step
// succeeded, 1 when the run was aborted or cancelled or every network
// category failed, and 2 for any other partial failure (0 with AllowPartial).
func (s *Summary) ExitCode() int {
	if s.Err != nil {
		return ExitFailed
	}

	failed := 0
	network, networkFailed := 0, 0
	for _, r := range s.Steps {
		if r.Status == StepCancelled {
			return ExitFailed
		}
		if r.Category.Network() {
			network++
		}
		if r.Status != StepSuccess {
			failed++
			if r.Category.Network() {
				networkFailed++
			}
		}
	}

	switch {
	case failed == 0:
		return ExitOK
	case network > 0 && networkFailed == network:
		return ExitFailed
	case s.AllowPartial:
		return ExitOK
	default:
		return ExitPartial
	}
}

// WriteTable prints one aligned line per step
func (s *Summary) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tSTATUS\tFETCHED\tELIGIBLE\tEMITTED\tDROPPED\tDURATION\tERROR")
	for _, r := range s.Steps {
		errMsg := ""
		if r.Err != nil {
			errMsg = r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			r.Category, r.Status, r.Fetched, r.Eligible, r.Emitted, r.Dropped(),
			r.Duration.Round(time.Millisecond), errMsg)
	}
	if s.Err != nil {
		fmt.Fprintf(tw, "run\t%s\t\t\t\t\t\t%s\n", StepFailed, s.Err)
	}
	return tw.Flush()
}
