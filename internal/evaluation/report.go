package evaluation

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// CaseResult one evaluated test case
type CaseResult struct {
	Index       int           `json:"index"`
	Question    string        `json:"question"`
	Output      string        `json:"output,omitempty"`
	Correctness Score         `json:"correctness"`
	Helpfulness Score         `json:"helpfulness"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
}

// Errored reports whether the case has no scores
func (r CaseResult) Errored() bool {
	return r.Error != ""
}

// Averages mean scores over scored cases
type Averages struct {
	Correctness float64 `json:"correctness"`
	Helpfulness float64 `json:"helpfulness"`
}

// Report the outcome of one Evaluate run
type Report struct {
	RunID       string        `json:"run_id"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ns"`
	Total       int           `json:"total"`
	Scored      int           `json:"scored"`
	Errored     int           `json:"errored"`
	Interrupted bool          `json:"interrupted,omitempty"`
	Averages    Averages      `json:"averages"`
	Cases       []CaseResult  `json:"cases"`
}

func (r *Report) aggregate() {
	var sumC, sumH float64
	r.Scored, r.Errored = 0, 0
	for _, c := range r.Cases {
		if c.Errored() {
			r.Errored++
			continue
		}
		r.Scored++
		sumC += c.Correctness.Value
		sumH += c.Helpfulness.Value
	}
	r.Averages = Averages{}
	if r.Scored > 0 {
		r.Averages.Correctness = sumC / float64(r.Scored)
		r.Averages.Helpfulness = sumH / float64(r.Scored)
	}
}

// Print writes the per-case lines and the averages
func (r *Report) Print(w io.Writer) {
	for _, c := range r.Cases {
		if c.Errored() {
			fmt.Fprintf(w, "Test case %d of %d: {error: %s}\n", c.Index+1, r.Total, c.Error)
			continue
		}
		fmt.Fprintf(w, "Test case %d of %d: {correctness: %s, helpfulness: %s}\n",
			c.Index+1, r.Total, formatScore(c.Correctness.Value), formatScore(c.Helpfulness.Value))
	}

	if r.Scored > 0 {
		fmt.Fprintf(w, "Average Scores: {correctness: %s, helpfulness: %s}\n",
			formatScore(r.Averages.Correctness), formatScore(r.Averages.Helpfulness))
	} else {
		fmt.Fprintln(w, "Average Scores: {correctness: n/a, helpfulness: n/a}")
	}
	if r.Errored > 0 {
		fmt.Fprintf(w, "Errored: %d of %d\n", r.Errored, len(r.Cases))
	}
	if r.Interrupted {
		fmt.Fprintf(w, "Interrupted after %d of %d cases\n", len(r.Cases), r.Total)
	}
}

// WriteJSON saves the report to path
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
