package harness

import (
	"encoding/json"
	"io/ioutil"

	"github.com/perfprobe/microbench/pkg/bench"
	"github.com/pkg/errors"
)

const TestResultVersion = "0.1"

// TestResult aggregates the results of a benchmark invocation in a format
// suitable for comparing runs.
type TestResult struct {
	// Format Configs
	ResultFormatVersion string `json:"ResultFormatVersion"`

	// Configs
	RunnerConfig  bench.Config `json:"RunnerConfig"`
	HarnessConfig Config       `json:"HarnessConfig"`

	// Session info
	Session map[string]interface{} `json:"Session"`

	// Run info
	StartTime      int64 `json:"StartTime"`
	EndTime        int64 `json:"EndTime"`
	DurationMillis int64 `json:"DurationMillis"`

	// Last result of every workload
	Results []bench.WorkloadResult `json:"Results"`

	// Totals
	Totals map[string]interface{} `json:"Totals"`
}

// WriteFile saves the result as indented JSON.
func (r *TestResult) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not encode results")
	}
	if err := ioutil.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "could not write results to %s", path)
	}
	return nil
}
