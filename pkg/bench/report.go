package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Output formats understood by Write.
const (
	FormatText     = "text"
	FormatKeyValue = "kv"
	FormatJSON     = "json"
)

// Formats lists the valid output formats.
var Formats = []string{FormatText, FormatKeyValue, FormatJSON}

// unit words used by the text report, per workload name
var reportUnits = map[string][2]string{
	NameInteger: {"Iterations", "Result"},
	NameFloat:   {"Iterations", "Result"},
	NameMemory:  {"Elements", "Sum"},
}

// Write prints results in the given format.
func Write(w io.Writer, format string, results []WorkloadResult) error {
	switch format {
	case FormatText, "":
		return WriteText(w, results)
	case FormatKeyValue:
		return WriteKeyValue(w, results)
	case FormatJSON:
		return WriteJSON(w, results)
	}
	return errors.Errorf("unknown output format %q; valid: %s", format, strings.Join(Formats, ", "))
}

// WriteText prints one human readable block per result.
func WriteText(w io.Writer, results []WorkloadResult) error {
	for _, r := range results {
		if err := writeTextBlock(w, r); err != nil {
			return err
		}
	}
	return nil
}

func writeTextBlock(w io.Writer, r WorkloadResult) error {
	units, ok := reportUnits[r.Name]
	if !ok {
		units = [2]string{"Count", "Result"}
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:\n", r.Label)
	fmt.Fprintf(&sb, "  %s: %d\n", units[0], r.Count)
	switch {
	case r.Failed():
		fmt.Fprintf(&sb, "  ERROR: %s\n\n", r.Err)
	default:
		fmt.Fprintf(&sb, "  Time: %.2f μs\n", r.DurationMicros)
		if r.Measurable {
			fmt.Fprintf(&sb, "  Rate: %.0f ops/sec\n", r.Rate)
		} else {
			sb.WriteString("  Rate: unmeasurable (too fast to sample)\n")
		}
		fmt.Fprintf(&sb, "  %s: %s\n\n", units[1], r.Payload)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteKeyValue prints one line of space separated key=value pairs per result.
func WriteKeyValue(w io.Writer, results []WorkloadResult) error {
	for _, r := range results {
		fields := r.Fields()
		parts := make([]string, len(fields))
		for i, f := range fields {
			parts[i] = f.Key + "=" + f.Value
		}
		if _, err := fmt.Fprintln(w, strings.Join(parts, " ")); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON prints the results as an indented JSON array.
func WriteJSON(w io.Writer, results []WorkloadResult) error {
	if results == nil {
		results = []WorkloadResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
