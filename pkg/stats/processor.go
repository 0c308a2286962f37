// Package stats aggregates workload results across repetitions.
package stats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/perfprobe/microbench/pkg/bench"
	"github.com/pkg/errors"
)

// Sample is the outcome of one RunAll call by one worker.
type Sample struct {
	Worker     int
	Repetition uint64
	Results    []bench.WorkloadResult
}

// ProcessorArgs configures a Processor.
type ProcessorArgs struct {
	BurnIn        uint64 // number of samples to ignore before analyzing
	PrintInterval uint64 // print interim stats every this many measured samples, 0 = never
	Limit         uint64 // expected number of samples, used to size buffers

	// ErrOut receives interim output; defaults to os.Stderr.
	ErrOut io.Writer
}

type workloadStats struct {
	label            string
	count            uint64
	durations        *statGroup
	failures         uint64
	unmeasurable     uint64
	payload          bench.Payload
	havePayload      bool
	nondeterministic bool
	lastErr          string
}

// Processor collects Samples from any number of workers, aggregating them
// into per-workload summary statistics.
type Processor struct {
	args ProcessorArgs

	c         chan *Sample
	wg        sync.WaitGroup
	startTime time.Time
	seen      uint64
	measured  uint64
	order     []string
	groups    map[string]*workloadStats
	last      map[string]bench.WorkloadResult

	errOut io.Writer
}

// NewProcessor returns a Processor that is ready to Start.
func NewProcessor(args ProcessorArgs) *Processor {
	p := &Processor{
		args:   args,
		groups: map[string]*workloadStats{},
		last:   map[string]bench.WorkloadResult{},
		errOut: args.ErrOut,
	}
	if p.errOut == nil {
		p.errOut = os.Stderr
	}
	return p
}

// Start launches the goroutine that consumes Samples.
func (p *Processor) Start(workers uint) {
	p.c = make(chan *Sample, workers)
	p.startTime = time.Now()
	p.wg.Add(1)
	go p.process(workers)
}

// Send hands a sample to the processing goroutine.
func (p *Processor) Send(s *Sample) {
	p.c <- s
}

// CloseAndWait closes the sample channel and blocks until every sample on it
// has been processed.
func (p *Processor) CloseAndWait() {
	close(p.c)
	p.wg.Wait()
}

func (p *Processor) process(workers uint) {
	defer p.wg.Done()
	for s := range p.c {
		p.seen++
		if p.seen <= p.args.BurnIn {
			if p.seen == p.args.BurnIn {
				fmt.Fprintf(p.errOut, "burn-in complete after %d repetitions with %d workers\n", p.args.BurnIn, workers)
			}
			continue
		}
		p.measured++
		for _, r := range s.Results {
			p.push(r)
		}

		if p.args.PrintInterval > 0 && p.measured%p.args.PrintInterval == 0 &&
			(p.args.Limit == 0 || p.measured+p.args.BurnIn < p.args.Limit) {
			took := time.Since(p.startTime)
			fmt.Fprintf(p.errOut, "After %d repetitions with %d workers (%0.2f repetitions/sec):\n",
				p.measured, workers, float64(p.seen)/took.Seconds())
			if err := p.writeGroups(p.errOut); err != nil {
				fmt.Fprintf(p.errOut, "could not print interim stats: %v\n", err)
			}
			fmt.Fprintln(p.errOut)
		}
	}
}

func (p *Processor) push(r bench.WorkloadResult) {
	ws, ok := p.groups[r.Name]
	if !ok {
		size := uint64(0)
		if p.args.Limit > p.args.BurnIn {
			size = p.args.Limit - p.args.BurnIn
		}
		ws = &workloadStats{label: r.Label, count: r.Count, durations: newStatGroup(size)}
		p.groups[r.Name] = ws
		p.order = append(p.order, r.Name)
	}
	p.last[r.Name] = r

	if r.Failed() {
		ws.failures++
		ws.lastErr = r.Err
		return
	}
	if ws.havePayload && !ws.payload.Equal(r.Payload) {
		ws.nondeterministic = true
	}
	ws.payload = r.Payload
	ws.havePayload = true

	if !r.Measurable {
		ws.unmeasurable++
		return
	}
	ws.durations.push(r.DurationMicros)
}

// Measured returns the number of samples that made it past burn-in. Only
// valid after CloseAndWait.
func (p *Processor) Measured() uint64 {
	return p.measured
}

// LastResults returns the most recent result of every workload in first-seen
// order. Only valid after CloseAndWait.
func (p *Processor) LastResults() []bench.WorkloadResult {
	out := make([]bench.WorkloadResult, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.last[name])
	}
	return out
}

func (p *Processor) writeGroups(w io.Writer) error {
	for _, name := range p.order {
		ws := p.groups[name]
		if _, err := fmt.Fprintf(w, "%s:\n", ws.label); err != nil {
			return err
		}
		if err := ws.durations.write(w); err != nil {
			return err
		}
		line := fmt.Sprintf("  mean rate: %0.0f ops/sec, failures: %d, unmeasurable: %d\n",
			ws.meanRate(), ws.failures, ws.unmeasurable)
		if ws.nondeterministic {
			line += "  WARNING: payload changed between repetitions\n"
		}
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary prints the final statistics.
func (p *Processor) WriteSummary(w io.Writer, workers uint) error {
	took := time.Since(p.startTime)
	_, err := fmt.Fprintf(w, "Run complete after %d repetitions with %d workers (%d burn-in, overall %0.2f repetitions/sec):\n",
		p.measured, workers, p.args.BurnIn, float64(p.seen)/took.Seconds())
	if err != nil {
		return err
	}
	return p.writeGroups(w)
}

func (ws *workloadStats) meanRate() float64 {
	if ws.durations.count == 0 || ws.durations.mean <= 0 {
		return 0
	}
	return float64(ws.count) / (ws.durations.mean / 1e6)
}

// GetTotalsMap returns the aggregated statistics in a form suitable for a
// JSON results file.
func (p *Processor) GetTotalsMap() map[string]interface{} {
	totals := make(map[string]interface{})
	totals["burnIn"] = p.args.BurnIn
	totals["measuredRepetitions"] = p.measured
	workloads := make(map[string]interface{}, len(p.groups))
	for name, ws := range p.groups {
		entry := map[string]interface{}{
			"count":         ws.count,
			"failures":      ws.failures,
			"unmeasurable":  ws.unmeasurable,
			"deterministic": !ws.nondeterministic,
			"meanRate":      ws.meanRate(),
			"meanUs":        ws.durations.mean,
			"stdDevUs":      ws.durations.stdDev,
			"quantilesUs":   ws.durations.quantileMap(),
		}
		if ws.havePayload {
			entry["payload"] = ws.payload
		}
		if ws.lastErr != "" {
			entry["lastError"] = ws.lastErr
		}
		workloads[name] = entry
	}
	totals["workloads"] = workloads
	return totals
}

// WriteHDR saves the High Dynamic Range (HDR) histogram of every workload's
// durations, in microseconds, to path.
func (p *Processor) WriteHDR(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create %s", path)
	}
	bw := bufio.NewWriter(f)
	for _, name := range p.order {
		if _, err := fmt.Fprintf(bw, "# %s\n", name); err != nil {
			f.Close()
			return errors.Wrapf(err, "could not write histogram of %s", name)
		}
		if _, err := p.groups[name].durations.durationHDRHistogram.PercentilesPrint(bw, 10, 1000.0); err != nil {
			f.Close()
			return errors.Wrapf(err, "could not write histogram of %s", name)
		}
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
