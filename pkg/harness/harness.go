// Package harness repeats the benchmark workload sequence across workers,
// aggregates the measurements and records the outcome.
package harness

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/perfprobe/microbench/internal/pacing"
	"github.com/perfprobe/microbench/internal/session"
	"github.com/perfprobe/microbench/pkg/bench"
	"github.com/perfprobe/microbench/pkg/stats"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"
)

// Harness drives independent bench.Runners, one per worker. Runners share
// nothing but the rate limiter and the stats processor.
type Harness struct {
	cfg      Config
	benchCfg bench.Config
	session  *session.Session
	opts     []bench.Option

	limiter   *rate.Limiter
	regulator pacing.Regulator
	sp        *stats.Processor

	completed atomic.Uint64
	failed    atomic.Uint64

	out    io.Writer
	errOut io.Writer
}

// New validates both configurations and prepares a Harness. opts are
// applied to every worker's Runner.
func New(cfg Config, benchCfg bench.Config, s *session.Session, opts ...bench.Option) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := benchCfg.Validate(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New("harness needs a session")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	regulator, err := pacing.NewRegulator(cfg.CooldownIntervals, int(cfg.Workers), rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, errors.Wrap(err, "could not set up cooldown intervals")
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RunsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RunsPerSecond), 1)
	}

	return &Harness{
		cfg:       cfg,
		benchCfg:  benchCfg,
		session:   s,
		opts:      opts,
		limiter:   limiter,
		regulator: regulator,
		out:       os.Stdout,
		errOut:    os.Stderr,
	}, nil
}

// Run executes all repetitions and prints the results. A fatal error from
// any worker stops the others and is returned; failed allocations are not
// fatal.
func (h *Harness) Run(ctx context.Context) (*TestResult, error) {
	runners := make([]*bench.Runner, h.cfg.Workers)
	for i := range runners {
		r, err := bench.NewRunner(h.benchCfg, h.opts...)
		if err != nil {
			return nil, err
		}
		runners[i] = r
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	h.sp = stats.NewProcessor(stats.ProcessorArgs{
		BurnIn:        h.cfg.BurnIn,
		PrintInterval: h.cfg.PrintInterval,
		Limit:         h.cfg.Repetitions,
		ErrOut:        h.errOut,
	})
	h.sp.Start(h.cfg.Workers)

	start := time.Now()
	reportDone := make(chan struct{})
	var reportWG sync.WaitGroup
	if h.cfg.ReportingPeriod > 0 {
		reportWG.Add(1)
		go func() {
			defer reportWG.Done()
			h.report(h.cfg.ReportingPeriod, reportDone)
		}()
	}

	jobs := make(chan uint64, h.cfg.Workers)
	go func() {
		defer close(jobs)
		for i := uint64(0); i < h.cfg.Repetitions; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i, r := range runners {
		wg.Add(1)
		go h.work(ctx, &wg, r, i, jobs, fail)
	}
	wg.Wait()
	h.sp.CloseAndWait()
	close(reportDone)
	reportWG.Wait()
	end := time.Now()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := h.summary(end.Sub(start)); err != nil {
		return nil, err
	}

	if h.cfg.HDRLatenciesFile != "" {
		fmt.Fprintf(h.errOut, "Saving High Dynamic Range (HDR) Histogram of workload durations to %s\n", h.cfg.HDRLatenciesFile)
		if err := h.sp.WriteHDR(h.cfg.HDRLatenciesFile); err != nil {
			return nil, err
		}
	}
	if h.cfg.MemProfile != "" {
		if err := writeMemProfile(h.cfg.MemProfile); err != nil {
			return nil, err
		}
	}

	result := &TestResult{
		ResultFormatVersion: TestResultVersion,
		RunnerConfig:        h.benchCfg,
		HarnessConfig:       h.cfg,
		Session:             h.session.Metadata(),
		StartTime:           start.Unix(),
		EndTime:             end.Unix(),
		DurationMillis:      end.Sub(start).Milliseconds(),
		Results:             h.sp.LastResults(),
		Totals:              h.sp.GetTotalsMap(),
	}
	if h.cfg.ResultsFile != "" {
		fmt.Fprintf(h.errOut, "Saving results json file to %s\n", h.cfg.ResultsFile)
		if err := result.WriteFile(h.cfg.ResultsFile); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// work is the loop of a single worker. It owns its Runner exclusively. The
// cooldown applies between two repetitions of the worker, never after its
// last one.
func (h *Harness) work(ctx context.Context, wg *sync.WaitGroup, r *bench.Runner, workerNum int, jobs <-chan uint64, fail func(error)) {
	defer wg.Done()
	var prevStart time.Time
	for rep := range jobs {
		if ctx.Err() != nil {
			return
		}
		if err := h.limiter.Wait(ctx); err != nil {
			if ctx.Err() == nil {
				fail(errors.Wrap(err, "rate limiter"))
			}
			return
		}
		if !prevStart.IsZero() {
			if err := h.regulator.Wait(ctx, workerNum, prevStart); err != nil {
				if ctx.Err() == nil {
					fail(err)
				}
				return
			}
		}

		prevStart = time.Now()
		results, err := r.RunAll()
		if err != nil {
			fail(errors.Wrapf(err, "worker %d, repetition %d", workerNum, rep))
			return
		}
		h.completed.Inc()
		for _, res := range results {
			if res.Failed() {
				h.failed.Inc()
			}
		}
		h.sp.Send(&stats.Sample{Worker: workerNum, Repetition: rep, Results: results})
	}
}

// summary prints the results of the run. A single repetition prints just
// the workload report; more print the aggregated statistics as well.
func (h *Harness) summary(took time.Duration) error {
	if err := bench.Write(h.out, h.cfg.Format, h.sp.LastResults()); err != nil {
		return err
	}
	if h.sp.Measured() <= 1 || (h.cfg.Format != bench.FormatText && h.cfg.Format != "") {
		return nil
	}
	if err := h.sp.WriteSummary(h.out, h.cfg.Workers); err != nil {
		return err
	}
	_, err := fmt.Fprintf(h.out, "wall clock time: %fsec\n", took.Seconds())
	return err
}

// report handles periodic reporting of progress
func (h *Harness) report(period time.Duration, done <-chan struct{}) {
	start := time.Now()
	prevTime := start
	prevCount := uint64(0)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	fmt.Fprintf(h.errOut, "time,per. rep/s,rep total,overall rep/s,failed workloads\n")
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			count := h.completed.Load()
			sinceStart := now.Sub(start)
			took := now.Sub(prevTime)
			repRate := float64(count-prevCount) / took.Seconds()
			overallRate := float64(count) / sinceStart.Seconds()
			fmt.Fprintf(h.errOut, "%d,%0.2f,%E,%0.2f,%d\n", now.Unix(), repRate, float64(count), overallRate, h.failed.Load())
			prevCount = count
			prevTime = now
		}
	}
}

func writeMemProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create memory profile %s", path)
	}
	if err := pprof.WriteHeapProfile(f); err != nil {
		f.Close()
		return errors.Wrap(err, "could not write memory profile")
	}
	return f.Close()
}
