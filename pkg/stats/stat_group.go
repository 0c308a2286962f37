package stats

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// highest duration the histogram can hold, in nanoseconds
const hdrHighestNanos = int64(3600 * 1e9)

// statGroup collects simple streaming statistics over durations given in
// microseconds.
type statGroup struct {
	min    float64
	max    float64
	mean   float64
	sum    float64
	values []float64

	// used for stddev calculations
	m      float64
	s      float64
	stdDev float64

	count int64

	durationHDRHistogram *hdrhistogram.Histogram
}

// newStatGroup returns a new statGroup with an initial size
func newStatGroup(size uint64) *statGroup {
	return &statGroup{
		values:               make([]float64, size),
		count:                0,
		durationHDRHistogram: hdrhistogram.New(1, hdrHighestNanos, 3),
	}
}

// median returns the median value of the statGroup
func (s *statGroup) median() float64 {
	sort.Float64s(s.values[:s.count])
	if s.count == 0 {
		return 0
	} else if s.count%2 == 0 {
		idx := s.count / 2
		return (s.values[idx] + s.values[idx-1]) / 2.0
	} else {
		return s.values[s.count/2]
	}
}

// quantile returns the q-th percentile (0-100) from the histogram, in
// microseconds.
func (s *statGroup) quantile(q float64) float64 {
	if s.durationHDRHistogram.TotalCount() == 0 {
		return 0
	}
	if q <= 0 {
		return s.min
	}
	return float64(s.durationHDRHistogram.ValueAtQuantile(q)) / 1e3
}

// push updates a statGroup with a new value.
func (s *statGroup) push(n float64) {
	// values past the histogram range still count towards the moments
	_ = s.durationHDRHistogram.RecordValue(int64(math.Round(n * 1e3)))

	if s.count == 0 {
		s.min = n
		s.max = n
		s.mean = n
		s.count = 1
		s.sum = n

		s.m = n
		s.s = 0.0
		s.stdDev = 0.0
		if len(s.values) > 0 {
			s.values[0] = n
		} else {
			s.values = append(s.values, n)
		}
		return
	}

	if n < s.min {
		s.min = n
	}
	if n > s.max {
		s.max = n
	}

	s.sum += n

	// constant-space mean update:
	sum := s.mean*float64(s.count) + n
	s.mean = sum / float64(s.count+1)
	if int(s.count) == len(s.values) {
		s.values = append(s.values, n)
	} else {
		s.values[s.count] = n
	}

	s.count++

	oldM := s.m
	s.m += (n - oldM) / float64(s.count)
	s.s += (n - oldM) * (n - s.m)
	s.stdDev = math.Sqrt(s.s / (float64(s.count) - 1.0))
}

// string makes a simple description of a statGroup.
func (s *statGroup) string() string {
	return fmt.Sprintf("min: %10.2fμs, med: %10.2fμs, mean: %10.2fμs, max: %10.2fμs, stddev: %9.2fμs, p95: %10.2fμs, p99: %10.2fμs, count: %d",
		s.min, s.median(), s.mean, s.max, s.stdDev, s.quantile(95.0), s.quantile(99.0), s.count)
}

func (s *statGroup) write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "  %s\n", s.string())
	return err
}

func (s *statGroup) quantileMap() map[string]float64 {
	return map[string]float64{
		"q0":   s.quantile(0.0),
		"q50":  s.quantile(50.0),
		"q95":  s.quantile(95.0),
		"q99":  s.quantile(99.0),
		"q999": s.quantile(99.90),
		"q100": s.quantile(100.0),
	}
}
