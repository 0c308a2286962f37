package pacing

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	intervalUnit        = time.Millisecond
	intervalSeparator   = ","
	rangeSeparator      = "-"
	intervalFormatError = "cooldown interval could not be parsed as integer constant or range. Required: 'x' or 'x-y' | x,y are uint x<y"
)

var errIntervalFormat = errors.New(intervalFormatError)

func parseIntervals(intervals string, numWorkers int, initialRand *rand.Rand) (map[int]intervalFn, error) {
	parts := strings.Split(intervals, intervalSeparator)
	fns := make(map[int]intervalFn, numWorkers)
	current := 0
	for i := 0; i < numWorkers; i++ {
		// each worker draws from its own source so workers don't contend
		workerRand := rand.New(rand.NewSource(initialRand.Int63()))
		fn, err := parseSingleInterval(strings.TrimSpace(parts[current]), workerRand)
		if err != nil {
			return nil, err
		}
		fns[i] = fn
		if current < len(parts)-1 {
			current++
		}
	}
	return fns, nil
}

// parseSingleInterval accepts a constant ('3') or a range ('2-5').
func parseSingleInterval(s string, r *rand.Rand) (intervalFn, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return nil, errIntervalFormat
		}
		d := time.Duration(n) * intervalUnit
		return func() time.Duration { return d }, nil
	}

	lo, hi, err := parseRange(s)
	if err != nil {
		return nil, err
	}
	return func() time.Duration {
		return time.Duration(lo+r.Intn(hi-lo)) * intervalUnit
	}, nil
}

func parseRange(s string) (int, int, error) {
	parts := strings.SplitN(s, rangeSeparator, 2)
	if len(parts) != 2 {
		return 0, 0, errIntervalFormat
	}
	lo, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, errIntervalFormat
	}
	hi, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, errIntervalFormat
	}
	if lo < 0 || lo >= hi {
		return 0, 0, errIntervalFormat
	}
	return lo, hi, nil
}
