package utils

import (
	"fmt"
)

// IsIn reports whether s is one of arr.
func IsIn(s string, arr []string) bool {
	for _, x := range arr {
		if s == x {
			return true
		}
	}
	return false
}

const (
	errWorkersZero     = "incorrect workers configuration: workers = 0"
	errBurnInTooLarge  = "incorrect burn-in configuration: burn-in %d >= total repetitions %d"
	errRepetitionsZero = "incorrect repetitions configuration: repetitions = 0"
)

// ValidateRepetitions checks the combination of workers, total repetitions
// and the number of repetitions to discard as burn-in.
func ValidateRepetitions(workers uint, repetitions, burnIn uint64) error {
	if workers == 0 {
		return fmt.Errorf(errWorkersZero)
	}
	if repetitions == 0 {
		return fmt.Errorf(errRepetitionsZero)
	}
	if burnIn >= repetitions {
		// Need at least one measured repetition
		return fmt.Errorf(errBurnInTooLarge, burnIn, repetitions)
	}
	return nil
}
