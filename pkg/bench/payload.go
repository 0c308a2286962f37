package bench

import (
	"fmt"
	"strconv"
)

// Payload is the value carried out of a timed loop. Its only purpose is to
// give the loop an observable result: it is always returned and reported so
// the work cannot be discarded.
type Payload struct {
	isFloat bool
	i       int64
	f       float64
}

// IntPayload wraps an integer accumulator.
func IntPayload(v int64) Payload {
	return Payload{i: v}
}

// FloatPayload wraps a floating-point accumulator.
func FloatPayload(v float64) Payload {
	return Payload{isFloat: true, f: v}
}

// IsFloat reports whether the payload holds a float64.
func (p Payload) IsFloat() bool {
	return p.isFloat
}

// Int returns the integer value; float payloads are truncated.
func (p Payload) Int() int64 {
	if p.isFloat {
		return int64(p.f)
	}
	return p.i
}

// Float returns the value as a float64.
func (p Payload) Float() float64 {
	if p.isFloat {
		return p.f
	}
	return float64(p.i)
}

// Equal reports whether both payloads hold the same kind and value.
func (p Payload) Equal(o Payload) bool {
	if p.isFloat != o.isFloat {
		return false
	}
	if p.isFloat {
		return p.f == o.f
	}
	return p.i == o.i
}

func (p Payload) String() string {
	if p.isFloat {
		return strconv.FormatFloat(p.f, 'f', 6, 64)
	}
	return strconv.FormatInt(p.i, 10)
}

// MarshalJSON encodes the payload as a bare JSON number.
func (p Payload) MarshalJSON() ([]byte, error) {
	if p.isFloat {
		return []byte(strconv.FormatFloat(p.f, 'g', -1, 64)), nil
	}
	return []byte(strconv.FormatInt(p.i, 10)), nil
}

// GoString is used by %#v, mostly in test failures.
func (p Payload) GoString() string {
	if p.isFloat {
		return fmt.Sprintf("FloatPayload(%v)", p.f)
	}
	return fmt.Sprintf("IntPayload(%d)", p.i)
}
