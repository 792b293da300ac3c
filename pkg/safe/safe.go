// Package safe provides overflow-checked numeric conversions and arithmetic.
package safe

import (
	"fmt"
	"math"
)

// Integer is the set of integer types accepted by the conversions.
type Integer interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64
}

func signed[T Integer](v T) (int64, bool) {
	switch any(v).(type) {
	case int, int32, int64:
		return int64(v), true
	}
	return 0, false
}

// Uint32 converts v to uint32, failing when it is negative or too large.
func Uint32[T Integer](v T) (uint32, error) {
	if s, ok := signed(v); ok {
		if s < 0 || s > math.MaxUint32 {
			return 0, fmt.Errorf("value %d out of uint32 range", s)
		}
		return uint32(s), nil
	}
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("value %d out of uint32 range", uint64(v))
	}
	return uint32(v), nil
}

// Uint64 converts v to uint64, failing when it is negative.
func Uint64[T Integer](v T) (uint64, error) {
	if s, ok := signed(v); ok {
		if s < 0 {
			return 0, fmt.Errorf("value %d out of uint64 range", s)
		}
		return uint64(s), nil
	}
	return uint64(v), nil
}

// Int64 converts v to int64, failing when it exceeds math.MaxInt64.
func Int64[T Integer](v T) (int64, error) {
	if s, ok := signed(v); ok {
		return s, nil
	}
	if uint64(v) > math.MaxInt64 {
		return 0, fmt.Errorf("value %d out of int64 range", uint64(v))
	}
	return int64(v), nil
}

// AddUint64 returns a+b, failing on overflow.
func AddUint64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, fmt.Errorf("sum %d + %d overflows uint64", a, b)
	}
	return a + b, nil
}
