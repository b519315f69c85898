package audioio

import (
	"fmt"
	"strconv"
	"strings"
)

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParseSeconds parses a duration in seconds, accepting "loop" as -1.
func ParseSeconds(raw string) (float64, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return 0, fmt.Errorf("empty value (use seconds > 0 or 'loop')")
	}
	if v == "loop" {
		return -1, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%q (use seconds > 0 or 'loop')", raw)
	}
	if f <= 0 {
		return 0, fmt.Errorf("%g (must be > 0 or 'loop')", f)
	}
	return f, nil
}

// ParseWorkers parses a worker count; "auto" yields 0 (use GOMAXPROCS).
func ParseWorkers(raw string) (int, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return 0, fmt.Errorf("empty value (use integer >= 1 or 'auto')")
	}
	if v == "auto" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%q (use integer >= 1 or 'auto')", raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("%d (must be >= 1 or 'auto')", n)
	}
	return n, nil
}
