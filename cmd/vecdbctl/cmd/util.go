package cmd

import (
	"fmt"
	"strconv"
	"strings"
)

// parsePositiveInt parses s as a positive int, naming field in any error.
func parsePositiveInt(s, field string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", field, s)
	}
	if v < 1 {
		return 0, fmt.Errorf("%s must be >= 1, got %d", field, v)
	}
	return v, nil
}

// parseVector parses a comma-separated list of floats into a vector.
func parseVector(s string) ([]float32, error) {
	fields := strings.Split(s, ",")
	vec := make([]float32, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", f, err)
		}
		vec = append(vec, float32(v))
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("vector must have at least one component")
	}
	return vec, nil
}

// parseUint64 parses s as a uint64 id.
func parseUint64(s, field string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", field, s)
	}
	return v, nil
}
