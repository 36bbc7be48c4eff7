// Package workers sizes worker pools from the available CPU budget.
package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns the worker count for a task type, respecting container CPU
// limits via GOMAXPROCS. The multiplier adjusts for task characteristics
// (1.0 CPU-bound, 2.0 I/O-bound); limit caps the result, 0 meaning no cap.
// The RENDER_WORKERS environment variable overrides everything.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("RENDER_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	workers := int(float64(runtime.GOMAXPROCS(0)) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}
	return workers
}

// ForRender returns the worker count for thumbnail rendering, which mixes
// CPU-heavy decoding with external tool waits.
func ForRender(limit int) int {
	return Count(1.0, limit)
}
