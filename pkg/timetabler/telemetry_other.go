//go:build !unix

package timetabler

import "time"

// CPU usage is not sampled on this platform.
func processCPUTime() time.Duration {
	return 0
}
