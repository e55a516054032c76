// file: internal/sysinfo/sysinfo.go
// version: 1.1.0
// guid: 8b9c0d1e-2f3a-4b5c-6d7e-8f9a0b1c2d3e

package sysinfo

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// availableMemoryProvider allows tests to override the platform probe.
var availableMemoryProvider = availableMemory

// perJobMemoryBytes is the working-set assumption per concurrent persistence
// transaction: a backup copy plus a temp output of a large audiobook.
const perJobMemoryBytes = 512 * 1024 * 1024

// maxSuggestedJobs caps the hint; persistence is disk-bound well before CPU.
const maxSuggestedJobs = 8

// SuggestedParallelJobs derives a max-parallel-jobs hint from CPU count and
// available memory. Always at least 1.
func SuggestedParallelJobs() int {
	jobs := runtime.NumCPU()
	if jobs > maxSuggestedJobs {
		jobs = maxSuggestedJobs
	}

	if avail := availableMemoryProvider(); avail > 0 {
		byMemory := int(avail / perJobMemoryBytes)
		if byMemory < jobs {
			jobs = byMemory
		}
	}

	if jobs < 1 {
		jobs = 1
	}
	return jobs
}

// availableMemory returns available system memory in bytes, or 0 when it
// cannot be determined. Only the Linux probe reads the real figure; other
// platforms fall back to the CPU-only heuristic.
func availableMemory() uint64 {
	if runtime.GOOS != "linux" {
		return 0
	}
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "MemAvailable:") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				kb, err := strconv.ParseUint(fields[1], 10, 64)
				if err == nil {
					return kb * 1024
				}
			}
		}
	}
	return 0
}
