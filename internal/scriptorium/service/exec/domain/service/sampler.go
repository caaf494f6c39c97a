package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/domain/entity"
)

// clockTicksPerSecond is the kernel USER_HZ value, fixed at 100 on the
// platforms this targets.
const clockTicksPerSecond = 100.0

// resourceSampler polls /proc for one pid and keeps peak figures. On systems
// without procfs every sample fails silently and the metrics stay zero.
type resourceSampler struct {
	pid      int
	interval time.Duration

	peakRSS    uint64
	peakCPU    float64
	ioRead     uint64
	ioWritten  uint64
	lastCPU    float64
	lastSample time.Time
}

func newResourceSampler(pid int, interval time.Duration) *resourceSampler {
	return &resourceSampler{pid: pid, interval: interval}
}

// run polls until the context is done, then returns what was observed.
func (s *resourceSampler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sample()
	for {
		select {
		case <-ctx.Done():
			s.sample()
			return
		case <-ticker.C:
			s.sample()
		}
	}
}

func (s *resourceSampler) sample() {
	now := time.Now()

	if rss, err := readRSS(s.pid); err == nil && rss > s.peakRSS {
		s.peakRSS = rss
	}

	if cpuSeconds, err := readCPUSeconds(s.pid); err == nil {
		if !s.lastSample.IsZero() {
			elapsed := now.Sub(s.lastSample).Seconds()
			if elapsed > 0 {
				pct := (cpuSeconds - s.lastCPU) / elapsed * 100
				if pct > s.peakCPU {
					s.peakCPU = pct
				}
			}
		}
		s.lastCPU = cpuSeconds
		s.lastSample = now
	}

	if read, written, err := readIO(s.pid); err == nil {
		s.ioRead = read
		s.ioWritten = written
	}
}

// fill copies the observed peaks into the metrics record.
func (s *resourceSampler) fill(m *entity.Metrics) {
	m.PeakMemoryBytes = s.peakRSS
	m.CPUPercentPeak = s.peakCPU
	m.IOBytesRead = s.ioRead
	m.IOBytesWritten = s.ioWritten
}

func readRSS(pid int) (uint64, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/status", pid))
	if err != nil {
		return 0, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0, err
		}
		return kb * 1024, nil
	}
	return 0, fmt.Errorf("VmRSS not found for pid %d", pid)
}

func readCPUSeconds(pid int) (float64, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return 0, err
	}
	// The comm field may contain spaces; fields count from after the
	// closing paren. utime and stime are fields 14 and 15 overall.
	idx := strings.LastIndexByte(string(data), ')')
	if idx < 0 {
		return 0, fmt.Errorf("malformed stat for pid %d", pid)
	}
	fields := strings.Fields(string(data)[idx+1:])
	if len(fields) < 13 {
		return 0, fmt.Errorf("malformed stat for pid %d", pid)
	}
	utime, err := strconv.ParseUint(fields[11], 10, 64)
	if err != nil {
		return 0, err
	}
	stime, err := strconv.ParseUint(fields[12], 10, 64)
	if err != nil {
		return 0, err
	}
	return float64(utime+stime) / clockTicksPerSecond, nil
}

func readIO(pid int) (read, written uint64, err error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/io", pid))
	if err != nil {
		return 0, 0, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		v, perr := strconv.ParseUint(fields[1], 10, 64)
		if perr != nil {
			continue
		}
		switch fields[0] {
		case "read_bytes:":
			read = v
		case "write_bytes:":
			written = v
		}
	}
	return read, written, nil
}
