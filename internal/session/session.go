// Package session holds the process level context of a benchmark
// invocation: when it started, which build is running and on what host.
// The top-level command creates one Session and passes it down.
package session

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/process"
)

const separator = "----------------------------------------"

// HostInfo describes the machine the benchmark runs on.
type HostInfo struct {
	Hostname      string `json:"Hostname"`
	OS            string `json:"OS"`
	Platform      string `json:"Platform"`
	KernelVersion string `json:"KernelVersion"`
	CPUs          int    `json:"CPUs"`
}

// ProcessStats is a point-in-time sample of the benchmark process.
type ProcessStats struct {
	RSS        uint64  `json:"RSS"`
	VMS        uint64  `json:"VMS"`
	CPUPercent float64 `json:"CPUPercent"`
}

// Session is the explicit replacement for process-wide start-up state.
type Session struct {
	Version   string
	StartTime time.Time
	PID       int
	GoVersion string
	Host      HostInfo

	nowFn func() time.Time
}

// change for testing
var hostInfo = func() (HostInfo, error) {
	info, err := host.Info()
	if err != nil {
		return HostInfo{}, err
	}
	return HostInfo{
		Hostname:      info.Hostname,
		OS:            info.OS,
		Platform:      info.Platform,
		KernelVersion: info.KernelVersion,
		CPUs:          runtime.NumCPU(),
	}, nil
}

// New captures the start of a session. Host details that cannot be read are
// left empty; they are informational only.
func New(version string) *Session {
	s := &Session{
		Version:   version,
		StartTime: time.Now(),
		PID:       os.Getpid(),
		GoVersion: runtime.Version(),
		nowFn:     time.Now,
	}
	if info, err := hostInfo(); err == nil {
		s.Host = info
	} else {
		s.Host = HostInfo{OS: runtime.GOOS, CPUs: runtime.NumCPU()}
	}
	return s
}

// Uptime returns how long the session has been running.
func (s *Session) Uptime() time.Duration {
	return s.nowFn().Sub(s.StartTime)
}

// WriteBanner prints the start-up banner.
func (s *Session) WriteBanner(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"microbench initialized\nVersion: %s\nGo: %s %s/%s\nHost: %s (%s %s, %d CPUs)\n%s\n\n",
		s.Version, s.GoVersion, runtime.GOOS, runtime.GOARCH,
		s.Host.Hostname, s.Host.Platform, s.Host.KernelVersion, s.Host.CPUs,
		separator)
	return err
}

// WriteHello prints the session uptime and process id.
func (s *Session) WriteHello(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Hello from microbench!\nRuntime: %d ms\nProcess ID: %d\n\n",
		s.Uptime().Milliseconds(), s.PID)
	return err
}

// ProcessStats samples memory and CPU usage of the current process.
func (s *Session) ProcessStats() (ProcessStats, error) {
	p, err := process.NewProcess(int32(s.PID))
	if err != nil {
		return ProcessStats{}, errors.Wrapf(err, "could not open process %d", s.PID)
	}
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return ProcessStats{}, errors.Wrap(err, "could not read process memory")
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return ProcessStats{}, errors.Wrap(err, "could not read process cpu")
	}
	return ProcessStats{RSS: memInfo.RSS, VMS: memInfo.VMS, CPUPercent: cpu}, nil
}

// Metadata returns the session description recorded in results files.
func (s *Session) Metadata() map[string]interface{} {
	md := map[string]interface{}{
		"Version":   s.Version,
		"PID":       s.PID,
		"GoVersion": s.GoVersion,
		"Host":      s.Host,
		"UptimeMs":  s.Uptime().Milliseconds(),
	}
	if ps, err := s.ProcessStats(); err == nil {
		md["Process"] = ps
	}
	return md
}
