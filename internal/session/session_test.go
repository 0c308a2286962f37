package session

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestNewFallsBackWithoutHostInfo(t *testing.T) {
	old := hostInfo
	defer func() { hostInfo = old }()
	hostInfo = func() (HostInfo, error) { return HostInfo{}, errors.New("no host") }

	s := New("1.2.3")
	if s.Version != "1.2.3" {
		t.Errorf("incorrect version: got %s", s.Version)
	}
	if s.PID != os.Getpid() {
		t.Errorf("incorrect pid: got %d want %d", s.PID, os.Getpid())
	}
	if s.Host.CPUs == 0 || s.Host.OS == "" {
		t.Errorf("fallback host info not filled: %+v", s.Host)
	}
}

func TestUptimeAndHello(t *testing.T) {
	s := New("dev")
	start := time.Unix(100, 0)
	s.StartTime = start
	s.nowFn = func() time.Time { return start.Add(1500 * time.Millisecond) }

	if got := s.Uptime(); got != 1500*time.Millisecond {
		t.Errorf("incorrect uptime: got %v", got)
	}

	var buf bytes.Buffer
	require.NoError(t, s.WriteHello(&buf))
	if !strings.Contains(buf.String(), "Runtime: 1500 ms\n") {
		t.Errorf("hello line missing runtime: %q", buf.String())
	}
}

func TestWriteBanner(t *testing.T) {
	old := hostInfo
	defer func() { hostInfo = old }()
	hostInfo = func() (HostInfo, error) {
		return HostInfo{Hostname: "bench01", Platform: "ubuntu", KernelVersion: "6.1", CPUs: 8}, nil
	}

	s := New("0.1.0")
	var buf bytes.Buffer
	require.NoError(t, s.WriteBanner(&buf))
	out := buf.String()
	for _, want := range []string{"Version: 0.1.0", "Host: bench01 (ubuntu 6.1, 8 CPUs)", separator} {
		if !strings.Contains(out, want) {
			t.Errorf("banner missing %q:\n%s", want, out)
		}
	}
}

func TestMetadata(t *testing.T) {
	s := New("0.1.0")
	md := s.Metadata()
	for _, k := range []string{"Version", "PID", "GoVersion", "Host", "UptimeMs"} {
		if _, ok := md[k]; !ok {
			t.Errorf("metadata missing %s", k)
		}
	}
}
