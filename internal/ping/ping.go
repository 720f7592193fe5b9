// Package ping measures local round-trip times with the system ping binary.
package ping

import (
	"fmt"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"time"
)

// Pinger implements models.Pinger using the ping command
type Pinger struct{}

// New creates a new Pinger
func New() *Pinger {
	return &Pinger{}
}

// Ping sends a single echo request and returns the RTT in milliseconds
func (p *Pinger) Ping(target string, timeout time.Duration) (float64, error) {
	// Platform-specific ping command
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("ping", "-n", "1", "-w", strconv.Itoa(int(timeout.Milliseconds())), target)
	} else {
		cmd = exec.Command("ping", "-c", "1", "-W", strconv.Itoa(int(timeout.Seconds())), target)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ping %s: %w", target, err)
	}

	rtt := parsePingOutput(string(output))
	if rtt <= 0 {
		return 0, fmt.Errorf("ping %s: no round-trip time in output", target)
	}
	return rtt, nil
}

// Linux/Mac: "time=XX.X ms", Windows: "time=XXms" or "time<1ms"
var rttPatterns = []*regexp.Regexp{
	regexp.MustCompile(`time[=<]([0-9.]+)\s*ms`),
	regexp.MustCompile(`round-trip min/avg/max(?:/stddev)? = [0-9.]+/([0-9.]+)/`),
}

// parsePingOutput parses RTT from ping output, 0 when absent
func parsePingOutput(output string) float64 {
	for _, re := range rttPatterns {
		matches := re.FindStringSubmatch(output)
		if len(matches) > 1 {
			if rtt, err := strconv.ParseFloat(matches[1], 64); err == nil {
				return rtt
			}
		}
	}
	return 0
}
