package port

import (
	"context"
	"fmt"
	goruntime "runtime"
	"strings"
	"time"

	"github.com/firefly-engineering/vivarium/internal/logging"
	"github.com/firefly-engineering/vivarium/internal/system"
)

// Availability is the outcome of probing a port.
type Availability int

const (
	// Inconclusive means the probe could not run.
	Inconclusive Availability = iota
	// Free means no listener was found.
	Free
	// InUse means a listener holds the port.
	InUse
)

func (a Availability) String() string {
	switch a {
	case Free:
		return "free"
	case InUse:
		return "in-use"
	default:
		return "inconclusive"
	}
}

// Prober checks whether a TCP port has a listener. Implementations never fail;
// problems are reported as Inconclusive.
type Prober interface {
	Probe(ctx context.Context, port int) Availability
}

// Policy decides how an Inconclusive probe is treated.
type Policy string

const (
	// FailOpen treats Inconclusive as free.
	FailOpen Policy = "fail-open"
	// FailClosed treats Inconclusive as in use.
	FailClosed Policy = "fail-closed"
)

// ParsePolicy parses a policy name. The empty string means FailOpen.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", FailOpen:
		return FailOpen, nil
	case FailClosed:
		return FailClosed, nil
	default:
		return "", fmt.Errorf("invalid probe policy %q (must be %s or %s)", s, FailOpen, FailClosed)
	}
}

// Blocks reports whether a probe result should make a candidate unusable.
func (p Policy) Blocks(a Availability) bool {
	switch a {
	case InUse:
		return true
	case Inconclusive:
		return p == FailClosed
	default:
		return false
	}
}

// probeTimeout bounds a single socket-table query.
const probeTimeout = 5 * time.Second

// SocketProber queries the OS socket table through a command executor.
type SocketProber struct {
	Exec system.CommandExecutor

	// GOOS overrides the detected operating system. Empty means runtime.GOOS.
	GOOS string
}

// NewSocketProber returns a prober using the default executor.
func NewSocketProber() *SocketProber {
	return &SocketProber{Exec: system.DefaultExecutor()}
}

// Probe reports whether port has a TCP listener.
func (p *SocketProber) Probe(ctx context.Context, port int) Availability {
	goos := p.GOOS
	if goos == "" {
		goos = goruntime.GOOS
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var result Availability
	switch goos {
	case "darwin":
		result = p.probeLsof(ctx, port)
	case "linux":
		result = p.probeSS(ctx, port)
	default:
		result = Inconclusive
	}

	logging.Debug("probed port", "port", port, "os", goos, "result", result)
	return result
}

func (p *SocketProber) probeSS(ctx context.Context, port int) Availability {
	out, err := p.Exec.Execute(ctx, "ss", "-tlnH", fmt.Sprintf("sport = :%d", port))
	if err != nil {
		logging.Debug("ss probe failed", "port", port, "error", err)
		return Inconclusive
	}
	if strings.TrimSpace(string(out)) != "" {
		return InUse
	}
	return Free
}

func (p *SocketProber) probeLsof(ctx context.Context, port int) Availability {
	out, err := p.Exec.Execute(ctx, "lsof", fmt.Sprintf("-iTCP:%d", port), "-sTCP:LISTEN")
	trimmed := strings.TrimSpace(string(out))
	if err != nil {
		// lsof exits 1 when nothing matches.
		if system.ExitCode(err) == 1 && trimmed == "" {
			return Free
		}
		logging.Debug("lsof probe failed", "port", port, "error", err)
		return Inconclusive
	}
	if trimmed != "" {
		return InUse
	}
	return Free
}

// StaticProber answers from a fixed table. Ports not listed are Free.
type StaticProber map[int]Availability

// Probe returns the configured availability for port.
func (s StaticProber) Probe(_ context.Context, port int) Availability {
	if a, ok := s[port]; ok {
		return a
	}
	return Free
}
