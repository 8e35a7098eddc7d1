package health

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/firefly-engineering/vivarium/internal/config"
	"github.com/firefly-engineering/vivarium/internal/logging"
	"github.com/firefly-engineering/vivarium/internal/port"
)

// Status represents the health of one service.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusStopped   Status = "stopped"

	// DefaultTimeout bounds each individual check.
	DefaultTimeout = 2 * time.Second
)

// Result is the outcome of one service check.
type Result struct {
	Service string
	Port    int
	Status  Status
	Detail  string
	Latency time.Duration
}

// Healthy reports whether the service answered.
func (r Result) Healthy() bool {
	return r.Status == StatusHealthy
}

// Checker runs service checks against a host.
type Checker struct {
	// Host is the address services are published on.
	Host    string
	Timeout time.Duration
	HTTP    *http.Client
}

// NewChecker returns a Checker for services published on localhost.
func NewChecker() *Checker {
	return &Checker{
		Host:    "127.0.0.1",
		Timeout: DefaultTimeout,
		HTTP:    &http.Client{Timeout: DefaultTimeout},
	}
}

func (c *Checker) addr(p int) string {
	return net.JoinHostPort(c.Host, strconv.Itoa(p))
}

func (c *Checker) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c *Checker) result(service string, p int, start time.Time, err error) Result {
	r := Result{Service: service, Port: p, Latency: time.Since(start)}
	if err != nil {
		r.Status = StatusUnhealthy
		r.Detail = err.Error()
		logging.Debug("health check failed", "service", service, "port", p, "error", err)
		return r
	}
	r.Status = StatusHealthy
	return r
}

// Postgres checks that something accepts TCP connections on the port.
func (c *Checker) Postgres(ctx context.Context, p int) Result {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.addr(p))
	if err == nil {
		conn.Close()
	}
	return c.result("postgres", p, start, err)
}

// Redis sends PING to the cache.
func (c *Checker) Redis(ctx context.Context, p int) Result {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	client := redis.NewClient(&redis.Options{
		Addr:        c.addr(p),
		DialTimeout: c.timeout(),
		ReadTimeout: c.timeout(),
		MaxRetries:  -1,
	})
	defer client.Close()

	err := client.Ping(ctx).Err()
	return c.result("redis", p, start, err)
}

// S3 requests the object store's health endpoint.
func (c *Checker) S3(ctx context.Context, p int) Result {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	url := fmt.Sprintf("http://%s/health", c.addr(p))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return c.result("s3", p, start, err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return c.result("s3", p, start, err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		err = fmt.Errorf("health endpoint returned %s", resp.Status)
	}
	return c.result("s3", p, start, err)
}

// CheckProject checks every configured service in a fixed order.
func (c *Checker) CheckProject(ctx context.Context, services *config.Services, ports port.Map) []Result {
	if services == nil {
		return nil
	}
	var results []Result
	if services.Postgres != nil {
		results = append(results, c.Postgres(ctx, ports.Postgres))
	}
	if services.Redis {
		results = append(results, c.Redis(ctx, ports.Redis))
	}
	if services.S3 != nil {
		results = append(results, c.S3(ctx, ports.S3))
	}
	return results
}

// Summarize folds per-service results into one status: healthy when every
// service answered, stopped when none did.
func Summarize(results []Result) Status {
	healthy := 0
	for _, r := range results {
		if r.Healthy() {
			healthy++
		}
	}
	switch {
	case healthy == len(results):
		return StatusHealthy
	case healthy == 0:
		return StatusStopped
	default:
		return StatusUnhealthy
	}
}

// FormatDuration renders a duration the way status tables show uptime.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	} else if d < 24*time.Hour {
		hours := int(d.Hours())
		mins := int(d.Minutes()) % 60
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}
