package runtime

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"

	"github.com/firefly-engineering/vivarium/internal/logging"
)

// Labels docker compose puts on every container it creates.
const (
	LabelComposeProject = "com.docker.compose.project"
	LabelComposeService = "com.docker.compose.service"
)

// Container is a summary of one container in a compose project.
type Container struct {
	Name    string
	Service string
	Image   string
	// State is the engine state, e.g. "running" or "exited".
	State string
	// Status is the human readable status, e.g. "Up 3 minutes (healthy)".
	Status  string
	Created time.Time
	// StartedAt is when the container last started; zero if unknown or not running.
	StartedAt time.Time
}

// Running reports whether the container is running.
func (c Container) Running() bool {
	return c.State == "running"
}

// Containers lists the containers belonging to a compose project.
type Containers interface {
	List(ctx context.Context, composeName string) ([]Container, error)
	Close() error
}

// containerAPI is the subset of the Docker API client used here.
type containerAPI interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
	Close() error
}

// DockerContainers implements Containers with the Docker Engine API.
type DockerContainers struct {
	api containerAPI
}

// NewDockerContainers connects to the engine configured by DOCKER_HOST and
// friends, negotiating the API version.
func NewDockerContainers() (*DockerContainers, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &DockerContainers{api: cli}, nil
}

// List returns every container (running or not) labelled with composeName,
// sorted by service name. Running containers are inspected for their start
// time.
func (d *DockerContainers) List(ctx context.Context, composeName string) ([]Container, error) {
	summaries, err := d.api.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", LabelComposeProject+"="+composeName)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	out := make([]Container, 0, len(summaries))
	for _, s := range summaries {
		c := fromSummary(s)
		if c.Running() {
			c.StartedAt = d.startedAt(ctx, s.ID)
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Service != out[j].Service {
			return out[i].Service < out[j].Service
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Close releases the API client.
func (d *DockerContainers) Close() error {
	return d.api.Close()
}

func (d *DockerContainers) startedAt(ctx context.Context, id string) time.Time {
	info, err := d.api.ContainerInspect(ctx, id)
	if err != nil {
		logging.Debug("container inspect failed", "id", id, "error", err)
		return time.Time{}
	}
	if info.ContainerJSONBase == nil || info.State == nil {
		return time.Time{}
	}
	started, err := time.Parse(time.RFC3339Nano, info.State.StartedAt)
	if err != nil {
		return time.Time{}
	}
	return started
}

func fromSummary(s container.Summary) Container {
	name := s.ID
	if len(name) > 12 {
		name = name[:12]
	}
	if len(s.Names) > 0 {
		name = strings.TrimPrefix(s.Names[0], "/")
	}
	return Container{
		Name:    name,
		Service: s.Labels[LabelComposeService],
		Image:   s.Image,
		State:   string(s.State),
		Status:  s.Status,
		Created: time.Unix(s.Created, 0),
	}
}
