package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MockContainer is one synthetic container held by a MockRuntime.
type MockContainer struct {
	ID      string
	Name    string
	Image   string
	Created string
	State   string
	// Ports maps "containerPort/proto" to host bindings, mirroring the
	// NetworkSettings.Ports shape ("80/tcp" -> [{HostIp, HostPort}]).
	Ports    map[string][]MockPortBinding
	Networks []string
	Mounts   []MockMount
	Env      []string
	Labels   map[string]string
	CPU      int64
	Memory   int64
}

type MockPortBinding struct {
	HostIP   string
	HostPort string
}

type MockMount struct {
	Source      string
	Destination string
	Type        string
	RW          bool
}

// MockRuntime synthesizes runtime CLI behavior in memory. It implements
// Runtime so everything above the CLI boundary can be exercised without a
// docker binary or daemon.
type MockRuntime struct {
	mu         sync.Mutex
	containers []MockContainer

	// Failure injection
	Unavailable bool             // every call fails with ErrRuntimeUnavailable
	InspectErr  map[string]error // per-id inspect failures
	ActionErr   error            // returned by ContainerAction after validation
}

func NewMockRuntime(containers ...MockContainer) *MockRuntime {
	return &MockRuntime{containers: containers, InspectErr: map[string]error{}}
}

// Add appends a container to the mock state.
func (m *MockRuntime) Add(c MockContainer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.containers = append(m.containers, c)
}

func (m *MockRuntime) ContainerIDs(_ context.Context, all bool) ([]string, error) {
	if m.Unavailable {
		return nil, ErrRuntimeUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := []string{}
	for _, c := range m.containers {
		if all || c.State == "running" {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (m *MockRuntime) ContainerSummaries(_ context.Context, all bool) ([]Summary, error) {
	if m.Unavailable {
		return nil, ErrRuntimeUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Summary
	for _, c := range m.containers {
		if !all && c.State != "running" {
			continue
		}
		out = append(out, Summary{
			ID:      shortID(c.ID),
			Names:   c.Name,
			Image:   c.Image,
			State:   c.State,
			Status:  c.State,
			Ports:   portsString(c.Ports),
			Created: c.Created,
		})
	}
	return out, nil
}

func (m *MockRuntime) ContainerInspect(_ context.Context, id string) ([]byte, error) {
	if m.Unavailable {
		return nil, ErrRuntimeUnavailable
	}
	if err := ValidateContainerID(id); err != nil {
		return nil, err
	}
	if err, ok := m.InspectErr[id]; ok {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.containers {
		if c.ID == id || shortID(c.ID) == id {
			return c.inspectJSON()
		}
	}
	return nil, fmt.Errorf("inspect %s: no such container", id)
}

func (m *MockRuntime) ContainerAction(_ context.Context, action Action, id string) error {
	switch action {
	case ActionStart, ActionStop:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if err := ValidateContainerID(id); err != nil {
		return err
	}
	if m.Unavailable {
		return ErrRuntimeUnavailable
	}
	if m.ActionErr != nil {
		return m.ActionErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.containers {
		c := &m.containers[i]
		if c.ID == id || shortID(c.ID) == id {
			if action == ActionStart {
				c.State = "running"
			} else {
				c.State = "exited"
			}
			return nil
		}
	}
	return &CommandError{Stderr: "No such container: " + id, Err: fmt.Errorf("exit status 1")}
}

func (m *MockRuntime) Ping(context.Context) error {
	if m.Unavailable {
		return ErrRuntimeUnavailable
	}
	return nil
}

// inspectJSON renders the container in the shape `docker inspect` emits,
// matching the Docker SDK container.InspectResponse field names.
func (c MockContainer) inspectJSON() ([]byte, error) {
	ports := map[string][]map[string]string{}
	for spec, bindings := range c.Ports {
		var bs []map[string]string
		for _, b := range bindings {
			bs = append(bs, map[string]string{"HostIp": b.HostIP, "HostPort": b.HostPort})
		}
		ports[spec] = bs
	}

	networks := map[string]any{}
	for _, n := range c.Networks {
		networks[n] = map[string]any{}
	}

	mounts := []map[string]any{}
	for _, mt := range c.Mounts {
		mounts = append(mounts, map[string]any{
			"Source":      mt.Source,
			"Destination": mt.Destination,
			"Type":        mt.Type,
			"RW":          mt.RW,
		})
	}

	return json.Marshal(map[string]any{
		"Id":      c.ID,
		"Name":    "/" + c.Name,
		"Created": c.Created,
		"State":   map[string]any{"Status": c.State},
		"Config": map[string]any{
			"Image":  c.Image,
			"Env":    c.Env,
			"Labels": c.Labels,
		},
		"NetworkSettings": map[string]any{
			"Ports":    ports,
			"Networks": networks,
		},
		"Mounts": mounts,
		"HostConfig": map[string]any{
			"CpuShares": c.CPU,
			"Memory":    c.Memory,
		},
	})
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// portsString renders the compact `docker ps` Ports column for a container.
// Specs are sorted so the output is stable for assertions.
func portsString(ports map[string][]MockPortBinding) string {
	specs := make([]string, 0, len(ports))
	for spec := range ports {
		specs = append(specs, spec)
	}
	sort.Strings(specs)

	var parts []string
	for _, spec := range specs {
		bindings := ports[spec]
		if len(bindings) == 0 {
			parts = append(parts, spec)
			continue
		}
		for _, b := range bindings {
			parts = append(parts, fmt.Sprintf("%s:%s->%s", b.HostIP, b.HostPort, spec))
		}
	}
	return strings.Join(parts, ", ")
}
