package inventory

// ContainerRecord is a normalized snapshot of one inspected container.
// Records are immutable once collected.
type ContainerRecord struct {
	ID             string        `json:"id"`
	ShortID        string        `json:"shortId"`
	Name           string        `json:"name"`
	Image          string        `json:"image"`
	CreatedAt      string        `json:"createdAt"`
	Status         string        `json:"status"` // created, running, paused, exited, dead, ...
	Ports          []PortBinding `json:"ports"`
	Networks       []string      `json:"networks"`
	Mounts         []MountSpec   `json:"mounts"`
	EnvVars        []string      `json:"envVars"` // raw KEY=VALUE entries
	CPUShares      int64         `json:"cpuShares"`
	MemoryLimit    int64         `json:"memoryLimitBytes"`
	ComposeProject string        `json:"composeProject,omitempty"` // com.docker.compose.project label
}

// PortBinding is one parsed host/container port mapping. Host fields are
// empty for exposed-but-unbound ports. Link is a convenience URL derived
// only when a host binding exists.
type PortBinding struct {
	HostIP        string `json:"hostIp,omitempty"`
	HostPort      string `json:"hostPort,omitempty"`
	ContainerPort string `json:"containerPort"`
	Protocol      string `json:"protocol"`
	Link          string `json:"link,omitempty"`
}

// MountSpec describes one container mount.
type MountSpec struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Type        string `json:"type"` // bind, volume, tmpfs
	ReadOnly    bool   `json:"readOnly"`
}

// composeProjectLabel is the well-known label set by docker compose.
const composeProjectLabel = "com.docker.compose.project"
