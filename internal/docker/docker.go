package docker

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Action is a single-container lifecycle command.
type Action string

const (
	ActionStart Action = "start"
	ActionStop  Action = "stop"
)

// ErrRuntimeUnavailable indicates the container runtime CLI could not be
// invoked at all (binary missing, daemon unreachable).
var ErrRuntimeUnavailable = errors.New("container runtime unavailable")

// ErrInvalidContainerID is returned before any external invocation when a
// container identifier does not have a plain alphanumeric shape. This is a
// security boundary: identifiers are passed to the runtime CLI as arguments
// and must never carry shell-relevant characters.
var ErrInvalidContainerID = errors.New("invalid container id")

// ErrUnknownAction is returned for actions other than start and stop.
var ErrUnknownAction = errors.New("unknown container action")

// CommandError wraps a non-zero exit from the runtime CLI, carrying the
// stderr text for diagnosability. The text is untrusted output and is only
// ever rendered, never interpreted.
type CommandError struct {
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Stderr)
	}
	return e.Err.Error()
}

func (e *CommandError) Unwrap() error { return e.Err }

// Summary is the simplified per-container view returned by the list
// endpoint. Ports is the compact `docker ps`-style mapping string
// (e.g. "0.0.0.0:8080->80/tcp, 6379/tcp").
type Summary struct {
	ID      string `json:"ID"`
	Names   string `json:"Names"`
	Image   string `json:"Image"`
	State   string `json:"State"`
	Status  string `json:"Status"`
	Ports   string `json:"Ports"`
	Created string `json:"CreatedAt"`
}

// Runtime abstracts the container runtime CLI. The real implementation
// shells out to the docker binary; tests use MockRuntime.
type Runtime interface {
	// ContainerIDs returns the identifiers of containers on the host.
	// If all is true, includes stopped containers. An empty host yields
	// an empty slice, not an error.
	ContainerIDs(ctx context.Context, all bool) ([]string, error)

	// ContainerSummaries returns simplified list entries for display.
	ContainerSummaries(ctx context.Context, all bool) ([]Summary, error)

	// ContainerInspect returns the raw inspect JSON for one container as
	// a single object (the CLI's singleton array is unwrapped).
	ContainerInspect(ctx context.Context, id string) ([]byte, error)

	// ContainerAction starts or stops a single container. The id is
	// validated before any external call is issued.
	ContainerAction(ctx context.Context, action Action, id string) error

	// Ping reports whether the runtime is reachable.
	Ping(ctx context.Context) error
}

var validContainerID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidateContainerID rejects identifiers that could smuggle arguments or
// shell metacharacters into a CLI invocation.
func ValidateContainerID(id string) error {
	if id == "" || !validContainerID.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidContainerID, id)
	}
	return nil
}
