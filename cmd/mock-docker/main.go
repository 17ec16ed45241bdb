// Command mock-docker masquerades as the `docker` CLI. Point the server at
// it with -docker-bin (or DOCKREPORT_DOCKER_BIN) to exercise the full report
// pipeline without a Docker daemon.
//
// It answers exactly the invocations the server makes: `ps`, `inspect`,
// `start`, `stop` and `version`. A small fixture fleet is built in, and
// start/stop state is persisted to a JSON file between invocations so the
// container actions visibly stick.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dockreport/dockreport/internal/docker"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "mock-docker: no command specified")
		os.Exit(1)
	}

	rt := docker.NewMockRuntime(fleet()...)
	states := loadStates()
	for id, state := range states {
		applyState(rt, id, state)
	}

	ctx := context.Background()
	switch args[0] {
	case "ps":
		handlePS(ctx, rt, args[1:])
	case "inspect":
		handleInspect(ctx, rt, args[1:])
	case "start", "stop":
		handleAction(ctx, rt, docker.Action(args[0]), args[1:], states)
	case "version":
		fmt.Println("27.0.0-mock")
	default:
		fmt.Fprintf(os.Stderr, "mock-docker: unsupported command: %s\n", args[0])
		os.Exit(1)
	}
}

// fleet is the built-in fixture set: a compose project, a standalone
// container with an IPv6 binding, and a stopped one.
func fleet() []docker.MockContainer {
	return []docker.MockContainer{
		{
			ID:      strings.Repeat("1a", 32),
			Name:    "shop-web-1",
			Image:   "nginx:1.27",
			Created: "2026-08-29T08:00:00Z",
			State:   "running",
			Ports: map[string][]docker.MockPortBinding{
				"80/tcp": {{HostIP: "0.0.0.0", HostPort: "8080"}},
			},
			Networks: []string{"shop_default"},
			Mounts: []docker.MockMount{
				{Source: "/srv/shop/html", Destination: "/usr/share/nginx/html", Type: "bind", RW: false},
			},
			Env:    []string{"NGINX_PORT=80"},
			Labels: map[string]string{"com.docker.compose.project": "shop"},
		},
		{
			ID:      strings.Repeat("2b", 32),
			Name:    "shop-db-1",
			Image:   "postgres:16",
			Created: "2026-08-29T08:00:00Z",
			State:   "running",
			Ports: map[string][]docker.MockPortBinding{
				"5432/tcp": {},
			},
			Networks: []string{"shop_default"},
			Mounts: []docker.MockMount{
				{Source: "shop_pgdata", Destination: "/var/lib/postgresql/data", Type: "volume", RW: true},
			},
			Env:    []string{"POSTGRES_DB=shop", "POSTGRES_USER=shop"},
			Labels: map[string]string{"com.docker.compose.project": "shop"},
			Memory: 512 * 1024 * 1024,
		},
		{
			ID:      strings.Repeat("3c", 32),
			Name:    "cache",
			Image:   "redis:7",
			Created: "2026-08-30T12:30:00Z",
			State:   "running",
			Ports: map[string][]docker.MockPortBinding{
				"6379/tcp": {{HostIP: "::", HostPort: "6379"}},
			},
			Networks: []string{"bridge"},
			CPU:      512,
		},
		{
			ID:       strings.Repeat("4d", 32),
			Name:     "backup",
			Image:    "alpine:3.20",
			Created:  "2026-08-28T02:00:00Z",
			State:    "exited",
			Networks: []string{"bridge"},
		},
	}
}

func handlePS(ctx context.Context, rt *docker.MockRuntime, args []string) {
	all := hasFlag(args, "--all") || hasFlag(args, "-a")

	switch format(args) {
	case "{{.ID}}":
		ids, _ := rt.ContainerIDs(ctx, all)
		for _, id := range ids {
			fmt.Println(id[:12])
		}
	case "{{json .}}":
		summaries, _ := rt.ContainerSummaries(ctx, all)
		enc := json.NewEncoder(os.Stdout)
		for _, s := range summaries {
			enc.Encode(s)
		}
	default:
		fmt.Fprintln(os.Stderr, "mock-docker: ps requires --format {{.ID}} or {{json .}}")
		os.Exit(1)
	}
}

func handleInspect(ctx context.Context, rt *docker.MockRuntime, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "mock-docker: inspect requires exactly one container")
		os.Exit(1)
	}

	obj, err := rt.ContainerInspect(ctx, args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: No such object: %s\n", args[0])
		fmt.Println("[]")
		os.Exit(1)
	}

	// The real CLI wraps the result in a one-element array.
	out, _ := json.MarshalIndent([]json.RawMessage{obj}, "", "    ")
	fmt.Println(string(out))
}

func handleAction(ctx context.Context, rt *docker.MockRuntime, action docker.Action, args []string, states map[string]string) {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "mock-docker: %s requires exactly one container\n", action)
		os.Exit(1)
	}
	id := args[0]

	if err := rt.ContainerAction(ctx, action, id); err != nil {
		var cmdErr *docker.CommandError
		if errors.As(err, &cmdErr) {
			fmt.Fprintln(os.Stderr, "Error response from daemon:", cmdErr.Stderr)
		} else {
			fmt.Fprintln(os.Stderr, "Error response from daemon:", err)
		}
		os.Exit(1)
	}

	state := "exited"
	if action == docker.ActionStart {
		state = "running"
	}
	states[canonicalID(id)] = state
	saveStates(states)
	fmt.Println(id)
}

// canonicalID resolves a short id to the full fixture id so state overrides
// apply regardless of which form the caller used.
func canonicalID(id string) string {
	for _, c := range fleet() {
		if c.ID == id || strings.HasPrefix(c.ID, id) {
			return c.ID
		}
	}
	return id
}

func applyState(rt *docker.MockRuntime, id, state string) {
	ctx := context.Background()
	if state == "running" {
		rt.ContainerAction(ctx, docker.ActionStart, id)
	} else {
		rt.ContainerAction(ctx, docker.ActionStop, id)
	}
}

// statePath is where start/stop overrides persist between invocations.
// Override with MOCK_DOCKER_STATE; delete the file to reset the fleet.
func statePath() string {
	if p := os.Getenv("MOCK_DOCKER_STATE"); p != "" {
		return p
	}
	return filepath.Join(os.TempDir(), "mock-docker-state.json")
}

func loadStates() map[string]string {
	states := map[string]string{}
	data, err := os.ReadFile(statePath())
	if err != nil {
		return states
	}
	json.Unmarshal(data, &states)
	return states
}

func saveStates(states map[string]string) {
	data, err := json.Marshal(states)
	if err != nil {
		return
	}
	os.WriteFile(statePath(), data, 0o644)
}

func format(args []string) string {
	for i, a := range args {
		if a == "--format" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}
