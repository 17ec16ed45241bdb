package docker

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
)

// CLIRuntime implements Runtime by shelling out to the docker CLI.
// No retries anywhere: a failed invocation is reported to the caller as-is.
type CLIRuntime struct {
	// Bin is the CLI binary to invoke ("docker" by default).
	Bin string
}

func NewCLIRuntime(bin string) *CLIRuntime {
	if bin == "" {
		bin = "docker"
	}
	return &CLIRuntime{Bin: bin}
}

func (r *CLIRuntime) ContainerIDs(ctx context.Context, all bool) ([]string, error) {
	args := []string{"ps", "--format", "{{.ID}}"}
	if all {
		args = append(args, "--all")
	}
	out, err := r.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}

	var ids []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			ids = append(ids, line)
		}
	}
	return ids, nil
}

func (r *CLIRuntime) ContainerSummaries(ctx context.Context, all bool) ([]Summary, error) {
	args := []string{"ps", "--format", "{{json .}}"}
	if all {
		args = append(args, "--all")
	}
	out, err := r.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}

	// One JSON object per line.
	var summaries []Summary
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var s Summary
		if err := json.Unmarshal([]byte(line), &s); err != nil {
			return nil, fmt.Errorf("parse ps output: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (r *CLIRuntime) ContainerInspect(ctx context.Context, id string) ([]byte, error) {
	if err := ValidateContainerID(id); err != nil {
		return nil, err
	}
	out, err := r.run(ctx, "inspect", id)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", id, err)
	}

	// The CLI emits a one-element array; callers get the bare object.
	var arr []json.RawMessage
	if err := json.Unmarshal(out, &arr); err != nil {
		return nil, fmt.Errorf("inspect %s: malformed output: %w", id, err)
	}
	if len(arr) == 0 {
		return nil, fmt.Errorf("inspect %s: no such container", id)
	}
	return arr[0], nil
}

func (r *CLIRuntime) ContainerAction(ctx context.Context, action Action, id string) error {
	switch action {
	case ActionStart, ActionStop:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if err := ValidateContainerID(id); err != nil {
		return err
	}
	if _, err := r.run(ctx, string(action), id); err != nil {
		return fmt.Errorf("%s %s: %w", action, id, err)
	}
	return nil
}

func (r *CLIRuntime) Ping(ctx context.Context) error {
	if _, err := r.run(ctx, "version", "--format", "{{.Client.Version}}"); err != nil {
		return err
	}
	return nil
}

// run executes the CLI with the given args and returns stdout. A missing
// binary maps to ErrRuntimeUnavailable; a non-zero exit is wrapped in a
// CommandError carrying stderr.
func (r *CLIRuntime) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.Bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// A missing binary surfaces as *exec.Error for bare names and as
		// a path error for absolute ones; both mean no runtime.
		var execErr *exec.Error
		if errors.As(err, &execErr) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", ErrRuntimeUnavailable, err)
		}
		return nil, &CommandError{Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return stdout.Bytes(), nil
}
