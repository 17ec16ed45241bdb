package docker

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestValidateContainerID(t *testing.T) {
	valid := []string{
		"a1b2c3d4e5f6",
		"my-container",
		"my_container.2",
		"Redis7",
		strings.Repeat("a", 64),
	}
	for _, id := range valid {
		if err := ValidateContainerID(id); err != nil {
			t.Errorf("ValidateContainerID(%q) = %v", id, err)
		}
	}

	invalid := []string{
		"",
		"not a valid id!",
		"id;rm -rf /",
		"$(evil)",
		"-leading-dash",
		".leading-dot",
		"id\nnewline",
		"--format",
	}
	for _, id := range invalid {
		if err := ValidateContainerID(id); !errors.Is(err, ErrInvalidContainerID) {
			t.Errorf("ValidateContainerID(%q) = %v, want ErrInvalidContainerID", id, err)
		}
	}
}

// TestActionRejectsBeforeInvocation points the CLI at a binary that cannot
// exist. A malformed id must be rejected by validation, never reaching the
// point where the missing binary would be noticed.
func TestActionRejectsBeforeInvocation(t *testing.T) {
	r := NewCLIRuntime("/nonexistent/docker-binary")

	err := r.ContainerAction(context.Background(), ActionStop, "not a valid id!")
	if !errors.Is(err, ErrInvalidContainerID) {
		t.Fatalf("expected ErrInvalidContainerID, got %v", err)
	}

	err = r.ContainerAction(context.Background(), Action("restart"), "abc123")
	if !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestInspectRejectsInvalidID(t *testing.T) {
	r := NewCLIRuntime("/nonexistent/docker-binary")

	_, err := r.ContainerInspect(context.Background(), "bad id; true")
	if !errors.Is(err, ErrInvalidContainerID) {
		t.Fatalf("expected ErrInvalidContainerID, got %v", err)
	}
}

func TestCLIRuntimeUnavailable(t *testing.T) {
	r := NewCLIRuntime("/nonexistent/docker-binary")

	_, err := r.ContainerIDs(context.Background(), false)
	if !errors.Is(err, ErrRuntimeUnavailable) {
		t.Fatalf("expected ErrRuntimeUnavailable, got %v", err)
	}
	if err := r.Ping(context.Background()); !errors.Is(err, ErrRuntimeUnavailable) {
		t.Fatalf("expected ErrRuntimeUnavailable from Ping, got %v", err)
	}
}

func TestMockRuntimeLifecycle(t *testing.T) {
	rt := NewMockRuntime(MockContainer{
		ID:    strings.Repeat("ab", 32),
		Name:  "web",
		Image: "nginx:latest",
		State: "exited",
	})

	ctx := context.Background()

	ids, err := rt.ContainerIDs(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Fatalf("stopped container listed as running: %v", ids)
	}

	ids, err = rt.ContainerIDs(ctx, true)
	if err != nil || len(ids) != 1 {
		t.Fatalf("all=true should list stopped containers: %v %v", ids, err)
	}

	if err := rt.ContainerAction(ctx, ActionStart, ids[0]); err != nil {
		t.Fatal(err)
	}
	ids, _ = rt.ContainerIDs(ctx, false)
	if len(ids) != 1 {
		t.Fatal("started container should be listed as running")
	}

	summaries, err := rt.ContainerSummaries(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 || summaries[0].Names != "web" {
		t.Fatalf("summaries = %+v", summaries)
	}
}

func TestMockRuntimeActionUnknownContainer(t *testing.T) {
	rt := NewMockRuntime()

	err := rt.ContainerAction(context.Background(), ActionStop, "abc123")
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected CommandError, got %v", err)
	}
	if !strings.Contains(cmdErr.Stderr, "No such container") {
		t.Errorf("stderr = %q", cmdErr.Stderr)
	}
}
