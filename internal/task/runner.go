package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dockreport/dockreport/internal/ai"
	"github.com/dockreport/dockreport/internal/inventory"
	"github.com/dockreport/dockreport/internal/report"
)

const (
	inventoryFileName = "containers_info.json"
	reportFileName    = "docker_containers_info.md"

	// aiSectionSeparator joins the deterministic report and the AI
	// elaboration in the artifact. The AI text is appended below the
	// deterministic report, never replacing it.
	aiSectionSeparator = "\n\n---\n\n## AI Enhanced Analysis\n\n"
)

// Runner drives one report-generation pipeline per task, each on its own
// goroutine. The caller gets a task id immediately and polls the registry.
type Runner struct {
	Registry  *Registry
	Collector *inventory.Collector

	// AI is nil when no backend is configured. Tasks requesting
	// enhancement then complete with the deterministic report and a
	// message noting the degradation.
	AI ai.Enhancer

	// ReportsDir is the parent for per-task working directories.
	// Empty means the system temp directory.
	ReportsDir string
}

// Start allocates a task and launches its pipeline in the background.
// Never blocks on collection or generation.
func (r *Runner) Start(useAI bool) Status {
	st := r.Registry.Create(useAI)
	go r.run(st.ID, useAI)
	return st
}

// run executes the pipeline stages for one task. It is the only goroutine
// that transitions this task. Failures before an artifact exists end in
// the error state; once the deterministic report is on disk the task
// always lands in completed.
func (r *Runner) run(id string, useAI bool) {
	defer r.recoverPanic(id)

	ctx := context.Background()

	r.mustTransition(id, StateCollecting, "Collecting Docker container information...")

	inv, err := r.Collector.Collect(ctx, false)
	if err != nil {
		if errors.Is(err, inventory.ErrNoContainers) {
			r.fail(id, "No running containers found.")
			return
		}
		r.fail(id, fmt.Sprintf("Error collecting container information: %v", err))
		return
	}

	taskDir, err := os.MkdirTemp(r.ReportsDir, "docker_info_"+id+"_")
	if err != nil {
		r.fail(id, fmt.Sprintf("Error creating working directory: %v", err))
		return
	}

	rawJSON, err := inv.RawJSON()
	if err != nil {
		r.fail(id, fmt.Sprintf("Error encoding container info: %v", err))
		return
	}
	if err := os.WriteFile(filepath.Join(taskDir, inventoryFileName), rawJSON, 0o644); err != nil {
		r.fail(id, fmt.Sprintf("Error writing container info to file: %v", err))
		return
	}

	r.mustTransition(id, StateGenerating, "Generating markdown report...")

	markdown, _ := report.Compose(inv.Records, time.Now())
	reportPath := filepath.Join(taskDir, reportFileName)
	if err := os.WriteFile(reportPath, []byte(markdown), 0o644); err != nil {
		r.fail(id, fmt.Sprintf("Error writing report: %v", err))
		return
	}

	// Deterministic artifact is on disk: from here the task can only
	// complete. AI failures degrade the message, never the state.
	if err := r.Registry.SetArtifact(id, reportPath); err != nil {
		slog.Error("set artifact", "task", id, "err", err)
	}

	if !useAI {
		r.complete(id, "Report generated successfully.")
		return
	}
	if r.AI == nil {
		r.complete(id, "Report generated successfully. AI enhancement skipped: no backend configured.")
		return
	}

	r.mustTransition(id, StateGeneratingAI, "Enhancing report with AI...")

	enhanced, err := r.AI.Enhance(ctx, string(rawJSON))
	if err != nil {
		r.complete(id, fmt.Sprintf("Report generated successfully. AI enhancement failed: %v. Using deterministic report.", err))
		return
	}

	if err := appendSection(reportPath, aiSectionSeparator+enhanced); err != nil {
		slog.Warn("append ai section", "task", id, "err", err)
		r.complete(id, fmt.Sprintf("Report generated successfully. AI section could not be appended: %v.", err))
		return
	}
	r.complete(id, "Report generated successfully with AI enhancement.")
}

func appendSection(path, text string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(text)
	return err
}

func (r *Runner) fail(id, message string) {
	if err := r.Registry.Transition(id, StateError, message); err != nil {
		slog.Error("task transition", "task", id, "err", err)
	}
}

func (r *Runner) complete(id, message string) {
	if err := r.Registry.Transition(id, StateCompleted, message); err != nil {
		slog.Error("task transition", "task", id, "err", err)
	}
}

// mustTransition applies a forward transition that is legal by
// construction; a rejection here is a pipeline bug worth a loud log.
func (r *Runner) mustTransition(id string, to State, message string) {
	if err := r.Registry.Transition(id, to, message); err != nil {
		slog.Error("task transition", "task", id, "state", to, "err", err)
	}
}

// recoverPanic converts an unhandled panic into a terminal state: error if
// no artifact exists yet, completed otherwise (the deterministic report is
// already usable and must not be lost to a late failure).
func (r *Runner) recoverPanic(id string) {
	rec := recover()
	if rec == nil {
		return
	}
	slog.Error("task pipeline panic", "task", id, "panic", rec)

	st, ok := r.Registry.Get(id)
	if !ok || st.State.Terminal() {
		return
	}
	if st.ArtifactPath != "" {
		r.complete(id, fmt.Sprintf("Report generated successfully. Enhancement aborted: %v.", rec))
		return
	}
	r.fail(id, fmt.Sprintf("Error: %v", rec))
}
