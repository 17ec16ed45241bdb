package task

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ErrTaskNotFound is returned for lookups of unknown task ids.
var ErrTaskNotFound = errors.New("task not found")

// handle holds the live state for one task. The status snapshot is
// replaced atomically on every transition so polling readers never see a
// state from one update paired with a message from another.
type handle struct {
	status atomic.Pointer[Status]
	done   chan struct{}
}

// Registry maps task ids to their handles. Inserts and lookups are guarded
// by a RWMutex; per-task updates go through the handle's atomic pointer.
// Tasks are never deleted: their lifetime is the process lifetime.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*handle

	subMu sync.Mutex
	subs  []func(Status)
}

func NewRegistry() *Registry {
	return &Registry{tasks: map[string]*handle{}}
}

// Create allocates a new task in the starting state and returns its
// initial snapshot. The id is time-derived with a random suffix so ids
// stay unique however quickly tasks are created.
func (r *Registry) Create(useAI bool) Status {
	now := time.Now().UTC()
	id := now.Format("20060102-150405") + "-" + strings.Split(uuid.NewString(), "-")[0]

	st := Status{
		ID:        id,
		State:     StateStarting,
		Message:   "Initializing task...",
		UseAI:     useAI,
		CreatedAt: now,
		UpdatedAt: now,
	}

	h := &handle{done: make(chan struct{})}
	h.status.Store(&st)

	r.mu.Lock()
	r.tasks[id] = h
	r.mu.Unlock()

	r.notify(st)
	return st
}

// Get returns a consistent snapshot of the task.
func (r *Registry) Get(id string) (Status, bool) {
	h, ok := r.lookup(id)
	if !ok {
		return Status{}, false
	}
	return *h.status.Load(), true
}

// Transition moves the task to a new state with a fresh message. The
// message is overwritten, never appended. Illegal transitions are
// rejected; terminal states additionally close the task's done channel.
func (r *Registry) Transition(id string, to State, message string) error {
	h, ok := r.lookup(id)
	if !ok {
		return ErrTaskNotFound
	}

	cur := h.status.Load()
	if !canTransition(cur.State, to) {
		return &ErrIllegalTransition{From: cur.State, To: to}
	}

	next := *cur
	next.State = to
	next.Message = message
	next.UpdatedAt = time.Now().UTC()
	h.status.Store(&next)

	if to.Terminal() {
		close(h.done)
	}
	r.notify(next)
	return nil
}

// SetArtifact records the report path once the deterministic report has
// been persisted. The path is set exactly once and never cleared.
func (r *Registry) SetArtifact(id, path string) error {
	h, ok := r.lookup(id)
	if !ok {
		return ErrTaskNotFound
	}

	cur := h.status.Load()
	if cur.ArtifactPath != "" {
		return nil
	}
	next := *cur
	next.ArtifactPath = path
	next.UpdatedAt = time.Now().UTC()
	h.status.Store(&next)
	return nil
}

// Done returns a channel closed when the task reaches a terminal state.
// Unknown ids get an already-closed channel.
func (r *Registry) Done(id string) <-chan struct{} {
	h, ok := r.lookup(id)
	if !ok {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return h.done
}

// OnUpdate registers a callback invoked with every status snapshot change.
// Callbacks must not block; they run on the transitioning goroutine.
func (r *Registry) OnUpdate(fn func(Status)) {
	r.subMu.Lock()
	r.subs = append(r.subs, fn)
	r.subMu.Unlock()
}

func (r *Registry) notify(st Status) {
	r.subMu.Lock()
	subs := r.subs
	r.subMu.Unlock()
	for _, fn := range subs {
		fn(st)
	}
}

func (r *Registry) lookup(id string) (*handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.tasks[id]
	return h, ok
}
