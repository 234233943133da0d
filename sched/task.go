package sched

// TaskId is an opaque handle for a registered task. Ids are assigned
// monotonically and never reused within a Scheduler's lifetime, so a stale id
// is always detectably invalid.
type TaskId int32

// InvalidTaskId is the sentinel value for "no task".
const InvalidTaskId TaskId = -1

// Phase is the ordered frame phase a task belongs to. Tasks with no dependency
// relationship still execute in ascending (Phase, insertion order), which keeps
// the realized order deterministic across runs.
type Phase uint8

const (
	PhaseInput Phase = iota
	PhaseGameLogic
	PhaseAudio
	PhasePhysics
	PhasePostPhysics
	PhasePreRender
	PhaseRender
)

var phaseNames = [...]string{
	"Input",
	"GameLogic",
	"Audio",
	"Physics",
	"PostPhysics",
	"PreRender",
	"Render",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "Unknown"
}

// TaskDescriptor describes a unit of per-frame work before registration.
type TaskDescriptor struct {
	// Name is used for diagnostics only; it does not have to be unique.
	Name string
	// Phase is the frame phase used to tie-break tasks with no dependency edge.
	Phase Phase
	// Work is the callback run by Scheduler.Execute. A nil Work is allowed and
	// acts as an ordering-only barrier.
	Work func()
	// DependsOn lists tasks that must finish before this one runs. Every id
	// must refer to a currently registered task.
	DependsOn []TaskId
	// MainThreadOnly is informational; the scheduler is single-threaded.
	MainThreadOnly bool
}
