package engine

// State is one evaluation's position in the Orchestrator's state machine
// (spec §4.G): READY -> RESOLVING_CONTEXT -> LOADING -> RUNNING_RULES(i)
// -> CORRELATING -> DONE. Any state but DONE may transition to
// FAILED_FATAL on a catalog or rule-store failure, or to CANCELLED if the
// caller's context is done.
type State string

const (
	StateReady            State = "READY"
	StateResolvingContext State = "RESOLVING_CONTEXT"
	StateLoading          State = "LOADING"
	StateRunningRules     State = "RUNNING_RULES"
	StateCorrelating      State = "CORRELATING"
	StateDone             State = "DONE"
	StateFailedFatal      State = "FAILED_FATAL"
	StateCancelled        State = "CANCELLED"
)
