package pipeline

// State is a step of a single request. Failure states are terminal.
type State string

const (
	StateIdle                   State = "idle"
	StateResolving              State = "resolving"
	StateResolveFailed          State = "resolve_failed"
	StateExtractingTech         State = "extracting_tech"
	StateRepositoryAccessFailed State = "repository_access_failed"
	StateGenerating             State = "generating"
	StateGenerationFailed       State = "generation_failed"
	StateDone                   State = "done"
)
