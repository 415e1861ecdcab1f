package types

// RunState represents the coordinator lifecycle state.
//
// The coordinator starts in RunStateRunning and transitions exactly once:
//
//	RunStateRunning → RunStateDone
//
// The transition happens when a stopping criterion is met (value tolerance
// reached or iteration budget exhausted). There is no other termination path.
type RunState int

const (
	// RunStateRunning indicates workers are sampling and updates are being merged.
	RunStateRunning RunState = iota

	// RunStateDone indicates a stopping criterion has been met.
	RunStateDone
)

// String returns the string representation of the state.
func (s RunState) String() string {
	switch s {
	case RunStateRunning:
		return "Running"
	case RunStateDone:
		return "Done"
	default:
		return "Unknown"
	}
}
