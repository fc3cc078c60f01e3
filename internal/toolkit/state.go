// SPDX-License-Identifier: MPL-2.0

package toolkit

const (
	// StateUnchecked means provisioning has not been attempted yet.
	StateUnchecked State = iota
	// StatePresent means the toolkit was already registered; nothing ran.
	StatePresent
	// StateMissing means the check failed and installation is pending.
	StateMissing
	// StateInstalling means the install sequence is in progress.
	StateInstalling
	// StateVerified means installation completed and re-verification passed
	// (terminal).
	StateVerified
	// StateFailed means installation aborted or verification failed (terminal).
	StateFailed
)

// State is the provisioning lifecycle state.
type State int

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateUnchecked:
		return "unchecked"
	case StatePresent:
		return "present"
	case StateMissing:
		return "missing"
	case StateInstalling:
		return "installing"
	case StateVerified:
		return "verified"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateVerified || s == StateFailed
}
