// Package lockout implements the failed-login lockout policy.
//
// The policy is a pure function of the stored attempt state, the outcome of a
// credential check and the current time. It never reads the clock itself and
// never touches storage, so callers decide how the resulting State is persisted.
package lockout

import "time"

// Default policy values.
const (
	DefaultMaxAttempts  = 5
	DefaultLockDuration = 2 * time.Hour
)

// Outcome is the result of evaluating a login attempt.
type Outcome int

const (
	// OutcomeSuccess means the credential matched and the counters were reset.
	OutcomeSuccess Outcome = iota
	// OutcomeLocked means the account is locked, either already or as a result of this attempt.
	OutcomeLocked
	// OutcomeInvalidCredential means the credential did not match and the account is still unlocked.
	OutcomeInvalidCredential
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeLocked:
		return "locked"
	case OutcomeInvalidCredential:
		return "invalid_credential"
	}
	return "unknown"
}

// State is the persisted lockout state of an account.
type State struct {
	FailedAttempts int
	LockedUntil    *time.Time
	LastLoginAt    *time.Time
}

// Decision is the result of Policy.Evaluate: the outcome plus the state to persist.
type Decision struct {
	Outcome           Outcome
	State             State
	AttemptsRemaining int
	// Changed is false when nothing needs to be written (a rejected attempt on a locked account).
	Changed bool
}

// Policy configures the lockout threshold and duration.
type Policy struct {
	MaxAttempts  int
	LockDuration time.Duration
}

// DefaultPolicy returns the 5 attempts / 2 hours policy.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, LockDuration: DefaultLockDuration}
}

// IsLocked reports whether lockedUntil is strictly after now.
func IsLocked(lockedUntil *time.Time, now time.Time) bool {
	return lockedUntil != nil && lockedUntil.After(now)
}

// Evaluate applies one login attempt to state.
//
// checkCredential is only invoked when the account is not locked.
func (p Policy) Evaluate(state State, checkCredential func() bool, now time.Time) Decision {
	p = p.withDefaults()

	if IsLocked(state.LockedUntil, now) {
		return Decision{Outcome: OutcomeLocked, State: state}
	}

	if checkCredential() {
		loginAt := now
		return Decision{
			Outcome: OutcomeSuccess,
			State: State{
				FailedAttempts: 0,
				LockedUntil:    nil,
				LastLoginAt:    &loginAt,
			},
			AttemptsRemaining: p.MaxAttempts,
			Changed:           true,
		}
	}

	next := State{LastLoginAt: state.LastLoginAt}
	if state.LockedUntil != nil {
		// The previous lock has expired: this failure starts a new series.
		next.FailedAttempts = 1
	} else {
		next.FailedAttempts = state.FailedAttempts + 1
	}

	if next.FailedAttempts >= p.MaxAttempts {
		until := now.Add(p.LockDuration)
		next.LockedUntil = &until
		return Decision{Outcome: OutcomeLocked, State: next, Changed: true}
	}

	return Decision{
		Outcome:           OutcomeInvalidCredential,
		State:             next,
		AttemptsRemaining: p.MaxAttempts - next.FailedAttempts,
		Changed:           true,
	}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.LockDuration <= 0 {
		p.LockDuration = DefaultLockDuration
	}
	return p
}
