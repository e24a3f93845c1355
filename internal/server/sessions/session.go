// Package sessions holds the ephemeral state of in-flight authentication
// attempts: one proof session per attempt, sequenced by an explicit state
// machine and stored in a concurrency-safe store with compare-and-swap
// transition semantics.
package sessions

import (
	"math/big"
	"time"

	"github.com/dmitrijs2005/zkpauth/internal/common"
)

// State enumerates the lifecycle of a proof session.
type State int

const (
	StateAwaitingCommitment State = iota
	StateCommitmentReceived
	StateChallengeIssued
	StateVerified
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAwaitingCommitment:
		return "awaiting_commitment"
	case StateCommitmentReceived:
		return "commitment_received"
	case StateChallengeIssued:
		return "challenge_issued"
	case StateVerified:
		return "verified"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are allowed.
func (s State) Terminal() bool {
	return s == StateVerified || s == StateFailed
}

// Event is an input to the state machine.
type Event int

const (
	// EventCommit records the prover's first-round commitment pair.
	EventCommit Event = iota
	// EventChallenge records the single challenge issued for the session.
	EventChallenge
	// EventAccept marks the proof as verified.
	EventAccept
	// EventReject marks the proof as failed.
	EventReject
	// EventTimeout forcibly fails an abandoned session.
	EventTimeout
)

// Transition is the pure state-transition function. It returns the next
// state, or an error naming why the event is not allowed in the current
// state. It has no side effects and is testable without a store.
func Transition(s State, ev Event) (State, error) {
	if ev == EventTimeout {
		if s.Terminal() {
			return s, common.ErrSessionClosed
		}
		return StateFailed, nil
	}

	switch s {
	case StateAwaitingCommitment:
		if ev == EventCommit {
			return StateCommitmentReceived, nil
		}
	case StateCommitmentReceived:
		if ev == EventChallenge {
			return StateChallengeIssued, nil
		}
	case StateChallengeIssued:
		switch ev {
		case EventAccept:
			return StateVerified, nil
		case EventReject:
			return StateFailed, nil
		case EventChallenge:
			// Challenges are single-use; a second issue is an error.
			return s, common.ErrChallengeAlreadyIssued
		}
	case StateVerified, StateFailed:
		return s, common.ErrSessionClosed
	}
	return s, common.ErrSessionClosed
}

// Session is the ephemeral state of one authentication attempt. Values
// handed out by the store are copies; only the store mutates its records.
type Session struct {
	ID        string
	Username  string
	R1        *big.Int
	R2        *big.Int
	Challenge *big.Int
	State     State
	CreatedAt time.Time

	// expired distinguishes a timeout failure from a verification failure,
	// so later calls report SessionExpired rather than SessionClosed.
	expired bool
}

// Expired reports whether the session was closed by timeout.
func (s Session) Expired() bool {
	return s.expired
}
