package sessions

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/dmitrijs2005/zkpauth/internal/common"
	"github.com/dmitrijs2005/zkpauth/internal/logging"
	"github.com/google/uuid"
)

// Store keeps in-flight proof sessions in memory. All transitions go
// through the pure Transition function under the store's lock, which gives
// compare-and-swap semantics: two racing response submissions cannot both
// move a session out of ChallengeIssued.
//
// Expiry is enforced lazily on every access and additionally by a periodic
// sweep, so an expired session is never honored even between sweeps.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	ttl           time.Duration
	sweepInterval time.Duration
	logger        logging.Logger

	// now is a test seam.
	now func() time.Time
}

// NewStore creates a session store. Sessions not resolved within ttl are
// failed; terminal sessions are removed by the sweep after another ttl.
func NewStore(ttl time.Duration, logger logging.Logger) *Store {
	return &Store{
		sessions:      make(map[string]*Session),
		ttl:           ttl,
		sweepInterval: ttl,
		logger:        logger.With("module", "session_store"),
		now:           time.Now,
	}
}

// Create inserts a new session in CommitmentReceived holding the prover's
// first-round pair. The returned value is a copy.
func (st *Store) Create(username string, r1, r2 *big.Int) (Session, error) {
	state, err := Transition(StateAwaitingCommitment, EventCommit)
	if err != nil {
		return Session{}, err
	}

	s := &Session{
		ID:        uuid.NewString(),
		Username:  username,
		R1:        r1,
		R2:        r2,
		State:     state,
		CreatedAt: st.now(),
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[s.ID]; ok {
		return Session{}, fmt.Errorf("%w: session id collision", common.ErrorInternal)
	}
	st.sessions[s.ID] = s
	return *s, nil
}

// IssueChallenge stores the challenge and moves the session to
// ChallengeIssued. The challenge is single-use: a second call fails with
// ChallengeAlreadyIssued.
func (st *Store) IssueChallenge(id string, c *big.Int) (Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := st.locked(id)
	if err != nil {
		return Session{}, err
	}

	next, err := Transition(s.State, EventChallenge)
	if err != nil {
		return *s, err
	}
	s.State = next
	s.Challenge = c
	return *s, nil
}

// Get returns a snapshot of the session, applying the lazy expiry check
// first.
func (st *Store) Get(id string) (Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := st.locked(id)
	if err != nil {
		return Session{}, err
	}
	return *s, nil
}

// Resolve closes a session in ChallengeIssued as verified or failed. It is
// the compare-and-swap step of a response submission: the caller runs the
// verification equations on a snapshot outside the lock, then commits the
// outcome here. If another call resolved the session in between, the swap
// fails with SessionClosed and no double-crediting occurs.
func (st *Store) Resolve(id string, accepted bool) (Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := st.locked(id)
	if err != nil {
		return Session{}, err
	}

	ev := EventReject
	if accepted {
		ev = EventAccept
	}
	next, err := Transition(s.State, ev)
	if err != nil {
		return *s, err
	}
	s.State = next
	return *s, nil
}

// locked looks a session up and applies the expiry policy. Callers must
// hold st.mu.
func (st *Store) locked(id string) (*Session, error) {
	s, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", common.ErrorNotFound, id)
	}

	if !s.State.Terminal() && st.now().Sub(s.CreatedAt) > st.ttl {
		s.State = StateFailed
		s.expired = true
	}
	if s.expired {
		return nil, common.ErrSessionExpired
	}
	return s, nil
}

// Len reports the number of stored sessions, terminal ones included.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Run sweeps the store periodically until the context is canceled. The
// sweep exists to cap memory growth from abandoned handshakes; correctness
// does not depend on it because expiry is also checked on access.
func (st *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(st.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := st.sweep()
			if removed > 0 {
				st.logger.Info(ctx, "Swept sessions", "removed", removed)
			}
		}
	}
}

// sweep drops sessions that are past their ttl and either terminal or
// expired. A session failed by timeout is kept for one more ttl so a late
// prover still receives SessionExpired instead of an unknown-session error.
func (st *Store) sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	removed := 0
	for id, s := range st.sessions {
		age := now.Sub(s.CreatedAt)
		if age > st.ttl && !s.State.Terminal() {
			s.State = StateFailed
			s.expired = true
		}
		if s.State.Terminal() && age > 2*st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
