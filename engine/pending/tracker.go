package pending

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultPollInterval is how often ExecuteWhenReady re-checks readiness.
const DefaultPollInterval = 150 * time.Millisecond

// ErrUnknownToken is returned by RemovePendingData for a token that is not outstanding.
var ErrUnknownToken = errors.New("pending: unknown token")

// Token is an opaque handle for one unit of outstanding asynchronous work.
type Token struct {
	id uuid.UUID
}

// NewToken returns a fresh token.
func NewToken() Token {
	return Token{id: uuid.New()}
}

// String returns the token's identifier.
func (t Token) String() string {
	return t.id.String()
}

// IsZero reports whether t was never issued by NewToken.
func (t Token) IsZero() bool {
	return t.id == uuid.Nil
}

// Tracker is the "is the scene ready" gate used by asynchronous loaders. A scene is not ready
// while any token is outstanding or while the readiness func reports work in flight.
type Tracker interface {
	// AddPendingData registers outstanding work. Adding the same token twice is a no-op.
	//
	// Parameters:
	//   - t: the token identifying the work
	AddPendingData(t Token)

	// RemovePendingData marks work complete.
	//
	// Parameters:
	//   - t: the token passed to AddPendingData
	//
	// Returns:
	//   - error: ErrUnknownToken if t is not outstanding; the count is unchanged
	RemovePendingData(t Token) error

	// PendingCount retrieves the number of outstanding tokens.
	//
	// Returns:
	//   - int: the outstanding token count
	PendingCount() int

	// IsReady reports whether no token is outstanding and the readiness func, if any, agrees.
	//
	// Returns:
	//   - bool: true if the tracker is ready
	IsReady() bool

	// ExecuteWhenReady queues fn to run once the tracker becomes ready. If it is ready now,
	// queued callbacks run before the call returns. Otherwise a poll re-checks on the poll
	// interval and runs every queued callback exactly once, on the poll goroutine, then stops.
	//
	// Parameters:
	//   - fn: the callback (nil is ignored)
	ExecuteWhenReady(fn func())

	// Polling reports whether a readiness poll is scheduled.
	//
	// Returns:
	//   - bool: true while a poll is scheduled
	Polling() bool

	// Stop cancels any scheduled poll and drops queued callbacks. Later ExecuteWhenReady calls
	// are ignored.
	Stop()
}

type trackerImpl struct {
	mu       *sync.Mutex
	tokens   map[Token]struct{}
	ready    func() bool
	interval time.Duration
	log      logrus.FieldLogger

	callbacks []func()
	timer     *time.Timer
	polling   bool
	stopped   bool
}

var _ Tracker = &trackerImpl{}

// NewTracker creates an empty tracker.
//
// Parameters:
//   - options: functional options such as WithPollInterval or WithReadyFunc
//
// Returns:
//   - Tracker: the new tracker
func NewTracker(options ...TrackerBuilderOption) Tracker {
	t := &trackerImpl{
		mu:       &sync.Mutex{},
		tokens:   make(map[Token]struct{}),
		interval: DefaultPollInterval,
		log:      logger.Noop(),
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

func (t *trackerImpl) AddPendingData(tok Token) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tokens[tok] = struct{}{}
}

func (t *trackerImpl) RemovePendingData(tok Token) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.tokens[tok]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToken, tok)
	}
	delete(t.tokens, tok)
	return nil
}

func (t *trackerImpl) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tokens)
}

func (t *trackerImpl) IsReady() bool {
	t.mu.Lock()
	n, ready := len(t.tokens), t.ready
	t.mu.Unlock()
	if n > 0 {
		return false
	}
	return ready == nil || ready()
}

func (t *trackerImpl) ExecuteWhenReady(fn func()) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.callbacks = append(t.callbacks, fn)
	scheduled := t.polling
	t.polling = true
	t.mu.Unlock()

	if !scheduled {
		t.check()
	}
}

// check fires the queued callbacks when ready, otherwise schedules the next poll.
func (t *trackerImpl) check() {
	ready := t.IsReady()

	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	if !ready {
		t.log.WithField("pending", len(t.tokens)).Debug("pending: not ready, polling")
		t.timer = time.AfterFunc(t.interval, t.check)
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.polling = false
	fire := t.callbacks
	t.callbacks = nil
	t.mu.Unlock()

	for _, fn := range fire {
		fn()
	}
}

func (t *trackerImpl) Polling() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.polling
}

func (t *trackerImpl) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.polling = false
	t.callbacks = nil
}
