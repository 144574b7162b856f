package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"design-order-backend/internal/draft"
)

// ErrDraftUnavailable means the durable slot could not be read. The request
// may be retried.
var ErrDraftUnavailable = errors.New("draft storage unavailable")

// Registry owns the live sessions of this process. A session that is not
// live is restored from the durable slot, which is what a reload looks like
// after a restart or eviction: everything but the file blobs survives.
type Registry struct {
	persister   *draft.Persister
	checkout    Checkout
	log         logrus.FieldLogger
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	lastSeen map[string]time.Time
}

// NewRegistry creates a registry. persister may be nil, in which case drafts
// live only as long as the process.
func NewRegistry(persister *draft.Persister, checkout Checkout, log logrus.FieldLogger, idleTimeout time.Duration) *Registry {
	return &Registry{
		persister:   persister,
		checkout:    checkout,
		log:         log,
		idleTimeout: idleTimeout,
		now:         time.Now,
		sessions:    make(map[string]*Session),
		lastSeen:    make(map[string]time.Time),
	}
}

// Open returns the session for id. An empty or malformed id starts a new
// session under a fresh id.
func (r *Registry) Open(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		id = ""
	}
	if id != "" {
		if s := r.live(id); s != nil {
			return s, nil
		}
	}

	store := draft.NewStore()
	if id == "" {
		id = uuid.NewString()
	} else if r.persister != nil {
		restored, err := r.persister.Load(ctx, id)
		switch {
		case err == nil:
			store = restored
		case errors.Is(err, draft.ErrSlotEmpty):
		case errors.Is(err, draft.ErrIncompatibleFormat):
			r.log.WithError(err).WithField("draft_id", id).Warn("discarding persisted draft")
			if err := r.persister.Clear(ctx, id); err != nil {
				r.log.WithError(err).WithField("draft_id", id).Warn("failed to clear persisted draft")
			}
		default:
			return nil, fmt.Errorf("%w: %v", ErrDraftUnavailable, err)
		}
	}

	s := newSession(id, store, r.checkout, r.persister, r.log)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[id]; ok {
		r.lastSeen[id] = r.now()
		return existing, nil
	}
	r.sessions[id] = s
	r.lastSeen[id] = r.now()
	return s, nil
}

// Complete resets the draft once payment for it has been observed.
func (r *Registry) Complete(ctx context.Context, id string) error {
	s, err := r.Open(ctx, id)
	if err != nil {
		return err
	}
	s.Reset(ctx)
	return nil
}

// Sweep drops sessions idle for longer than the idle timeout. Sessions with a
// checkout in flight are kept.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idleTimeout)
	evicted := 0
	for id, seen := range r.lastSeen {
		if seen.After(cutoff) || r.sessions[id].Submitting() {
			continue
		}
		delete(r.sessions, id)
		delete(r.lastSeen, id)
		evicted++
	}
	return evicted
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.log.WithField("evicted", n).Debug("idle draft sessions evicted")
			}
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) live(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		r.lastSeen[id] = r.now()
	}
	return s
}
