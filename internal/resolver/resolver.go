package resolver

import (
	"context"
	"log"
	"sync"
	"time"

	"matchsync-server/internal/domain"
	"matchsync-server/internal/store"
)

// Backend is the slice of the server API the resolver needs. The HTTP client
// in internal/backend implements it; tests substitute fakes.
type Backend interface {
	SyncStatus(ctx context.Context, sessionID string) (*domain.SyncSnapshot, error)
	FullSync(ctx context.Context, sessionID string) (*domain.SyncReport, error)
}

// NotifyFunc observes status transitions. It fires only when the status
// actually changes, never once per poll.
type NotifyFunc func(old, new domain.SyncStatus)

type Options struct {
	// Interval between periodic checks while a session is active.
	Interval time.Duration
	// FocusDebounce suppresses focus-triggered checks that land too soon
	// after the previous check.
	FocusDebounce time.Duration
	// AutoSyncOnPending fires one full sync when a check yields pending.
	// A failed auto-sync is not retried; the next periodic check owns it.
	AutoSyncOnPending bool
	Notify            NotifyFunc
}

// Resolver polls the backend, diffs its snapshot against the local store and
// classifies the divergence. Checks and syncs are at-most-one-concurrent:
// while one is outstanding a new request is dropped, not queued. A response
// arriving after the session changed underneath it is discarded.
type Resolver struct {
	mu      sync.Mutex
	backend Backend
	store   *store.Store

	interval      time.Duration
	focusDebounce time.Duration
	autoSync      bool
	notify        NotifyFunc

	sessionID  string
	generation int
	status     domain.SyncStatus
	snapshot   domain.SyncSnapshot
	checking   bool
	syncing    bool
	lastCheck  time.Time
	stop       chan struct{}
}

func New(backend Backend, s *store.Store, opts Options) *Resolver {
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.FocusDebounce <= 0 {
		opts.FocusDebounce = 5 * time.Second
	}
	return &Resolver{
		backend:       backend,
		store:         s,
		interval:      opts.Interval,
		focusDebounce: opts.FocusDebounce,
		autoSync:      opts.AutoSyncOnPending,
		notify:        opts.Notify,
		status:        domain.SyncUnknown,
	}
}

// SetSession points the resolver at a session and kicks an immediate check.
// An empty id tears the session down: timer stopped, counts reset, status
// back to unknown.
func (r *Resolver) SetSession(sessionID string) {
	r.mu.Lock()

	if sessionID == r.sessionID {
		r.mu.Unlock()
		return
	}

	r.generation++
	r.sessionID = sessionID
	r.checking = false
	r.syncing = false
	r.snapshot = domain.SyncSnapshot{}
	if r.stop != nil {
		close(r.stop)
		r.stop = nil
	}

	if sessionID == "" {
		fire := r.setStatusLocked(domain.SyncUnknown)
		r.mu.Unlock()
		fire()
		return
	}

	fire := r.setStatusLocked(domain.SyncChecking)
	r.checking = true
	r.lastCheck = time.Now()
	gen := r.generation
	stop := make(chan struct{})
	r.stop = stop
	interval := r.interval
	r.mu.Unlock()
	fire()

	go r.loop(interval, stop)
	go r.doCheck(gen, sessionID)
}

// SetInterval restarts the periodic timer with a new interval.
func (r *Resolver) SetInterval(d time.Duration) {
	r.mu.Lock()
	r.interval = d
	if r.stop != nil {
		close(r.stop)
		stop := make(chan struct{})
		r.stop = stop
		r.mu.Unlock()
		go r.loop(d, stop)
		return
	}
	r.mu.Unlock()
}

// Stop tears down the periodic timer without clearing the session.
func (r *Resolver) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stop != nil {
		close(r.stop)
		r.stop = nil
	}
}

func (r *Resolver) loop(interval time.Duration, stop chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.CheckStatus()
		case <-stop:
			return
		}
	}
}

// CheckStatus issues one status query. Returns false when the check was
// dropped because no session is active or another check is outstanding.
func (r *Resolver) CheckStatus() bool {
	r.mu.Lock()
	if r.sessionID == "" || r.checking {
		r.mu.Unlock()
		return false
	}
	// Re-checks keep the last observed status; only the initial check after a
	// session change shows as checking. Were the status flipped to checking on
	// every poll, an unchanged pending would re-notify each cycle.
	r.checking = true
	r.lastCheck = time.Now()
	gen := r.generation
	sid := r.sessionID
	r.mu.Unlock()

	go r.doCheck(gen, sid)
	return true
}

// OnFocus is the out-of-band check for a window regaining focus, debounced
// so it does not stack on top of a recent periodic check.
func (r *Resolver) OnFocus() bool {
	r.mu.Lock()
	if time.Since(r.lastCheck) < r.focusDebounce {
		r.mu.Unlock()
		return false
	}
	r.mu.Unlock()
	return r.CheckStatus()
}

func (r *Resolver) doCheck(gen int, sessionID string) {
	snap, err := r.backend.SyncStatus(context.Background(), sessionID)

	r.mu.Lock()
	if gen != r.generation {
		// Session changed while the query was in flight; the result no
		// longer describes anything we hold.
		r.mu.Unlock()
		return
	}
	r.checking = false

	if err != nil {
		fire := r.setStatusLocked(domain.SyncError)
		r.mu.Unlock()
		fire()
		log.Printf("sync status check failed: %v", err)
		return
	}

	r.snapshot = *snap
	newStatus := snap.Status
	if newStatus != domain.SyncConflict {
		problems, links := r.store.Counts()
		if snap.GroupsCount != problems || snap.LinksCount != links {
			newStatus = domain.SyncPending
		}
	}
	fire := r.setStatusLocked(newStatus)
	autoSync := newStatus == domain.SyncPending && r.autoSync
	r.mu.Unlock()
	fire()

	if autoSync {
		r.TriggerSync()
	}
}

// TriggerSync issues one full sync. Dropped (returns false) while another
// sync is outstanding. Success lands on synced; counts are corrected by the
// next check rather than refreshed here. Failure lands on error and is left
// to the next periodic check.
func (r *Resolver) TriggerSync() bool {
	r.mu.Lock()
	if r.sessionID == "" || r.syncing {
		r.mu.Unlock()
		return false
	}
	r.syncing = true
	gen := r.generation
	sid := r.sessionID
	r.mu.Unlock()

	go r.doSync(gen, sid)
	return true
}

func (r *Resolver) doSync(gen int, sessionID string) {
	report, err := r.backend.FullSync(context.Background(), sessionID)

	r.mu.Lock()
	if gen != r.generation {
		r.mu.Unlock()
		return
	}
	r.syncing = false

	var fire func()
	if err != nil {
		fire = r.setStatusLocked(domain.SyncError)
		log.Printf("full sync failed: %v", err)
	} else {
		fire = r.setStatusLocked(domain.SyncSynced)
		log.Printf("full sync: %d problems added, %d links synced", report.ProblemsAdded, report.LinksSynced)
	}
	r.mu.Unlock()
	fire()
}

// setStatusLocked updates the status and returns the notification to fire
// after the lock is released. The callback runs only on a real transition.
func (r *Resolver) setStatusLocked(newStatus domain.SyncStatus) func() {
	if newStatus == r.status {
		return func() {}
	}
	old := r.status
	r.status = newStatus
	notify := r.notify
	if notify == nil {
		return func() {}
	}
	return func() { notify(old, newStatus) }
}

func (r *Resolver) Status() domain.SyncStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Resolver) Snapshot() domain.SyncSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot
}

func (r *Resolver) IsChecking() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.checking
}

func (r *Resolver) IsSyncing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.syncing
}
