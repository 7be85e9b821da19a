package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ResetScheduler drives the day-boundary cutover. A single cron entry
// fires at midnight in the boundary timezone and sweeps every owner with a
// non-empty live aggregate through the snapshot+put+clear sequence. Owners
// whose archival hits a transient storage failure stay on a retry list
// drained once a minute; after maxAttempts the failure is surfaced to the
// operator channel and retries stop. Owners fail independently.
type ResetScheduler struct {
	svc *IntakeService
	ops *OpsNotifier // nil disables the operator channel
	loc *time.Location

	cron        *cron.Cron
	retryEvery  time.Duration
	maxAttempts int

	mu        sync.Mutex
	archiving bool         // Idle <-> Archiving
	pending   map[uint]int // owner -> failed attempts

	stop chan struct{}
}

func NewResetScheduler(svc *IntakeService, ops *OpsNotifier, loc *time.Location) *ResetScheduler {
	return &ResetScheduler{
		svc:         svc,
		ops:         ops,
		loc:         loc,
		retryEvery:  time.Minute,
		maxAttempts: 5,
		pending:     make(map[uint]int),
		stop:        make(chan struct{}),
	}
}

func (rs *ResetScheduler) Start() error {
	rs.cron = cron.New(cron.WithLocation(rs.loc))
	if _, err := rs.cron.AddFunc("0 0 * * *", rs.runBoundary); err != nil {
		return err
	}
	rs.cron.Start()
	go rs.retryLoop()
	return nil
}

func (rs *ResetScheduler) Stop() {
	if rs.cron != nil {
		rs.cron.Stop()
	}
	close(rs.stop)
}

// runBoundary performs one Idle -> Archiving -> Idle transition. A tick
// that arrives while a sweep is still running is dropped; the retry loop
// covers anything it would have picked up.
func (rs *ResetScheduler) runBoundary() {
	rs.mu.Lock()
	if rs.archiving {
		rs.mu.Unlock()
		return
	}
	rs.archiving = true
	rs.mu.Unlock()
	defer func() {
		rs.mu.Lock()
		rs.archiving = false
		rs.mu.Unlock()
	}()

	owners, err := rs.svc.store.ListLiveOwners()
	if err != nil {
		log.Printf("reset scheduler: cannot list owners: %v", err)
		return
	}
	for _, uid := range owners {
		rs.archiveOwner(uid)
	}
}

func (rs *ResetScheduler) archiveOwner(userID uint) {
	err := rs.svc.ManualReset(userID)
	if err == nil {
		rs.mu.Lock()
		delete(rs.pending, userID)
		rs.mu.Unlock()
		return
	}

	if !IsStorageError(err) {
		// Conflicts and validation failures will not heal on retry.
		log.Printf("reset scheduler: archival for user %d needs investigation: %v", userID, err)
		EmitAlert(userID, "warning", fmt.Sprintf("Daily intake archival failed: %v", err))
		rs.surface(userID, err)
		rs.mu.Lock()
		delete(rs.pending, userID)
		rs.mu.Unlock()
		return
	}

	rs.mu.Lock()
	rs.pending[userID]++
	attempts := rs.pending[userID]
	exhausted := attempts >= rs.maxAttempts
	if exhausted {
		delete(rs.pending, userID)
	}
	rs.mu.Unlock()

	if exhausted {
		log.Printf("reset scheduler: giving up on user %d after %d attempts: %v", userID, attempts, err)
		EmitAlert(userID, "warning", "Daily intake archival failed repeatedly; yesterday's data is preserved but not archived")
		rs.surface(userID, err)
		return
	}
	log.Printf("reset scheduler: archival for user %d failed (attempt %d), will retry: %v", userID, attempts, err)
}

func (rs *ResetScheduler) surface(userID uint, cause error) {
	if rs.ops == nil {
		return
	}
	dateKey := rs.svc.todayKey()
	if live, err := rs.svc.store.LoadLive(userID); err == nil && live != nil {
		dateKey = live.DateKey // the stuck day, not the new one
	}
	rs.ops.ArchivalFailed(userID, dateKey, cause)
}

func (rs *ResetScheduler) retryLoop() {
	t := time.NewTicker(rs.retryEvery)
	defer t.Stop()
	for {
		select {
		case <-rs.stop:
			return
		case <-t.C:
			rs.mu.Lock()
			owners := make([]uint, 0, len(rs.pending))
			for uid := range rs.pending {
				owners = append(owners, uid)
			}
			rs.mu.Unlock()
			for _, uid := range owners {
				rs.archiveOwner(uid)
			}
		}
	}
}
