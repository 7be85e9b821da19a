package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/manmeddynamics7-hub/healtify/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// FoodEntryRequest is the payload accepted by AddEntry. Missing macros
// default to zero; negatives are rejected before the aggregate is touched.
type FoodEntryRequest struct {
	Name        string   `json:"name" validate:"required"`
	Calories    *float64 `json:"calories" validate:"omitempty,gte=0"`
	Protein     *float64 `json:"protein" validate:"omitempty,gte=0"`
	Carbs       *float64 `json:"carbs" validate:"omitempty,gte=0"`
	Fat         *float64 `json:"fat" validate:"omitempty,gte=0"`
	ServingSize string   `json:"serving_size"`
	HealthScore *int     `json:"health_score" validate:"omitempty,gte=0,lte=10"`
	ImageURL    string   `json:"image_url"`
}

// IntakeService is the single entry point for everything that touches a
// user's current-day aggregate or the archive. All mutation for one owner
// runs under that owner's mutex, including the scheduler's snapshot+clear,
// so an add can never interleave with a cutover for the same owner.
// Cross-owner operations proceed in parallel; there is no global lock.
type IntakeService struct {
	store IntakeStorage
	hub   *RealtimeHub
	loc   *time.Location
	now   func() time.Time

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
	live  map[uint]*DailyAggregate
}

func NewIntakeService(store IntakeStorage, hub *RealtimeHub, loc *time.Location) *IntakeService {
	return &IntakeService{
		store: store,
		hub:   hub,
		loc:   loc,
		now:   time.Now,
		locks: make(map[uint]*sync.Mutex),
		live:  make(map[uint]*DailyAggregate),
	}
}

// AddEntry validates the payload, stores the entry in today's aggregate
// (creating or rolling it over as needed) and returns the stored record.
func (s *IntakeService) AddEntry(userID uint, req FoodEntryRequest) (*models.FoodEntry, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	l := s.ownerLock(userID)
	l.Lock()
	defer l.Unlock()

	agg, err := s.currentAggregate(userID)
	if err != nil {
		return nil, err
	}

	entry := models.FoodEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        req.Name,
		Calories:    deref(req.Calories),
		Protein:     deref(req.Protein),
		Carbs:       deref(req.Carbs),
		Fat:         deref(req.Fat),
		ServingSize: req.ServingSize,
		HealthScore: req.HealthScore,
		ImageURL:    req.ImageURL,
		AddedAt:     s.now(),
	}
	if err := agg.AddEntry(entry); err != nil {
		return nil, err
	}
	if err := s.persist(agg); err != nil {
		agg.RemoveEntry(entry.ID) // keep memory and storage in step
		return nil, err
	}

	s.broadcast(userID, "intake.updated", agg)
	return &entry, nil
}

// RemoveEntry deletes the entry if it is still part of today's aggregate.
// Removing an unknown id succeeds: delete retries must be harmless.
func (s *IntakeService) RemoveEntry(userID uint, entryID string) error {
	l := s.ownerLock(userID)
	l.Lock()
	defer l.Unlock()

	agg, err := s.currentAggregate(userID)
	if err != nil {
		return err
	}

	var removed *models.FoodEntry
	for i := range agg.Entries {
		if agg.Entries[i].ID == entryID {
			e := agg.Entries[i]
			removed = &e
			break
		}
	}
	if removed == nil {
		return nil
	}

	agg.RemoveEntry(entryID)
	if err := s.persist(agg); err != nil {
		_ = agg.AddEntry(*removed)
		return err
	}

	s.broadcast(userID, "intake.updated", agg)
	return nil
}

// GetToday returns the current aggregate view. It never fails the caller:
// a user with no entries yet gets an empty aggregate, and a rollover that
// cannot archive yesterday is left for the scheduler to retry while the
// caller still sees an empty today.
func (s *IntakeService) GetToday(userID uint) *models.DailyIntake {
	l := s.ownerLock(userID)
	l.Lock()
	defer l.Unlock()

	agg, err := s.currentAggregate(userID)
	if err != nil {
		log.Printf("intake: rollover pending for user %d: %v", userID, err)
		return emptyView(userID, s.todayKey())
	}
	return viewOf(agg)
}

func (s *IntakeService) GetArchived(userID uint, dateKey string) (*models.IntakeArchive, error) {
	return s.store.GetArchive(userID, dateKey)
}

func (s *IntakeService) ListArchiveDates(userID uint) ([]string, error) {
	return s.store.ListArchiveDates(userID)
}

// ManualReset forces the snapshot+clear cutover for one owner outside the
// scheduled boundary. It shares the scheduler's archival path, so retrying
// a reset is as safe as retrying a boundary tick.
func (s *IntakeService) ManualReset(userID uint) error {
	l := s.ownerLock(userID)
	l.Lock()
	defer l.Unlock()
	return s.rolloverLocked(userID)
}

// rolloverLocked archives the owner's live aggregate under its own date
// and installs a fresh one for today. On archival failure the live
// aggregate is left untouched so no day is silently lost. Caller must hold
// the owner lock.
func (s *IntakeService) rolloverLocked(userID uint) error {
	agg, err := s.loadAggregate(userID)
	if err != nil {
		return err
	}
	today := s.todayKey()
	if agg == nil {
		s.setLive(userID, NewDailyAggregate(userID, today))
		return nil
	}
	if !agg.IsEmpty() {
		if err := s.archiveAggregate(agg); err != nil {
			return err
		}
	} else if err := s.store.DeleteLive(userID, agg.DateKey); err != nil {
		return err
	}
	s.setLive(userID, agg.Clear(today))
	s.broadcast(userID, "intake.reset", nil)
	return nil
}

// currentAggregate returns the owner's aggregate for today. A stale
// aggregate from an earlier day is archived first: archival of day D
// happens-before any entry recorded under day D+1. Caller must hold the
// owner lock.
func (s *IntakeService) currentAggregate(userID uint) (*DailyAggregate, error) {
	today := s.todayKey()
	agg, err := s.loadAggregate(userID)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		agg = NewDailyAggregate(userID, today)
		s.setLive(userID, agg)
		return agg, nil
	}
	if agg.DateKey == today {
		return agg, nil
	}
	if !agg.IsEmpty() {
		if err := s.archiveAggregate(agg); err != nil {
			return nil, err
		}
	} else if err := s.store.DeleteLive(userID, agg.DateKey); err != nil {
		return nil, err
	}
	agg = agg.Clear(today)
	s.setLive(userID, agg)
	return agg, nil
}

func (s *IntakeService) archiveAggregate(agg *DailyAggregate) error {
	rec := agg.Snapshot(s.now())
	if err := s.store.PutArchive(rec); err != nil {
		return err
	}
	if err := s.store.DeleteLive(agg.UserID, agg.DateKey); err != nil {
		return err
	}
	return nil
}

func (s *IntakeService) persist(agg *DailyAggregate) error {
	return s.store.SaveLive(&models.DailyIntake{
		UserID:  agg.UserID,
		DateKey: agg.DateKey,
		Entries: agg.Entries,
		Totals:  agg.Totals,
	})
}

// loadAggregate returns the cached aggregate, falling back to the
// persisted live document so an unarchived day survives a restart. Caller
// must hold the owner lock.
func (s *IntakeService) loadAggregate(userID uint) (*DailyAggregate, error) {
	s.mu.Lock()
	agg := s.live[userID]
	s.mu.Unlock()
	if agg != nil {
		return agg, nil
	}

	doc, err := s.store.LoadLive(userID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	agg = &DailyAggregate{
		UserID:  doc.UserID,
		DateKey: doc.DateKey,
		Entries: append([]models.FoodEntry(nil), doc.Entries...),
	}
	agg.recompute()
	s.setLive(userID, agg)
	return agg, nil
}

func (s *IntakeService) ownerLock(userID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.locks[userID]
	if l == nil {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

func (s *IntakeService) setLive(userID uint, agg *DailyAggregate) {
	s.mu.Lock()
	s.live[userID] = agg
	s.mu.Unlock()
}

func (s *IntakeService) todayKey() string {
	return s.now().In(s.loc).Format("2006-01-02")
}

func (s *IntakeService) broadcast(userID uint, kind string, agg *DailyAggregate) {
	if s.hub == nil {
		return
	}
	payload := map[string]any{"kind": kind}
	if agg != nil {
		payload["date"] = agg.DateKey
		payload["totals"] = agg.Totals
	}
	s.hub.Broadcast(userID, payload)
}

func viewOf(agg *DailyAggregate) *models.DailyIntake {
	entries := make([]models.FoodEntry, len(agg.Entries))
	copy(entries, agg.Entries)
	return &models.DailyIntake{
		UserID:  agg.UserID,
		DateKey: agg.DateKey,
		Entries: entries,
		Totals:  agg.Totals,
	}
}

func emptyView(userID uint, dateKey string) *models.DailyIntake {
	return &models.DailyIntake{UserID: userID, DateKey: dateKey, Entries: []models.FoodEntry{}}
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
