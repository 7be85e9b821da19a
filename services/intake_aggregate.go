package services

import (
	"fmt"
	"time"

	"github.com/manmeddynamics7-hub/healtify/models"
)

// DailyAggregate accumulates one user's food entries for a single day. It
// is a plain in-memory value; IntakeService serializes all access through
// the owner's mutex and writes changes through to the daily_intakes table.
type DailyAggregate struct {
	UserID  uint
	DateKey string // YYYY-MM-DD in the boundary timezone
	Entries []models.FoodEntry
	Totals  models.MacroTotals
}

func NewDailyAggregate(userID uint, dateKey string) *DailyAggregate {
	return &DailyAggregate{UserID: userID, DateKey: dateKey}
}

// AddEntry appends the entry and recomputes totals. Totals are recomputed
// from scratch on every mutation rather than adjusted incrementally, so a
// missed removal or float drift can never leave them out of sync.
func (a *DailyAggregate) AddEntry(e models.FoodEntry) error {
	if e.UserID != a.UserID {
		return fmt.Errorf("%w: entry owner %d does not match aggregate owner %d", ErrValidation, e.UserID, a.UserID)
	}
	if e.Calories < 0 || e.Protein < 0 || e.Carbs < 0 || e.Fat < 0 {
		return fmt.Errorf("%w: macro values must be non-negative", ErrValidation)
	}
	if e.HealthScore != nil && (*e.HealthScore < 0 || *e.HealthScore > 10) {
		return fmt.Errorf("%w: health_score must be between 0 and 10", ErrValidation)
	}
	a.Entries = append(a.Entries, e)
	a.recompute()
	return nil
}

// RemoveEntry drops the entry with the given id if present and reports
// whether anything changed. A missing id is not an error: clients retry
// deletes and the second attempt must succeed quietly.
func (a *DailyAggregate) RemoveEntry(entryID string) bool {
	for i, e := range a.Entries {
		if e.ID == entryID {
			a.Entries = append(a.Entries[:i], a.Entries[i+1:]...)
			a.recompute()
			return true
		}
	}
	return false
}

// Snapshot produces an immutable archive row for the current state without
// mutating the aggregate.
func (a *DailyAggregate) Snapshot(now time.Time) models.IntakeArchive {
	entries := make([]models.FoodEntry, len(a.Entries))
	copy(entries, a.Entries)
	return models.IntakeArchive{
		UserID:     a.UserID,
		DateKey:    a.DateKey,
		Entries:    entries,
		Totals:     a.Totals,
		ArchivedAt: now,
	}
}

// Clear returns a fresh empty aggregate for the given day.
func (a *DailyAggregate) Clear(dateKey string) *DailyAggregate {
	return NewDailyAggregate(a.UserID, dateKey)
}

func (a *DailyAggregate) IsEmpty() bool { return len(a.Entries) == 0 }

func (a *DailyAggregate) recompute() {
	var t models.MacroTotals
	for _, e := range a.Entries {
		t.Calories += e.Calories
		t.Protein += e.Protein
		t.Carbs += e.Carbs
		t.Fat += e.Fat
	}
	a.Totals = t
}
