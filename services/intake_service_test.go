package services

import (
	"errors"
	"testing"
	"time"

	"github.com/manmeddynamics7-hub/healtify/models"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T) (*IntakeService, *fakeClock, *IntakeStore) {
	store := NewIntakeStore(newTestDB(t))
	clock := &fakeClock{t: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
	svc := NewIntakeService(store, nil, time.UTC)
	svc.now = clock.Now
	return svc, clock, store
}

func f(v float64) *float64 { return &v }

func appleRequest() FoodEntryRequest {
	return FoodEntryRequest{
		Name:     "apple",
		Calories: f(95),
		Protein:  f(0.5),
		Carbs:    f(25),
		Fat:      f(0.3),
	}
}

func TestAddEntryAndGetToday(t *testing.T) {
	svc, _, _ := newTestService(t)

	entry, err := svc.AddEntry(1, appleRequest())
	assert.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, uint(1), entry.UserID)

	today := svc.GetToday(1)
	assert.Equal(t, "2024-01-15", today.DateKey)
	assert.Len(t, today.Entries, 1)
	assert.Equal(t, models.MacroTotals{Calories: 95, Protein: 0.5, Carbs: 25, Fat: 0.3}, today.Totals)
}

func TestAddEntryDefaultsMissingMacrosToZero(t *testing.T) {
	svc, _, _ := newTestService(t)

	entry, err := svc.AddEntry(1, FoodEntryRequest{Name: "water"})
	assert.NoError(t, err)
	assert.Zero(t, entry.Calories)
	assert.Zero(t, entry.Protein)
	assert.Zero(t, entry.Carbs)
	assert.Zero(t, entry.Fat)
}

func TestAddEntryRejectsNegativeMacros(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := appleRequest()
	req.Calories = f(-5)
	_, err := svc.AddEntry(1, req)
	assert.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, svc.GetToday(1).Entries)
}

func TestTwoEntriesSumCalories(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.AddEntry(1, appleRequest())
	assert.NoError(t, err)
	_, err = svc.AddEntry(1, FoodEntryRequest{Name: "banana", Calories: f(52), Protein: f(0.7), Carbs: f(14), Fat: f(0.2)})
	assert.NoError(t, err)

	assert.Equal(t, 147.0, svc.GetToday(1).Totals.Calories)
}

func TestRemoveEntryIsIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)

	entry, err := svc.AddEntry(1, appleRequest())
	assert.NoError(t, err)

	assert.NoError(t, svc.RemoveEntry(1, entry.ID))
	assert.NoError(t, svc.RemoveEntry(1, entry.ID)) // retry succeeds quietly
	assert.NoError(t, svc.RemoveEntry(1, "no-such-entry"))

	today := svc.GetToday(1)
	assert.Empty(t, today.Entries)
	assert.Equal(t, models.MacroTotals{}, today.Totals)
}

func TestManualResetArchivesToday(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.AddEntry(1, appleRequest())
	assert.NoError(t, err)
	preReset := svc.GetToday(1).Totals

	assert.NoError(t, svc.ManualReset(1))

	dates, err := svc.ListArchiveDates(1)
	assert.NoError(t, err)
	assert.Contains(t, dates, "2024-01-15")

	rec, err := svc.GetArchived(1, "2024-01-15")
	assert.NoError(t, err)
	assert.Equal(t, preReset, rec.Totals)
	assert.Len(t, rec.Entries, 1)

	assert.Empty(t, svc.GetToday(1).Entries)
}

func TestManualResetWithEmptyAggregateIsANoOp(t *testing.T) {
	svc, _, _ := newTestService(t)

	assert.NoError(t, svc.ManualReset(1))

	dates, err := svc.ListArchiveDates(1)
	assert.NoError(t, err)
	assert.Empty(t, dates)
}

func TestDayBoundaryRollover(t *testing.T) {
	svc, clock, _ := newTestService(t)

	_, err := svc.AddEntry(1, appleRequest())
	assert.NoError(t, err)
	preCutover := svc.GetToday(1).Totals

	clock.Advance(24 * time.Hour) // now 2024-01-16

	today := svc.GetToday(1)
	assert.Equal(t, "2024-01-16", today.DateKey)
	assert.Empty(t, today.Entries)

	rec, err := svc.GetArchived(1, "2024-01-15")
	assert.NoError(t, err)
	assert.Equal(t, preCutover, rec.Totals)
}

// Archival of day D must happen before any entry lands under day D+1.
func TestRolloverArchivesBeforeNewEntry(t *testing.T) {
	svc, clock, _ := newTestService(t)

	_, err := svc.AddEntry(1, appleRequest())
	assert.NoError(t, err)

	clock.Advance(24 * time.Hour)
	entry, err := svc.AddEntry(1, FoodEntryRequest{Name: "toast", Calories: f(120)})
	assert.NoError(t, err)

	rec, err := svc.GetArchived(1, "2024-01-15")
	assert.NoError(t, err)
	assert.Equal(t, 95.0, rec.Totals.Calories)

	today := svc.GetToday(1)
	assert.Equal(t, "2024-01-16", today.DateKey)
	assert.Equal(t, []models.FoodEntry{*entry}, today.Entries)
}

func TestGetArchivedUnknownDate(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetArchived(1, "1999-12-31")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOwnersAreIndependent(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.AddEntry(1, appleRequest())
	assert.NoError(t, err)
	_, err = svc.AddEntry(2, FoodEntryRequest{Name: "rice", Calories: f(200)})
	assert.NoError(t, err)

	assert.NoError(t, svc.ManualReset(1))

	assert.Empty(t, svc.GetToday(1).Entries)
	assert.Len(t, svc.GetToday(2).Entries, 1)

	dates, err := svc.ListArchiveDates(2)
	assert.NoError(t, err)
	assert.Empty(t, dates)
}

func TestLiveAggregateSurvivesRestart(t *testing.T) {
	svc, clock, store := newTestService(t)

	_, err := svc.AddEntry(1, appleRequest())
	assert.NoError(t, err)

	// a second service over the same store stands in for a restarted process
	svc2 := NewIntakeService(store, nil, time.UTC)
	svc2.now = clock.Now

	today := svc2.GetToday(1)
	assert.Len(t, today.Entries, 1)
	assert.Equal(t, 95.0, today.Totals.Calories)
}

type flakyStore struct {
	IntakeStorage
	failPuts bool
}

func (s *flakyStore) PutArchive(rec models.IntakeArchive) error {
	if s.failPuts {
		return &StorageError{Op: "write archive", Err: errors.New("storage down")}
	}
	return s.IntakeStorage.PutArchive(rec)
}

func TestFailedArchivalKeepsLiveAggregate(t *testing.T) {
	base := NewIntakeStore(newTestDB(t))
	flaky := &flakyStore{IntakeStorage: base, failPuts: true}
	clock := &fakeClock{t: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
	svc := NewIntakeService(flaky, nil, time.UTC)
	svc.now = clock.Now

	_, err := svc.AddEntry(1, appleRequest())
	assert.NoError(t, err)

	err = svc.ManualReset(1)
	assert.True(t, IsStorageError(err))

	// nothing was cleared or archived
	_, err = svc.GetArchived(1, "2024-01-15")
	assert.ErrorIs(t, err, ErrNotFound)
	live, err := base.LoadLive(1)
	assert.NoError(t, err)
	assert.Len(t, live.Entries, 1)

	// once storage heals the same reset completes the cutover
	flaky.failPuts = false
	assert.NoError(t, svc.ManualReset(1))

	rec, err := svc.GetArchived(1, "2024-01-15")
	assert.NoError(t, err)
	assert.Equal(t, 95.0, rec.Totals.Calories)
	assert.Empty(t, svc.GetToday(1).Entries)
}
