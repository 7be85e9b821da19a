package services

import (
	"context"
	"testing"

	"github.com/manmeddynamics7-hub/healtify/models"

	"github.com/stretchr/testify/assert"
)

func seedArchives(t *testing.T, store *IntakeStore, userID uint, byDate map[string]float64) {
	t.Helper()
	for date, cals := range byDate {
		assert.NoError(t, store.PutArchive(models.IntakeArchive{
			UserID:  userID,
			DateKey: date,
			Entries: []models.FoodEntry{{ID: "e-" + date, UserID: userID, Name: "meal", Calories: cals}},
			Totals:  models.MacroTotals{Calories: cals},
		}))
	}
}

func TestSummaryAveragesArchivedDays(t *testing.T) {
	db := newTestDB(t)
	store := NewIntakeStore(db)
	svc := NewIntakeAnalyticsService(db)

	seedArchives(t, store, 1, map[string]float64{
		"2024-01-15": 1800,
		"2024-01-16": 2200,
	})

	out, err := svc.Summary(context.Background(), 1, "2024-01-15", "2024-01-18", false)
	assert.NoError(t, err)
	assert.Equal(t, 2, out.Metadata.DaysCounted)
	assert.Equal(t, 2000.0, out.Macros["calories"].AvgConsumed)
}

func TestSummaryIncludeMissingCountsZeroDays(t *testing.T) {
	db := newTestDB(t)
	store := NewIntakeStore(db)
	svc := NewIntakeAnalyticsService(db)

	seedArchives(t, store, 1, map[string]float64{"2024-01-15": 2000})

	out, err := svc.Summary(context.Background(), 1, "2024-01-15", "2024-01-18", true)
	assert.NoError(t, err)
	assert.Equal(t, 4, out.Metadata.DaysCounted)
	assert.Equal(t, 500.0, out.Macros["calories"].AvgConsumed)
}

func TestSummaryPercentAgainstGoal(t *testing.T) {
	db := newTestDB(t)
	store := NewIntakeStore(db)
	svc := NewIntakeAnalyticsService(db)

	assert.NoError(t, db.Create(&models.DailyGoal{UserID: 1, Calories: 2000}).Error)
	seedArchives(t, store, 1, map[string]float64{
		"2024-01-15": 1000,
		"2024-01-16": 3000, // clamps at 100%
	})

	out, err := svc.Summary(context.Background(), 1, "2024-01-15", "2024-01-16", false)
	assert.NoError(t, err)
	assert.Equal(t, 0.75, out.Macros["calories"].AvgPercent)
	assert.Equal(t, 2000.0, out.Macros["calories"].AvgGoal)
}

func TestSummaryValidatesRange(t *testing.T) {
	svc := NewIntakeAnalyticsService(newTestDB(t))

	_, err := svc.Summary(context.Background(), 1, "bogus", "2024-01-16", false)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Summary(context.Background(), 1, "2024-01-16", "2024-01-15", false)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRollupsGroupByWeekAndMonth(t *testing.T) {
	db := newTestDB(t)
	store := NewIntakeStore(db)
	svc := NewIntakeAnalyticsService(db)

	// 2024-01-15 is a Monday; the 14th falls in the previous ISO week.
	seedArchives(t, store, 1, map[string]float64{
		"2024-01-14": 1500,
		"2024-01-15": 1800,
		"2024-01-16": 2200,
		"2024-02-01": 2100,
	})

	weeks, err := svc.Rollups(context.Background(), 1, "week")
	assert.NoError(t, err)
	assert.Len(t, weeks, 3)
	assert.Equal(t, "2024-W05", weeks[0].Period) // most recent first
	byPeriod := map[string]PeriodRollup{}
	for _, w := range weeks {
		byPeriod[w.Period] = w
	}
	assert.Equal(t, 2, byPeriod["2024-W03"].Days)
	assert.Equal(t, 4000.0, byPeriod["2024-W03"].Totals.Calories)
	assert.Equal(t, 2000.0, byPeriod["2024-W03"].Avg.Calories)

	months, err := svc.Rollups(context.Background(), 1, "month")
	assert.NoError(t, err)
	assert.Len(t, months, 2)
	assert.Equal(t, "2024-02", months[0].Period)
	assert.Equal(t, 3, months[1].Days)

	_, err = svc.Rollups(context.Background(), 1, "year")
	assert.ErrorIs(t, err, ErrValidation)
}
