package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/manmeddynamics7-hub/healtify/models"

	"gorm.io/gorm"
)

type IntakeAnalyticsService struct{ db *gorm.DB }

func NewIntakeAnalyticsService(db *gorm.DB) *IntakeAnalyticsService {
	return &IntakeAnalyticsService{db: db}
}

type MacroAvg struct {
	AvgConsumed float64 `json:"avg_consumed"`
	AvgGoal     float64 `json:"avg_goal,omitempty"`
	AvgPercent  float64 `json:"avg_percent,omitempty"`
}

type IntakeSummary struct {
	Range struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"range"`

	Macros map[string]MacroAvg `json:"macros"` // calories, protein, carbs, fat

	Metadata struct {
		DaysCounted        int  `json:"days_counted"`
		IncludeMissingDays bool `json:"include_missing_days"`
	} `json:"metadata"`
}

// Summary averages archived days in [from, to]. With includeMissing, days
// without an archive count as zero-intake days; otherwise only archived
// days enter the average.
func (s *IntakeAnalyticsService) Summary(
	ctx context.Context, userID uint, from, to string, includeMissing bool,
) (*IntakeSummary, error) {

	fromDay, toDay, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}

	var rows []models.IntakeArchive
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date_key BETWEEN ? AND ?", userID, from, to).
		Order("date_key ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	var goal models.DailyGoal
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&goal).Error; err != nil &&
		!errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	idx := map[string]models.IntakeArchive{}
	for _, r := range rows {
		idx[r.DateKey] = r
	}

	var keys []string
	if includeMissing {
		for d := fromDay; !d.After(toDay); d = d.AddDate(0, 0, 1) {
			keys = append(keys, d.Format("2006-01-02"))
		}
	} else {
		for _, r := range rows {
			keys = append(keys, r.DateKey)
		}
	}
	den := len(keys)
	if den == 0 {
		den = 1 // empty range returns zeros
	}

	type acc struct{ sum, psum float64 }
	m := map[string]*acc{"calories": {}, "protein": {}, "carbs": {}, "fat": {}}
	goalFor := map[string]float64{
		"calories": goal.Calories, "protein": goal.Protein,
		"carbs": goal.Carbs, "fat": goal.Fat,
	}

	for _, key := range keys {
		t := idx[key].Totals // zero totals when the day is missing
		consumed := map[string]float64{
			"calories": t.Calories, "protein": t.Protein,
			"carbs": t.Carbs, "fat": t.Fat,
		}
		for k, a := range m {
			a.sum += consumed[k]
			if g := goalFor[k]; g > 0 {
				p := consumed[k] / g
				if p > 1 {
					p = 1
				}
				a.psum += p
			}
		}
	}

	out := &IntakeSummary{Macros: map[string]MacroAvg{}}
	out.Range.From = from
	out.Range.To = to
	out.Metadata.DaysCounted = len(keys)
	out.Metadata.IncludeMissingDays = includeMissing
	for k, a := range m {
		avg := MacroAvg{AvgConsumed: a.sum / float64(den), AvgGoal: goalFor[k]}
		if goalFor[k] > 0 {
			avg.AvgPercent = a.psum / float64(den)
		}
		out.Macros[k] = avg
	}
	return out, nil
}

type PeriodRollup struct {
	Period string             `json:"period"` // 2024-W03 or 2024-01
	Days   int                `json:"days"`
	Totals models.MacroTotals `json:"totals"`
	Avg    models.MacroTotals `json:"avg_per_day"`
}

// Rollups groups a user's archive into weekly (ISO week) or monthly
// buckets, most recent first.
func (s *IntakeAnalyticsService) Rollups(ctx context.Context, userID uint, period string) ([]PeriodRollup, error) {
	if period != "week" && period != "month" {
		return nil, fmt.Errorf("%w: period must be week or month", ErrValidation)
	}

	var rows []models.IntakeArchive
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date_key DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	byKey := map[string]*PeriodRollup{}
	var order []string
	for _, r := range rows {
		day, err := time.Parse("2006-01-02", r.DateKey)
		if err != nil {
			continue
		}
		var key string
		if period == "week" {
			y, w := day.ISOWeek()
			key = fmt.Sprintf("%04d-W%02d", y, w)
		} else {
			key = day.Format("2006-01")
		}
		ru := byKey[key]
		if ru == nil {
			ru = &PeriodRollup{Period: key}
			byKey[key] = ru
			order = append(order, key)
		}
		ru.Days++
		ru.Totals.Calories += r.Totals.Calories
		ru.Totals.Protein += r.Totals.Protein
		ru.Totals.Carbs += r.Totals.Carbs
		ru.Totals.Fat += r.Totals.Fat
	}

	out := make([]PeriodRollup, 0, len(order))
	for _, key := range order {
		ru := byKey[key]
		n := float64(ru.Days)
		ru.Avg = models.MacroTotals{
			Calories: ru.Totals.Calories / n,
			Protein:  ru.Totals.Protein / n,
			Carbs:    ru.Totals.Carbs / n,
			Fat:      ru.Totals.Fat / n,
		}
		out = append(out, *ru)
	}
	return out, nil
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	fromDay, err := time.Parse("2006-01-02", from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: bad from date", ErrValidation)
	}
	toDay, err := time.Parse("2006-01-02", to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: bad to date", ErrValidation)
	}
	if toDay.Before(fromDay) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: to precedes from", ErrValidation)
	}
	return fromDay, toDay, nil
}
