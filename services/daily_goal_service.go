package services

import (
	"errors"

	"github.com/manmeddynamics7-hub/healtify/models"

	"gorm.io/gorm"
)

// DailyGoalService reports today's consumption against the user's macro
// targets. Consumption comes straight from the live aggregate, so progress
// and /temp-intake/today can never disagree.
type DailyGoalService struct {
	db     *gorm.DB
	intake *IntakeService
}

func NewDailyGoalService(db *gorm.DB, intake *IntakeService) *DailyGoalService {
	return &DailyGoalService{db: db, intake: intake}
}

func (s *DailyGoalService) GetGoalsAndProgress(userID uint) (*models.DailyGoal, map[string]any, error) {
	var goal models.DailyGoal
	err := s.db.Where("user_id = ?", userID).First(&goal).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
		goal = models.DailyGoal{UserID: userID}
	}

	today := s.intake.GetToday(userID)
	t := today.Totals

	pct := func(consumed, target float64) float64 {
		if target <= 0 {
			return 0
		}
		p := consumed / target
		if p > 1 {
			return 1
		}
		return p
	}

	progress := map[string]any{
		"date":     today.DateKey,
		"calories": map[string]float64{"consumed": t.Calories, "goal": goal.Calories, "percent": pct(t.Calories, goal.Calories)},
		"protein":  map[string]float64{"consumed": t.Protein, "goal": goal.Protein, "percent": pct(t.Protein, goal.Protein)},
		"carbs":    map[string]float64{"consumed": t.Carbs, "goal": goal.Carbs, "percent": pct(t.Carbs, goal.Carbs)},
		"fat":      map[string]float64{"consumed": t.Fat, "goal": goal.Fat, "percent": pct(t.Fat, goal.Fat)},
	}

	return &goal, progress, nil
}

func (s *DailyGoalService) UpsertGoals(userID uint, calories, protein, carbs, fat float64) error {
	var goal models.DailyGoal
	err := s.db.Where("user_id = ?", userID).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		goal = models.DailyGoal{
			UserID:   userID,
			Calories: calories,
			Protein:  protein,
			Carbs:    carbs,
			Fat:      fat,
		}
		return s.db.Create(&goal).Error
	}
	if err != nil {
		return err
	}

	goal.Calories = calories
	goal.Protein = protein
	goal.Carbs = carbs
	goal.Fat = fat
	return s.db.Save(&goal).Error
}
