package controllers

import (
	"net/http"

	"github.com/manmeddynamics7-hub/healtify/services"

	"github.com/gin-gonic/gin"
)

type GoalController struct {
	Svc *services.DailyGoalService
}

func NewGoalController(svc *services.DailyGoalService) *GoalController {
	return &GoalController{Svc: svc}
}

func (gc *GoalController) GetGoals(c *gin.Context) {
	goal, progress, err := gc.Svc.GetGoalsAndProgress(c.GetUint("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": goal, "progress": progress})
}

func (gc *GoalController) UpdateGoals(c *gin.Context) {
	var req struct {
		Calories float64  `json:"calories"`
		Protein  float64  `json:"protein"`
		Carbs    float64  `json:"carbs"`
		Fat      *float64 `json:"fat"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fat := 0.0
	if req.Fat != nil {
		fat = *req.Fat
	}

	if err := gc.Svc.UpsertGoals(c.GetUint("userID"), req.Calories, req.Protein, req.Carbs, fat); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
