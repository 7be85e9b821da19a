package controllers

import (
	"errors"
	"net/http"

	"github.com/manmeddynamics7-hub/healtify/services"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	Svc *services.IntakeAnalyticsService
}

func NewAnalyticsController(svc *services.IntakeAnalyticsService) *AnalyticsController {
	return &AnalyticsController{Svc: svc}
}

// GET /analytics/summary?from=YYYY-MM-DD&to=YYYY-MM-DD&include_missing=true
func (ac *AnalyticsController) Summary(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	includeMissing := c.Query("include_missing") == "true"

	out, err := ac.Svc.Summary(c.Request.Context(), c.GetUint("userID"), from, to, includeMissing)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /analytics/rollups?period=week|month
func (ac *AnalyticsController) Rollups(c *gin.Context) {
	period := c.DefaultQuery("period", "week")

	out, err := ac.Svc.Rollups(c.Request.Context(), c.GetUint("userID"), period)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rollups": out})
}
