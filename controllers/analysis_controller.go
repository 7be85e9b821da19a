package controllers

import (
	"net/http"

	"github.com/manmeddynamics7-hub/healtify/services"

	"github.com/gin-gonic/gin"
)

type AnalysisController struct {
	Svc *services.FoodAnalysisService
}

func NewAnalysisController(svc *services.FoodAnalysisService) *AnalysisController {
	return &AnalysisController{Svc: svc}
}

type analyzeFoodRequest struct {
	ImageBase64 string `json:"image_base64"`
	Name        string `json:"name"`
}

// POST /analysis/food — analysis degrades gracefully: a provider failure
// or unparsable answer is a tagged 200 payload, not an HTTP error, so the
// client can always show something.
func (ac *AnalysisController) AnalyzeFood(c *gin.Context) {
	var req analyzeFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if req.ImageBase64 == "" && req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "image_base64 or name is required"})
		return
	}

	var result *services.FoodAnalysis
	if req.ImageBase64 != "" {
		result = ac.Svc.AnalyzeImage(c.Request.Context(), req.ImageBase64)
	} else {
		result = ac.Svc.AnalyzeName(c.Request.Context(), req.Name)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}
