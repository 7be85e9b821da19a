package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/manmeddynamics7-hub/healtify/services"
	"github.com/manmeddynamics7-hub/healtify/utils"

	"github.com/gin-gonic/gin"
)

// IntakeController exposes the daily intake engine. Responses use the
// {success, data, message} envelope the web client consumes.
type IntakeController struct {
	Svc *services.IntakeService
}

func NewIntakeController(svc *services.IntakeService) *IntakeController {
	return &IntakeController{Svc: svc}
}

// POST /temp-intake/add
func (ic *IntakeController) AddEntry(c *gin.Context) {
	var req services.FoodEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	entry, err := ic.Svc.AddEntry(c.GetUint("userID"), req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to add food entry"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": entry})
}

// GET /temp-intake/today — never 404s: no entries yet is a normal, empty day.
func (ic *IntakeController) GetToday(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ic.Svc.GetToday(c.GetUint("userID"))})
}

// DELETE /temp-intake/:entryId — idempotent, always 200 on a healthy store.
func (ic *IntakeController) RemoveEntry(c *gin.Context) {
	if err := ic.Svc.RemoveEntry(c.GetUint("userID"), c.Param("entryId")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to remove food entry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /temp-intake/archive/:date
func (ic *IntakeController) GetArchived(c *gin.Context) {
	date := c.Param("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "date must be YYYY-MM-DD"})
		return
	}

	rec, err := ic.Svc.GetArchived(c.GetUint("userID"), date)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "no archived intake for this date"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load archive"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": rec})
}

// GET /temp-intake/archive-dates
func (ic *IntakeController) ListArchiveDates(c *gin.Context) {
	dates, err := ic.Svc.ListArchiveDates(c.GetUint("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to list archive dates"})
		return
	}
	if dates == nil {
		dates = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": dates})
}

// POST /temp-intake/reset — manual cutover, same path the scheduler takes.
func (ic *IntakeController) Reset(c *gin.Context) {
	if err := ic.Svc.ManualReset(c.GetUint("userID")); err != nil {
		if errors.Is(err, services.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "archival store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "daily intake reset"})
}

type uploadPhotoRequest struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

// POST /temp-intake/upload-photo
func (ic *IntakeController) UploadPhoto(c *gin.Context) {
	var req uploadPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "image_base64 is required"})
		return
	}

	url, err := utils.UploadFoodImage(req.ImageBase64, "entry")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"url": url}})
}
