package routes

import (
	"github.com/manmeddynamics7-hub/healtify/controllers"
	"github.com/manmeddynamics7-hub/healtify/middlewares"
	"github.com/manmeddynamics7-hub/healtify/services"

	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Intake    *services.IntakeService
	Goals     *services.DailyGoalService
	Analytics *services.IntakeAnalyticsService
	Analysis  *services.FoodAnalysisService
	Hub       *services.RealtimeHub
}

func SetupRouter(d RouterDeps) *gin.Engine {
	r := gin.Default()

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	intakeCtl := controllers.NewIntakeController(d.Intake)
	intake := r.Group("/temp-intake")
	intake.Use(middlewares.AuthMiddleware())
	{
		intake.POST("/add", intakeCtl.AddEntry)
		intake.GET("/today", intakeCtl.GetToday)
		intake.DELETE("/:entryId", intakeCtl.RemoveEntry)
		intake.GET("/archive/:date", intakeCtl.GetArchived)
		intake.GET("/archive-dates", intakeCtl.ListArchiveDates)
		intake.POST("/reset", intakeCtl.Reset)
		intake.POST("/upload-photo", intakeCtl.UploadPhoto)
	}

	goalCtl := controllers.NewGoalController(d.Goals)
	goals := r.Group("/goals")
	goals.Use(middlewares.AuthMiddleware())
	{
		goals.GET("", goalCtl.GetGoals)
		goals.PUT("", goalCtl.UpdateGoals)
	}

	analyticsCtl := controllers.NewAnalyticsController(d.Analytics)
	analytics := r.Group("/analytics")
	analytics.Use(middlewares.AuthMiddleware())
	{
		analytics.GET("/summary", analyticsCtl.Summary)
		analytics.GET("/rollups", analyticsCtl.Rollups)
	}

	if d.Analysis != nil {
		analysisCtl := controllers.NewAnalysisController(d.Analysis)
		analysis := r.Group("/analysis")
		analysis.Use(middlewares.AuthMiddleware())
		{
			analysis.POST("/food", analysisCtl.AnalyzeFood)
		}
	}

	if d.Hub != nil {
		rtCtl := controllers.NewRealtimeController(d.Hub)
		ws := r.Group("/ws")
		ws.Use(middlewares.AuthMiddleware())
		{
			ws.GET("/events", rtCtl.EventsWS)
		}
	}

	return r
}
