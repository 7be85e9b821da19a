package main

import (
	"log"
	"os"

	"github.com/manmeddynamics7-hub/healtify/config"
	"github.com/manmeddynamics7-hub/healtify/routes"
	"github.com/manmeddynamics7-hub/healtify/services"
	"github.com/manmeddynamics7-hub/healtify/utils"
)

func main() {
	config.InitDB()
	utils.InitS3()

	loc := config.BoundaryLocation()
	hub := services.NewRealtimeHub()
	services.InitAlertDeps(config.DB, hub)

	store := services.NewIntakeStore(config.DB)
	intake := services.NewIntakeService(store, hub, loc)

	ops, err := services.NewOpsNotifier()
	if err != nil {
		log.Printf("ops notifier disabled: %v", err)
		ops = nil
	}

	scheduler := services.NewResetScheduler(intake, ops, loc)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("failed to start reset scheduler: %v", err)
	}
	defer scheduler.Stop()

	rek, err := services.NewRekognitionService()
	if err != nil {
		log.Printf("rekognition unavailable, label fallback disabled: %v", err)
		rek = nil
	}
	analysis := services.NewFoodAnalysisService(services.NewGeminiProvider(), rek)

	r := routes.SetupRouter(routes.RouterDeps{
		Intake:    intake,
		Goals:     services.NewDailyGoalService(config.DB, intake),
		Analytics: services.NewIntakeAnalyticsService(config.DB),
		Analysis:  analysis,
		Hub:       hub,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
