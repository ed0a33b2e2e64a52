package main

import (
	"context"
	"time"

	"github.com/habitmaster/habitmaster/ai"
	"github.com/habitmaster/habitmaster/config"
	"github.com/habitmaster/habitmaster/models"
	"github.com/habitmaster/habitmaster/routes"
	"github.com/habitmaster/habitmaster/sheets"
	"github.com/habitmaster/habitmaster/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Habit{},
		&models.HabitCompletion{},
		&models.DailyMetric{},
		&models.UserStats{},
		&models.SheetLink{},
	)

	aiClient := ai.NewClient(cfg)
	sheetsClient := sheets.NewClient(cfg)
	syncer := sheets.NewSyncer(sheetsClient)
	queue := sheets.NewQueue(cfg.SyncMaxRetries)
	syncMgr := sheets.NewManager(queue, time.Duration(cfg.SyncDebounceSec)*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go queue.Start(ctx)

	r := routes.SetupRouter(routes.Deps{
		DB:      db,
		AI:      aiClient,
		Sheets:  sheetsClient,
		Syncer:  syncer,
		SyncMgr: syncMgr,
	})

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
