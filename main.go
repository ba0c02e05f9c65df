package main

import (
	"log"

	"github.com/hanyam/TaskManagement-sub002/config"
	"github.com/hanyam/TaskManagement-sub002/queries"
	"github.com/hanyam/TaskManagement-sub002/routes"
	"github.com/hanyam/TaskManagement-sub002/services"
	"github.com/hanyam/TaskManagement-sub002/storage"
	"github.com/hanyam/TaskManagement-sub002/workflows"
)

func main() {
	config.LoadEnv()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	store := storage.NewGormStore(db)
	if err := store.Migrate(); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	// The read side shares the write side's pool but runs raw SQL.
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("raw connection unavailable: %v", err)
	}
	reader := queries.NewSQLReader(sqlDB)

	clock := services.NewClock()
	reminder := services.NewReminderCalculator(config.DefaultReminderOptions(), clock)

	r := routes.SetupRouter(routes.Deps{
		Store:     store,
		Workflows: workflows.NewService(store, clock),
		Queries:   queries.New(reader, reminder, clock),
	})

	addr := ":" + config.Getenv("PORT", "8000")
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
