package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/torikura/rosterbackend/config"
	"github.com/torikura/rosterbackend/database"
	"github.com/torikura/rosterbackend/handlers"
	"github.com/torikura/rosterbackend/notifications"
	"github.com/torikura/rosterbackend/realtime"
	"github.com/torikura/rosterbackend/replication"
	"github.com/torikura/rosterbackend/repository"
	"github.com/torikura/rosterbackend/services"
	"github.com/torikura/rosterbackend/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database schema: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("FATAL: Failed to get underlying sql.DB: %v", err)
	}

	hub := realtime.NewHub()
	go hub.Run()

	var sink replication.Sink = replication.NoopSink{}
	if cfg.ReplicationURL != "" {
		sink = replication.NewHTTPSink(cfg.ReplicationURL)
		log.Printf("Replicating to %s", cfg.ReplicationURL)
	}
	dispatcher := services.NewEffectDispatcher(sink, notifications.LogDispatcher{}, hub)

	employeeRepo := repository.NewEmployeeRepository(db)
	archiveRepo := repository.NewArchiveRepository(db)
	contractRepo := repository.NewContractRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	clock := services.TriggerClock{Location: cfg.Location, TriggerHour: cfg.TriggerHour}
	migrator := services.NewMigrationService(db, clock)
	lifecycle := services.NewLifecycleService(employeeRepo, archiveRepo, contractRepo, migrator, clock, dispatcher)
	shifts := services.NewShiftService(employeeRepo, scheduleRepo, sqlDB, cfg.Location, cfg.FairnessWindowDays, dispatcher)
	requests := services.NewRequestService(scheduleRepo, sqlDB, cfg.Location, cfg.RetentionDays, dispatcher)

	lifecycleWorker := workers.NewLifecycleWorker(lifecycle, cfg.SweepInterval)
	if err := lifecycleWorker.InitializeLifecycleSchedules(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	lifecycleWorker.Start()

	rosterWorker := workers.NewRosterWorker(shifts, requests, cfg.RosterInterval, cfg.CleanupInterval)
	rosterWorker.Start()

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Business timezone: %s, trigger hour: %02d:00", cfg.BusinessTimezone, cfg.TriggerHour)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	employeeHandler := &handlers.EmployeeHandler{
		Employees: employeeRepo,
		Archive:   archiveRepo,
		Schedule:  scheduleRepo,
		SQLDB:     sqlDB,
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", employeeHandler.ListEmployees)
			r.Route("/{employee_id}", func(r chi.Router) {
				r.Get("/status", employeeHandler.GetMigrationStatus)
				r.Get("/schedule", employeeHandler.ListEmployeeSchedule)
			})
		})
		r.Get("/archive", employeeHandler.ListArchived)
	})

	r.Get("/ws", hub.ServeWS)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
