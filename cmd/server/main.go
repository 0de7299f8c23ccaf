package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/database"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/handlers"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/middleware"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/notify"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/scheduler"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/store"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/websocket"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 URBAN CLEANSE SCHEDULING SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}
	if err := database.SeedUsers(db); err != nil {
		log.Fatal(err)
	}
	if err := database.SeedBins(db); err != nil {
		log.Fatal(err)
	}

	// Firebase Cloud Messaging: base64 credentials for cloud deployments,
	// file path for local development. The server runs without push when
	// neither is configured.
	var fcm *notify.FCM
	if creds := os.Getenv("FIREBASE_CREDENTIALS_BASE64"); creds != "" {
		fcm, err = notify.NewFCMFromBase64(creds)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from base64: %v (push notifications disabled)", err)
			fcm = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from base64 credentials")
		}
	} else {
		credsFile := os.Getenv("FIREBASE_CREDENTIALS_FILE")
		if credsFile == "" {
			credsFile = "./firebase-service-account.json"
		}
		fcm, err = notify.NewFCM(credsFile)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from file: %v (push notifications disabled)", err)
			fcm = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from file")
		}
	}

	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("✅ WebSocket hub started")

	st := store.NewPostgres(db)
	notifier := notify.New(st, wsHub, fcm)
	engine := scheduler.New(st, notifier)
	log.Println("✅ Scheduling engine initialized")

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Post("/api/auth/login", handlers.Login(st))

	r.Get("/ws", websocket.HandleWebSocket(wsHub))

	collectorRoles := []string{models.RoleCollector1, models.RoleCollector2, models.RoleCollector3}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth)

		r.Post("/api/auth/fcm-token", handlers.RegisterFCMToken(st))

		r.Get("/api/notifications", handlers.ListNotifications(st))
		r.Post("/api/notifications/{id}/read", handlers.MarkNotificationRead(st))

		r.Get("/api/bins", handlers.ListBins(st))
		r.Post("/api/bins", handlers.CreateBin(st))
		r.Patch("/api/bins/{id}/level", handlers.UpdateBinLevel(st))

		// Customer request lifecycle
		r.Post("/api/requests", handlers.CreateRequest(engine))
		r.Get("/api/requests", handlers.ListMyRequests(st))
		r.Get("/api/requests/{id}", handlers.GetRequest(st))
		r.Post("/api/requests/{id}/cancel", handlers.CancelRequest(engine))
		r.Post("/api/requests/{id}/pay", handlers.PayRequest(engine))

		// Operator surface
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleOperator))

			r.Get("/api/operator/requests", handlers.ListAllRequests(st))
			r.Post("/api/operator/requests/{id}/approve", handlers.ApproveRequest(engine))
			r.Post("/api/operator/requests/{id}/reject", handlers.RejectRequest(engine))
			r.Post("/api/operator/requests/{id}/reset", handlers.ResetRequest(engine))
			r.Get("/api/operator/workers/availability", handlers.WorkerAvailability(engine))
			r.Get("/api/operator/routes", handlers.ListRoutes(st))
			r.Get("/api/operator/routes/{id}", handlers.GetRoute(st))
			r.Post("/api/operator/routes/{id}/cancel", handlers.CancelRoute(engine, st))
			r.Get("/api/operator/summary", handlers.GetSummaryReport(st))
		})

		// Collector surface
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(collectorRoles...))

			r.Get("/api/collector/route/today", handlers.GetTodayRoute(st))
			r.Post("/api/collector/collections", handlers.RecordCollection(engine))
			r.Get("/api/collector/collections", handlers.ListMyCollections(st))
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Printf("✅ SERVER READY on port %s", port)
	log.Println("═══════════════════════════════════════════════════════════════════")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}
