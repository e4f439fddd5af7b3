package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/cors"

	"github.com/jobdeck/jobdeck/database"
	"github.com/jobdeck/jobdeck/handlers"
	"github.com/jobdeck/jobdeck/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	cfg := LoadConfig()

	// Storage and auth backends are chosen once here.
	var (
		store       database.Store
		authService services.AuthService
	)
	if cfg.DemoMode {
		memStore := database.NewMemStore()
		store = memStore
		authService = services.NewDemoAuth()
		log.Println("Running in demo mode: sessions and data are in-memory only")
	} else {
		db, err := database.InitDB(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		store = database.NewSQLStore(db)
		authService = services.NewJWTAuth(db, cfg.JWTSecret)
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	registry := services.NewRegistry(store, hub)
	chatService := services.NewChatService(cfg.ChatWebhookURL, services.NewInterpreter())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	jobsHandler := handlers.NewJobsHandler(registry)
	conversationsHandler := handlers.NewConversationsHandler(registry)
	chatHandler := handlers.NewChatHandler(chatService, registry)
	analyticsHandler := handlers.NewAnalyticsHandler(registry)
	wsHandler := handlers.NewWSHandler(hub)
	authMiddleware := handlers.NewAuthMiddleware(authService)

	// Setup router
	r := mux.NewRouter()

	// Auth routes
	r.HandleFunc("/api/auth/signup", authHandler.SignUp).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/verify", authHandler.VerifyToken).Methods("GET")

	// Protected routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Auth)
	api.HandleFunc("/jobs", jobsHandler.ListJobs).Methods("GET")
	api.HandleFunc("/jobs", jobsHandler.CreateJob).Methods("POST")
	api.HandleFunc("/jobs/{id}", jobsHandler.PatchJob).Methods("PATCH")
	api.HandleFunc("/jobs/{id}", jobsHandler.DeleteJob).Methods("DELETE")
	api.HandleFunc("/conversations", conversationsHandler.ListConversations).Methods("GET")
	api.HandleFunc("/conversations", conversationsHandler.CreateConversation).Methods("POST")
	api.HandleFunc("/conversations/{id}", conversationsHandler.SelectConversation).Methods("GET")
	api.HandleFunc("/conversations/{id}", conversationsHandler.UpdateConversation).Methods("PUT")
	api.HandleFunc("/conversations/{id}", conversationsHandler.DeleteConversation).Methods("DELETE")
	api.HandleFunc("/conversations/{id}/messages", conversationsHandler.SendMessage).Methods("POST")
	api.HandleFunc("/conversations/{id}/link", conversationsHandler.LinkJob).Methods("POST")
	api.HandleFunc("/analytics/summary", analyticsHandler.Summary).Methods("GET")
	api.HandleFunc("/chat", chatHandler.SendMessage).Methods("POST")

	// WebSocket route for real-time updates
	api.HandleFunc("/ws", wsHandler.HandleWebSocket)

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	// Demo mode starts with a seeded board so the UI is not empty.
	if cfg.DemoMode {
		if _, demoToken, err := authService.SignIn("demo@jobdeck.local", "demo-pass"); err == nil {
			if user, err := authService.Verify(demoToken); err == nil {
				if err := database.SeedDemoData(context.Background(), store, user.ID); err != nil {
					log.Printf("Warning: failed to seed demo data: %v", err)
				}
			}
		}
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(server.ListenAndServe())
}
