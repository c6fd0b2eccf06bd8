package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"matchsync-server/internal/config"
	"matchsync-server/internal/handler"
	"matchsync-server/internal/middleware"
	"matchsync-server/internal/repository"
	"matchsync-server/internal/service"
	"matchsync-server/internal/websocket"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	couchURL := fmt.Sprintf("http://%s:%s@%s:%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
	)

	client, err := kivik.New("couch", couchURL)
	if err != nil {
		log.Fatalf("Failed to connect to CouchDB: %v", err)
	}

	exists, err := client.DBExists(context.Background(), cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to check database existence: %v", err)
	}

	if !exists {
		if err := client.CreateDB(context.Background(), cfg.Database.Name); err != nil {
			log.Fatalf("Failed to create database: %v", err)
		}
		log.Printf("Created database: %s", cfg.Database.Name)
	}

	userRepo := repository.NewUserRepository(client, cfg.Database.Name)
	documentRepo := repository.NewDocumentRepository(client, cfg.Database.Name)
	groupRepo := repository.NewGroupRepository(client, cfg.Database.Name)
	linkRepo := repository.NewLinkRepository(client, cfg.Database.Name)
	sessionRepo := repository.NewSessionRepository(client, cfg.Database.Name)

	wsManager := websocket.NewManager(
		cfg.WebSocket.MaxConnPerSession,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
	)
	go wsManager.Run()

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.RefreshTokenExpiration)
	documentService := service.NewDocumentService(documentRepo)
	groupService := service.NewGroupService(groupRepo, documentRepo, sessionRepo, linkRepo, wsManager)
	sessionService := service.NewSessionService(sessionRepo, documentRepo, groupRepo)
	linkService := service.NewLinkService(linkRepo, sessionRepo, groupRepo, wsManager)
	syncService := service.NewSyncService(sessionRepo, groupRepo, linkRepo, wsManager)

	wsManager.SetMessageHandler(handler.NewWebSocketMessageHandler())

	authHandler := handler.NewAuthHandler(authService)
	documentHandler := handler.NewDocumentHandler(documentService)
	groupHandler := handler.NewGroupHandler(groupService)
	sessionHandler := handler.NewSessionHandler(sessionService, syncService, linkService, groupService)
	wsHandler := handler.NewWebSocketHandler(wsManager, sessionService, cfg.JWT.Secret)

	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))

	protected.HandleFunc("/documents", documentHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/documents", documentHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/documents/{id}", documentHandler.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/documents/{id}", documentHandler.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/documents/{id}", documentHandler.Delete).Methods("DELETE", "OPTIONS")

	protected.HandleFunc("/documents/{id}/groups", groupHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/documents/{id}/groups", groupHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/groups/{id}", groupHandler.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/groups/{id}", groupHandler.Delete).Methods("DELETE", "OPTIONS")

	protected.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/sessions", sessionHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/sessions/{id}/status", sessionHandler.SyncStatus).Methods("GET", "OPTIONS")
	protected.HandleFunc("/sessions/{id}/sync", sessionHandler.FullSync).Methods("POST", "OPTIONS")
	protected.HandleFunc("/sessions/{id}/parent-flags", sessionHandler.SyncParentFlags).Methods("POST", "OPTIONS")
	protected.HandleFunc("/sessions/{id}/complete", sessionHandler.Complete).Methods("POST", "OPTIONS")
	protected.HandleFunc("/sessions/{id}/links", sessionHandler.CreateLink).Methods("POST", "OPTIONS")
	protected.HandleFunc("/sessions/{id}/links", sessionHandler.ListLinks).Methods("GET", "OPTIONS")
	protected.HandleFunc("/sessions/{id}/links/{problemGroupId}", sessionHandler.RemoveLink).Methods("DELETE", "OPTIONS")

	r.HandleFunc("/ws", wsHandler.HandleConnection)

	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/", rootHandler).Methods("GET")

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting MatchSync Server on %s (env: %s)", addr, cfg.Server.Env)
		log.Printf("Connected to CouchDB at %s:%s", cfg.Database.Host, cfg.Database.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"matchsync-server"}`))
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"MatchSync Server API","version":"1.0.0","endpoints":{"/api/v1/auth/login":"POST","/api/v1/documents":"GET (protected)","/api/v1/sessions":"POST (protected)","/ws":"WebSocket"}}`))
}
