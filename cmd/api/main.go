package main

import (
	"fmt"
	"log"
	"net/http"

	"vault-backend/internal/config"
	"vault-backend/internal/handlers"
	"vault-backend/internal/middleware"
	"vault-backend/internal/services"
	"vault-backend/internal/session"
	"vault-backend/internal/storage"
	"vault-backend/internal/storage/badgerstore"
	"vault-backend/internal/storage/memory"
	"vault-backend/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage backend: %v", err)
	}
	defer store.Close()

	sessions := newSessionManager(cfg, store)

	authService := services.NewAuthService(store, sessions)
	fileService := services.NewFileService(store, sessions, cfg.StorageTimeout)

	authMiddleware := middleware.NewAuthMiddleware(sessions)
	authHandler := handlers.NewAuthHandler(authService)
	fileHandler := handlers.NewFileHandler(fileService, cfg.MaxUploadBytes)
	pageHandler := handlers.NewPageHandler(authMiddleware, cfg.PublicDir)

	router := http.NewServeMux()

	router.HandleFunc("GET /{$}", pageHandler.Index)
	router.HandleFunc("GET /login", pageHandler.Login)
	router.HandleFunc("GET /ns", pageHandler.Register)
	router.Handle("GET /dashboard", authMiddleware.RequirePage(http.HandlerFunc(pageHandler.Dashboard)))

	router.HandleFunc("POST /register", authHandler.Register)
	router.HandleFunc("POST /login", authHandler.Login)
	router.HandleFunc("GET /logout", authHandler.Logout)

	router.HandleFunc("POST /upload", fileHandler.Upload)
	router.HandleFunc("GET /files", fileHandler.List)
	router.HandleFunc("GET /files/{id}", fileHandler.Download)

	handler := corsMiddleware(cfg.CORSOrigin, router)

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	fmt.Printf("Server starting on http://%s (backend: %s)\n", addr, cfg.StorageBackend)
	log.Fatal(http.ListenAndServe(addr, handler))
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case "postgres":
		return postgres.Open(cfg.DatabaseURL)
	case "badger":
		return badgerstore.New(cfg.BadgerPath)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func newSessionManager(cfg *config.Config, store storage.Store) session.Manager {
	if cfg.SessionBackend == "store" {
		return session.NewStoreManager(store, cfg.SessionTTL)
	}
	return session.NewMemoryManager(cfg.SessionTTL)
}

func corsMiddleware(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Must stay strict because of http-only cookies.
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
