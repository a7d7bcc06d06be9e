package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saffron-pos/api/internal/billing"
	"github.com/saffron-pos/api/internal/config"
	"github.com/saffron-pos/api/internal/database"
	"github.com/saffron-pos/api/internal/handler"
	mw "github.com/saffron-pos/api/internal/middleware"
	"github.com/saffron-pos/api/internal/policy"
	"github.com/saffron-pos/api/internal/service"
	"github.com/saffron-pos/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, mailer billing.Mailer) chi.Router {
	// Every status literal must have a role mapping before serving traffic.
	if err := policy.Validate(); err != nil {
		log.Fatalf("role policy: %v", err)
	}

	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "https://pos.saffron.example.com"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Guest-facing menu browsing (public)
	menuHandler := handler.NewMenuHandler(queries)
	menuHandler.RegisterRoutes(r)

	// Reception floor display (public, read-only aggregates)
	statsHandler := handler.NewTableStatsHandler(queries)
	statsHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		authHandler.RegisterProtectedRoutes(r)
		menuHandler.RegisterProtectedRoutes(r)

		newOrderStore := func(db database.DBTX) service.OrderStore {
			return database.New(db)
		}
		orderService := service.NewOrderService(pool, newOrderStore)
		lifecycleService := service.NewLifecycleService(queries)
		orderHandler := handler.NewOrderHandler(queries, orderService, lifecycleService, hub)
		orderHandler.RegisterRoutes(r)

		billHandler := handler.NewBillHandler(queries, mailer)
		billHandler.RegisterRoutes(r)
	})

	log.Println("Router initialized with all handlers")
	return r
}
