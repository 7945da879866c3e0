package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"trazoo-cod-gateway/internal/application"
	"trazoo-cod-gateway/internal/config"
	apiinfra "trazoo-cod-gateway/internal/infrastructure/api"
	"trazoo-cod-gateway/internal/infrastructure/locationiq"
	gatewaymiddleware "trazoo-cod-gateway/internal/infrastructure/middleware"
	"trazoo-cod-gateway/internal/infrastructure/repository"
	shopifyinfra "trazoo-cod-gateway/internal/infrastructure/shopify"
	"trazoo-cod-gateway/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Connect to MongoDB
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDatabase)

	// Credential store, with an optional Redis read-through cache
	var credentials ports.CredentialStore = repository.NewMongoCredentialStore(db)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		credentials = repository.NewCachedCredentialStore(credentials, rdb, 15*time.Minute, logger)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("Credential cache enabled")
	}

	// Upstream clients
	adminClient := shopifyinfra.NewAdminClient(cfg.ShopifyAPIVersion, logger)
	oauth := shopifyinfra.NewOAuth(cfg.ShopifyAPIKey, cfg.ShopifyAPISecret, logger)
	geocoder := locationiq.NewClient(locationiq.DefaultBaseURL, cfg.LocationIQAPIKey, logger)

	// Application services
	orderService := application.NewOrderService(
		credentials,
		adminClient,
		logger,
		cfg.ShopCountry,
		cfg.FallbackEmailDomain,
		cfg.OrderAPIMode,
	)
	installService := application.NewInstallService(
		oauth,
		credentials,
		cfg.AppURL,
		cfg.ShopifyScopes,
		logger,
	)

	handler := apiinfra.NewHandler(orderService, geocoder, logger)
	metrics := gatewaymiddleware.NewMetrics()

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// OAuth routes
	r.Get("/auth", installHandler(installService, logger))
	r.Get("/auth/callback", callbackHandler(installService, logger))

	// COD order placement
	r.Post("/api/cod/place", handler.PlaceCodOrder)

	// Address autocomplete, guarded by a static access token
	r.Route("/api/address", func(r chi.Router) {
		r.Use(gatewaymiddleware.RequireAccessToken(cfg.AddressAPIAccessToken))
		r.Get("/", handler.AddressSuggestions)
	})

	logger.Info().Str("port", cfg.Port).Msg("Starting COD gateway")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

// installHandler redirects the merchant to the authorization page.
func installHandler(installService *application.InstallService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")
		if shop == "" {
			http.Error(w, "shop query param missing", http.StatusBadRequest)
			return
		}

		installURL, err := installService.InstallURL(shop)
		if err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("Failed to build install URL")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, installURL, http.StatusFound)
	}
}

// callbackHandler completes the install: verify, exchange, store.
func callbackHandler(installService *application.InstallService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")
		code := r.URL.Query().Get("code")
		if shop == "" || code == "" {
			http.Error(w, "Missing required parameters", http.StatusBadRequest)
			return
		}

		if err := installService.CompleteInstall(r.Context(), r.URL, shop, code); err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("OAuth callback failed")
			http.Error(w, "Failed to complete installation", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("App successfully installed!"))
	}
}
