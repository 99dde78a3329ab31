package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/silicontrail/marketplace-golang/internal/database"
	"github.com/silicontrail/marketplace-golang/internal/handlers"
	"github.com/silicontrail/marketplace-golang/internal/routes"
)

// janitorInterval is how often pending orders are swept for expiry.
const janitorInterval = 15 * time.Minute

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file found, using environment variables")
	}

	db, err := database.OpenDB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("database connection established")

	if err := database.EnsureSchema(db); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure schema")
	}

	h := &handlers.Handlers{DB: db, Log: log}

	// Background sweep: pending orders past the payment window are
	// cancelled and their reservations released.
	go func() {
		ticker := time.NewTicker(janitorInterval)
		defer ticker.Stop()
		for range ticker.C {
			h.CancelOverduePendingOrders()
		}
	}()

	router := routes.SetupRouter(h)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Info().Str("port", port).Msg("starting server")
	if err := router.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
