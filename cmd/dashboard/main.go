package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"article-tracker/internal/cfg"
	"article-tracker/internal/dashboard"
	"article-tracker/internal/store"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	// Load .env (non-fatal if missing in production)
	_ = godotenv.Load()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := c.ValidateDashboard(); err != nil {
		log.Fatal().Err(err).Msg("config validation failed")
	}

	st, err := store.Open(c.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database initialization failed")
	}
	defer st.Close()

	if c.DashboardPassword == "" {
		log.Warn().Msg("no dashboard password configured, access gate disabled")
	}

	d := dashboard.New(c, st)
	if err := d.Start(); err != nil {
		log.Fatal().Err(err).Msg("dashboard start failed")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutdown signal received")
	if err := d.Stop(); err != nil {
		os.Exit(1)
	}
}
