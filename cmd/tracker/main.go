package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"article-tracker/internal/cache"
	"article-tracker/internal/cfg"
	"article-tracker/internal/metrics"
	"article-tracker/internal/notify"
	"article-tracker/internal/poller"
	"article-tracker/internal/sitemap"
	"article-tracker/internal/store"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	testMode := flag.Bool("test", false, "send a test notification and exit")
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
	if err := c.ValidateTracker(); err != nil {
		log.Fatal().Err(err).Msg("config validation failed")
	}

	log.Info().Msg("article tracker bot starting")

	notifier := notify.New(c.WebhookURL, c.DiscordUserID, c.DashboardURL, c.HTTPTimeout)

	// Test mode: verify webhook + button wiring, then exit.
	if *testMode {
		runTest(c, notifier)
		return
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	startMetricsServer(ctx, c)

	st, err := store.Open(c.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database initialization failed")
	}
	defer st.Close()

	seen := initializeCache(c)
	if seen != nil {
		defer seen.Close()
	}

	fetcher := sitemap.NewClient(c.HTTPTimeout)
	p := poller.New(c, fetcher, st, notifier, seenOrNil(seen), m)

	summary := configSummary(c)
	log.Info().Msg("\n" + summary)
	if err := notifier.SendStartup(ctx, summary); err != nil {
		log.Warn().Err(err).Msg("startup message failed")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Run(ctx)
	}()

	waitForShutdown(ctx, cancel, &wg)
	log.Info().Msg("bot stopped")
}

// initializeCache opens the seen-URL cache if CACHE_PATH is configured.
func initializeCache(c cfg.Settings) *cache.Cache {
	if c.CachePath == "" {
		return nil
	}
	seen, err := cache.New(c.CachePath)
	if err != nil {
		log.Warn().Err(err).Msg("cache initialization failed, continuing without local cache")
		return nil
	}
	return seen
}

// seenOrNil avoids handing the poller a typed nil.
func seenOrNil(c *cache.Cache) poller.SeenCache {
	if c == nil {
		return nil
	}
	return c
}

// startMetricsServer starts the Prometheus metrics HTTP server.
func startMetricsServer(ctx context.Context, c cfg.Settings) {
	go func() {
		mux := http.NewServeMux()

		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		mux.Handle("/metrics", promhttp.Handler())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", c.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		go func() {
			<-ctx.Done()
			if err := server.Shutdown(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to shutdown metrics server")
			}
		}()

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

// runTest sends one synthetic notification to verify webhook delivery.
func runTest(c cfg.Settings, notifier *notify.Notifier) {
	log.Info().Msg("=== TEST MODE ===")

	err := notifier.SendArticle(context.Background(), notify.ArticleEvent{
		Title:         "🧪 Test Article — Bot Works!",
		URL:           "https://example.com/test-article",
		Value:         c.ArticleValueUSD,
		TodayCount:    3,
		DailyTarget:   c.DailyTarget,
		MonthlyCount:  42,
		MonthlyTarget: c.MonthlyTarget,
		MonthlyEarned: 37.50,
		Streak:        5,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("test notification failed")
	}

	log.Info().Msg("test notification sent, check Discord")
}

func configSummary(c cfg.Settings) string {
	return fmt.Sprintf(
		"Sitemap: %s\n"+
			"Rate: $%.2f/article\n"+
			"Daily target: %d\n"+
			"Monthly target: %d\n"+
			"Poll interval: %s\n"+
			"Dashboard: %s",
		c.SitemapURL, c.ArticleValueUSD, c.DailyTarget, c.MonthlyTarget, c.PollInterval, c.DashboardURL,
	)
}

// waitForShutdown waits for shutdown signals and handles graceful shutdown.
func waitForShutdown(ctx context.Context, cancel context.CancelFunc, wg *sync.WaitGroup) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("context canceled")
	}

	log.Info().Msg("shutting down gracefully...")
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("all goroutines stopped")
	case <-time.After(10 * time.Second):
		log.Warn().Msg("shutdown timeout, forcing exit")
	}
}
