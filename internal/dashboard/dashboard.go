// Package dashboard serves the article tracker web dashboard.
// It renders an HTML overview of earnings, targets, streak and history,
// exposes the same numbers as JSON, and streams live updates over WebSocket.
// Access is gated by a single query-parameter key.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"article-tracker/internal/cfg"
	"article-tracker/internal/store"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	recentArticleLimit = 20
	chartDays          = 30
	heatmapDays        = 90
	refreshInterval    = 30 * time.Second
)

// Storage is the subset of the store the dashboard reads.
type Storage interface {
	DayStats(day time.Time) (int, float64, error)
	RangeStats(from time.Time) (int, float64, error)
	TotalStats() (int, float64, error)
	Streak() (int, *time.Time, error)
	RecentArticles(limit int) ([]store.Article, error)
	DailyStatsSince(from time.Time) ([]store.DailyStat, error)
}

// Dashboard is the HTTP server plus its WebSocket broadcast loop.
type Dashboard struct {
	settings cfg.Settings
	loc      *time.Location
	storage  Storage

	server    *http.Server
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex

	broadcast chan Stats
	stop      chan struct{}
	isRunning bool
	mu        sync.RWMutex

	now func() time.Time
}

// New builds the dashboard server on the configured port.
func New(settings cfg.Settings, storage Storage) *Dashboard {
	d := &Dashboard{
		settings:  settings,
		loc:       settings.Location(),
		storage:   storage,
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Stats, 16),
		stop:      make(chan struct{}),
		now:       time.Now,
	}

	r := mux.NewRouter()
	r.HandleFunc("/", d.requireKey(d.handleIndex, errorPage)).Methods("GET")
	r.HandleFunc("/api/stats", d.requireKey(d.handleStatsAPI, errorJSON)).Methods("GET")
	r.HandleFunc("/ws", d.requireKey(d.handleWebSocket, errorJSON)).Methods("GET")
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	d.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", settings.DashboardPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	return d
}

// Start starts the server and the live update loop.
func (d *Dashboard) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isRunning {
		return fmt.Errorf("dashboard is already running")
	}

	go d.statsCollector()
	go d.clientBroadcaster()

	go func() {
		log.Info().Str("address", d.server.Addr).Msg("starting dashboard server")
		if err := d.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("dashboard server failed")
		}
	}()

	d.isRunning = true
	return nil
}

// Stop shuts the server down and closes all WebSocket clients.
func (d *Dashboard) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.isRunning {
		return nil
	}

	close(d.stop)

	d.clientsMu.Lock()
	for client := range d.clients {
		client.Close()
	}
	d.clients = make(map[*websocket.Conn]bool)
	d.clientsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("dashboard shutdown failed")
		return err
	}

	d.isRunning = false
	log.Info().Msg("dashboard stopped")
	return nil
}

// checkKey implements the query-parameter gate. An empty configured password
// disables the check.
func (d *Dashboard) checkKey(r *http.Request) bool {
	if d.settings.DashboardPassword == "" {
		return true
	}
	return r.URL.Query().Get("key") == d.settings.DashboardPassword
}

type denyFunc func(w http.ResponseWriter)

func (d *Dashboard) requireKey(next http.HandlerFunc, deny denyFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.checkKey(r) {
			deny(w)
			return
		}
		next(w, r)
	}
}

func errorPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte("<h1>🔒 Access Denied</h1><p>Add <code>?key=YOUR_PASSWORD</code> to the URL.</p>"))
}

func errorJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}

// handleStatsAPI serves the headline numbers as JSON.
func (d *Dashboard) handleStatsAPI(w http.ResponseWriter, r *http.Request) {
	stats, err := d.collectStats()
	if err != nil {
		log.Error().Err(err).Msg("stats query failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// handleWebSocket registers a client for live stats updates.
func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	d.clientsMu.Lock()
	d.clients[conn] = true
	d.clientsMu.Unlock()

	// Send initial stats
	if stats, err := d.collectStats(); err == nil {
		if data, err := json.Marshal(stats); err == nil {
			conn.WriteMessage(websocket.TextMessage, data)
		}
	}

	// Keep connection alive
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	d.clientsMu.Lock()
	delete(d.clients, conn)
	d.clientsMu.Unlock()
}

// statsCollector refreshes stats on a ticker and queues them for broadcast.
func (d *Dashboard) statsCollector() {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.clientsMu.RLock()
			hasClients := len(d.clients) > 0
			d.clientsMu.RUnlock()
			if !hasClients {
				continue
			}
			stats, err := d.collectStats()
			if err != nil {
				log.Error().Err(err).Msg("stats refresh failed")
				continue
			}
			select {
			case d.broadcast <- stats:
			default:
				// Channel full, skip this update
			}
		case <-d.stop:
			return
		}
	}
}

// clientBroadcaster pushes queued stats to all connected clients.
func (d *Dashboard) clientBroadcaster() {
	for {
		select {
		case stats := <-d.broadcast:
			d.broadcastToClients(stats)
		case <-d.stop:
			return
		}
	}
}

func (d *Dashboard) broadcastToClients(stats Stats) {
	d.clientsMu.Lock()
	defer d.clientsMu.Unlock()

	data, err := json.Marshal(stats)
	if err != nil {
		log.Error().Err(err).Msg("stats marshal failed")
		return
	}

	for client := range d.clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			client.Close()
			delete(d.clients, client)
		}
	}
}
