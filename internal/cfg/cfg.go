package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"article-tracker/internal/common"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	SitemapURL        string
	WebhookURL        string
	DiscordUserID     string
	DashboardURL      string
	DatabaseURL       string
	DashboardPassword string
	ArticleValueUSD   float64
	DailyTarget       int
	MonthlyTarget     int
	PollInterval      time.Duration
	Timezone          string
	DashboardPort     int
	MetricsPort       int
	CachePath         string
	HTTPTimeout       time.Duration
}

type ConfigFile struct {
	Sitemap struct {
		URL string `yaml:"url"`
	} `yaml:"sitemap"`

	Discord struct {
		WebhookURL string `yaml:"webhookURL"`
		UserID     string `yaml:"userID"`
	} `yaml:"discord"`

	Tracking struct {
		ArticleValueUSD float64 `yaml:"articleValueUSD"`
		DailyTarget     int     `yaml:"dailyTarget"`
		MonthlyTarget   int     `yaml:"monthlyTarget"`
		PollInterval    int     `yaml:"pollInterval"` // seconds
		Timezone        string  `yaml:"timezone"`
	} `yaml:"tracking"`

	Dashboard struct {
		URL      string `yaml:"url"`
		Password string `yaml:"password"`
		Port     int    `yaml:"port"`
	} `yaml:"dashboard"`

	System struct {
		DatabaseURL string `yaml:"databaseURL"`
		CachePath   string `yaml:"cachePath"`
		MetricsPort int    `yaml:"metricsPort"`
		HTTPTimeout string `yaml:"httpTimeout"`
	} `yaml:"system"`
}

func Load() (Settings, error) {
	// Try to load from YAML file first
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	httpTimeout, err := time.ParseDuration(config.System.HTTPTimeout)
	if err != nil {
		httpTimeout = 30 * time.Second
	}

	pollSeconds := getIntFromEnvOrConfig(common.EnvPollInterval, config.Tracking.PollInterval)
	if pollSeconds == 0 {
		pollSeconds = 180
	}

	settings := Settings{
		SitemapURL:        getEnvOrDefault(common.EnvSitemapURL, config.Sitemap.URL),
		WebhookURL:        getEnvOrDefault(common.EnvDiscordWebhookURL, config.Discord.WebhookURL),
		DiscordUserID:     getEnvOrDefault(common.EnvDiscordUserID, config.Discord.UserID),
		DashboardURL:      getEnvOrDefault(common.EnvDashboardURL, config.Dashboard.URL),
		DatabaseURL:       getEnvOrDefault(common.EnvDatabaseURL, config.System.DatabaseURL),
		DashboardPassword: getEnvOrDefault(common.EnvDashboardPassword, config.Dashboard.Password),
		ArticleValueUSD:   getFloatFromEnvOrConfig(common.EnvArticleValueUSD, config.Tracking.ArticleValueUSD),
		DailyTarget:       getIntFromEnvOrConfig(common.EnvDailyTarget, config.Tracking.DailyTarget),
		MonthlyTarget:     getIntFromEnvOrConfig(common.EnvMonthlyTarget, config.Tracking.MonthlyTarget),
		PollInterval:      time.Duration(pollSeconds) * time.Second,
		Timezone:          getEnvOrDefault(common.EnvTimezone, config.Tracking.Timezone),
		DashboardPort:     getIntFromEnvOrConfig(common.EnvDashboardPort, config.Dashboard.Port),
		MetricsPort:       getIntFromEnvOrConfig(common.EnvMetricsPort, config.System.MetricsPort),
		CachePath:         getEnvOrDefault(common.EnvCachePath, config.System.CachePath),
		HTTPTimeout:       httpTimeout,
	}

	applyDefaults(&settings)
	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		SitemapURL:        os.Getenv(common.EnvSitemapURL),
		WebhookURL:        os.Getenv(common.EnvDiscordWebhookURL),
		DiscordUserID:     os.Getenv(common.EnvDiscordUserID),
		DashboardURL:      os.Getenv(common.EnvDashboardURL),
		DatabaseURL:       os.Getenv(common.EnvDatabaseURL),
		DashboardPassword: os.Getenv(common.EnvDashboardPassword),
		ArticleValueUSD:   getFloatOrDefault(common.EnvArticleValueUSD, common.DefaultArticleValueUSD),
		DailyTarget:       getIntOrDefault(common.EnvDailyTarget, common.DefaultDailyTarget),
		MonthlyTarget:     getIntOrDefault(common.EnvMonthlyTarget, common.DefaultMonthlyTarget),
		PollInterval:      time.Duration(getIntOrDefault(common.EnvPollInterval, 180)) * time.Second,
		Timezone:          getEnvOrDefault(common.EnvTimezone, common.DefaultTimezone),
		DashboardPort:     getIntOrDefault(common.EnvDashboardPort, common.DefaultDashboardPort),
		MetricsPort:       getIntOrDefault(common.EnvMetricsPort, common.DefaultMetricsPort),
		CachePath:         os.Getenv(common.EnvCachePath), // optional
		HTTPTimeout:       getDurationOrDefault(common.EnvHTTPTimeout, 30*time.Second),
	}

	applyDefaults(&settings)
	return settings, nil
}

func applyDefaults(s *Settings) {
	if s.ArticleValueUSD == 0 {
		s.ArticleValueUSD = common.DefaultArticleValueUSD
	}
	if s.DailyTarget == 0 {
		s.DailyTarget = common.DefaultDailyTarget
	}
	if s.MonthlyTarget == 0 {
		s.MonthlyTarget = common.DefaultMonthlyTarget
	}
	if s.Timezone == "" {
		s.Timezone = common.DefaultTimezone
	}
	if s.DashboardPort == 0 {
		s.DashboardPort = common.DefaultDashboardPort
	}
	if s.MetricsPort == 0 {
		s.MetricsPort = common.DefaultMetricsPort
	}
}

// ValidateTracker checks the settings the polling bot cannot run without.
func (s *Settings) ValidateTracker() error {
	if s.SitemapURL == "" {
		return fmt.Errorf("%s", common.ErrMsgSitemapURLRequired)
	}
	if s.WebhookURL == "" {
		return fmt.Errorf("%s", common.ErrMsgWebhookURLRequired)
	}
	if s.DatabaseURL == "" {
		return fmt.Errorf("%s", common.ErrMsgDatabaseURLRequired)
	}
	if err := s.validateShared(); err != nil {
		return err
	}
	secs := int(s.PollInterval / time.Second)
	if secs < common.MinPollInterval || secs > common.MaxPollInterval {
		return fmt.Errorf("poll interval must be between %ds and %ds, got %v",
			common.MinPollInterval, common.MaxPollInterval, s.PollInterval)
	}
	if s.MetricsPort < common.MinPort || s.MetricsPort > common.MaxPort {
		return fmt.Errorf("metrics port must be between %d and %d, got %d",
			common.MinPort, common.MaxPort, s.MetricsPort)
	}
	return nil
}

// ValidateDashboard checks the settings the dashboard cannot run without.
func (s *Settings) ValidateDashboard() error {
	if s.DatabaseURL == "" {
		return fmt.Errorf("%s", common.ErrMsgDatabaseURLRequired)
	}
	if err := s.validateShared(); err != nil {
		return err
	}
	if s.DashboardPort < common.MinPort || s.DashboardPort > common.MaxPort {
		return fmt.Errorf("dashboard port must be between %d and %d, got %d",
			common.MinPort, common.MaxPort, s.DashboardPort)
	}
	return nil
}

func (s *Settings) validateShared() error {
	if s.ArticleValueUSD <= 0 {
		return fmt.Errorf("article value must be positive, got %f", s.ArticleValueUSD)
	}
	if s.DailyTarget <= 0 {
		return fmt.Errorf("daily target must be positive, got %d", s.DailyTarget)
	}
	if s.MonthlyTarget <= 0 {
		return fmt.Errorf("monthly target must be positive, got %d", s.MonthlyTarget)
	}
	if s.HTTPTimeout < time.Second || s.HTTPTimeout > time.Minute {
		return fmt.Errorf("HTTP timeout must be between 1s and 1m, got %v", s.HTTPTimeout)
	}
	return nil
}

// Location resolves the configured timezone, falling back to UTC on an
// unknown name.
func (s *Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	return configValue
}

func getFloatFromEnvOrConfig(key string, configValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	return configValue
}
