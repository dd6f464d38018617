package common

// Environment variable keys
const (
	EnvSitemapURL        = "SITEMAP_URL"
	EnvDiscordWebhookURL = "DISCORD_WEBHOOK_URL"
	EnvDiscordUserID     = "DISCORD_USER_ID"
	EnvDashboardURL      = "DASHBOARD_URL"
	EnvDashboardPassword = "DASHBOARD_PASSWORD"
	EnvDashboardPort     = "DASHBOARD_PORT"
	EnvDatabaseURL       = "DATABASE_URL"
	EnvArticleValueUSD   = "ARTICLE_VALUE_USD"
	EnvDailyTarget       = "DAILY_TARGET"
	EnvMonthlyTarget     = "MONTHLY_TARGET"
	EnvPollInterval      = "POLL_INTERVAL"
	EnvTimezone          = "TIMEZONE"
	EnvMetricsPort       = "METRICS_PORT"
	EnvCachePath         = "CACHE_PATH"
	EnvHTTPTimeout       = "HTTP_TIMEOUT"
	EnvConfigFile        = "CONFIG_FILE"
)

// Configuration defaults
const (
	DefaultArticleValueUSD = 4.15
	DefaultDailyTarget     = 8
	DefaultMonthlyTarget   = 240
	DefaultTimezone        = "Asia/Jakarta"
	DefaultDashboardPort   = 8080
	DefaultMetricsPort     = 9091
)

// Common error messages
const (
	ErrMsgSitemapURLRequired  = "sitemap URL is required"
	ErrMsgWebhookURLRequired  = "Discord webhook URL is required"
	ErrMsgDatabaseURLRequired = "database URL is required"
)

// Validation constants
const (
	MinPollInterval = 30   // seconds
	MaxPollInterval = 3600 // seconds
	MinPort         = 1024
	MaxPort         = 65535
)
