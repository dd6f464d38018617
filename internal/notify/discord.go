// Package notify sends Discord webhook notifications for the article
// tracker. Messages are plain text (not embeds) so mobile push previews show
// the content, with an optional link button to the dashboard.
package notify

import (
	"context"
	"fmt"
	"math"
	"time"

	"article-tracker/internal/progress"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	maxRetries = 3
	baseDelay  = 2 * time.Second
)

// Notifier delivers webhook messages to a single Discord channel.
type Notifier struct {
	rest         *resty.Client
	webhookURL   string
	userID       string
	dashboardURL string
	retryDelay   time.Duration
}

func New(webhookURL, userID, dashboardURL string, timeout time.Duration) *Notifier {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(15 * time.Second) // default fallback
	}
	return &Notifier{
		rest:         r,
		webhookURL:   webhookURL,
		userID:       userID,
		dashboardURL: dashboardURL,
		retryDelay:   baseDelay,
	}
}

// ArticleEvent carries everything the article notification renders.
type ArticleEvent struct {
	Title         string
	URL           string
	Value         float64
	TodayCount    int
	DailyTarget   int
	MonthlyCount  int
	MonthlyTarget int
	MonthlyEarned float64
	Streak        int
}

type buttonComponent struct {
	Type  int    `json:"type"`
	Style int    `json:"style"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

type actionRow struct {
	Type       int               `json:"type"`
	Components []buttonComponent `json:"components"`
}

type webhookPayload struct {
	Content    string      `json:"content"`
	Components []actionRow `json:"components,omitempty"`
}

type rateLimitResp struct {
	RetryAfter float64 `json:"retry_after"`
}

// SendArticle posts the notification for a newly detected article.
func (n *Notifier) SendArticle(ctx context.Context, e ArticleEvent) error {
	goalLine := "🎯  ✅ Daily Goal Reached!"
	if remaining := progress.Remaining(e.TodayCount, e.DailyTarget); remaining > 0 {
		goalLine = fmt.Sprintf("🎯  %d More To Daily Goal", remaining)
	}

	dayWord := "Days"
	if e.Streak == 1 {
		dayWord = "Day"
	}

	message := fmt.Sprintf(
		"💸  **%s**\n"+
			"💰  Total This Month: **%s**\n"+
			"\n"+
			"━━━━━━━━━━━━━━━━━━━━\n"+
			"\n"+
			"🚀  **ARTICLE PUBLISHED**\n"+
			"📰  %s\n"+
			"🔗  %s\n"+
			"\n"+
			"━━━━━━━━━━━━━━━━━━━━\n"+
			"\n"+
			"📊  **Today**\n"+
			"`%s`\n"+
			"**%d / %d** Articles\n"+
			"\n"+
			"🔥  **Streak: %d %s**\n"+
			"\n"+
			"%s\n"+
			"\n"+
			"📈  **Monthly Progress**\n"+
			"`%s`\n"+
			"**%d / %d** Articles\n"+
			"\n%s",
		progress.FormatIncrement(e.Value),
		progress.FormatTotal(e.MonthlyEarned),
		e.Title,
		e.URL,
		progress.Bar(e.TodayCount, e.DailyTarget),
		e.TodayCount, e.DailyTarget,
		e.Streak, dayWord,
		goalLine,
		progress.Bar(e.MonthlyCount, e.MonthlyTarget),
		e.MonthlyCount, e.MonthlyTarget,
		n.mention(),
	)

	return n.send(ctx, webhookPayload{
		Content:    trimmed(message),
		Components: n.dashboardButton(),
	})
}

// SendErrorAlert posts an alert after repeated poll failures.
func (n *Notifier) SendErrorAlert(ctx context.Context, errMsg string, consecutiveFailures int) error {
	if len(errMsg) > 500 {
		errMsg = errMsg[:500]
	}
	message := fmt.Sprintf(
		"⚠️  **ARTICLE TRACKER — ERROR**\n\n"+
			"Sitemap polling has failed **%d** consecutive times.\n"+
			"```\n%s\n```\n"+
			"Bot will keep retrying.\n"+
			"\n%s",
		consecutiveFailures, errMsg, n.mention(),
	)
	return n.send(ctx, webhookPayload{Content: trimmed(message)})
}

// SendStartup posts the online message with a config summary.
func (n *Notifier) SendStartup(ctx context.Context, configSummary string) error {
	message := fmt.Sprintf(
		"✅  **ARTICLE TRACKER — ONLINE**\n\n"+
			"Bot is now running and monitoring articles.\n"+
			"```\n%s\n```\n"+
			"\n%s",
		configSummary, n.mention(),
	)
	return n.send(ctx, webhookPayload{
		Content:    trimmed(message),
		Components: n.dashboardButton(),
	})
}

func (n *Notifier) mention() string {
	if n.userID == "" {
		return ""
	}
	return fmt.Sprintf("<@%s>", n.userID)
}

// dashboardButton builds the Discord link button component row.
func (n *Notifier) dashboardButton() []actionRow {
	if n.dashboardURL == "" {
		return nil
	}
	return []actionRow{{
		Type: 1, // action row
		Components: []buttonComponent{{
			Type:  2, // button
			Style: 5, // link
			Label: "📊 View Dashboard",
			URL:   n.dashboardURL,
		}},
	}}
}

// send delivers the payload with retries. Rate limits are honoured via the
// retry_after Discord returns; other failures back off exponentially.
func (n *Notifier) send(ctx context.Context, payload webhookPayload) error {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		var rl rateLimitResp
		resp, err := n.rest.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(payload).
			SetError(&rl).
			Post(n.webhookURL)

		if err == nil && resp.StatusCode() == 429 {
			wait := time.Duration(rl.RetryAfter * float64(time.Second))
			if wait <= 0 {
				wait = 5 * time.Second
			}
			log.Warn().Dur("retry_after", wait).Msg("Discord rate limited")
			if err := sleepCtx(ctx, wait); err != nil {
				return err
			}
			continue
		}

		if err == nil && resp.StatusCode() < 300 {
			log.Debug().Msg("Discord webhook sent")
			return nil
		}

		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("webhook status %d: %s", resp.StatusCode(), resp.String())
		}

		log.Warn().Err(lastErr).Int("attempt", attempt).Int("max", maxRetries).Msg("webhook attempt failed")
		if attempt < maxRetries {
			delay := time.Duration(math.Pow(2, float64(attempt))) * n.retryDelay / 2
			if err := sleepCtx(ctx, delay); err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("webhook delivery failed after %d attempts: %w", maxRetries, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func trimmed(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == ' ') {
		s = s[:len(s)-1]
	}
	return s
}
