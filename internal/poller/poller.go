// Package poller runs the sitemap polling loop: detect new articles, record
// them, and push Discord notifications.
package poller

import (
	"context"
	"time"

	"article-tracker/internal/cfg"
	"article-tracker/internal/metrics"
	"article-tracker/internal/notify"
	"article-tracker/internal/sitemap"
	"article-tracker/internal/store"
	"article-tracker/internal/streak"

	"github.com/rs/zerolog/log"
)

// maxFailures is how many consecutive failed cycles trigger an error alert.
const maxFailures = 3

// Fetcher downloads and parses the sitemap.
type Fetcher interface {
	FetchAndParse(ctx context.Context, url string) ([]sitemap.Article, error)
}

// Storage is the subset of the store the poller needs.
type Storage interface {
	IsKnownURL(url string) (bool, error)
	RecordArticle(a store.Article, streak int, day time.Time) error
	DayStats(day time.Time) (int, float64, error)
	RangeStats(from time.Time) (int, float64, error)
	Streak() (int, *time.Time, error)
}

// Sender delivers Discord notifications.
type Sender interface {
	SendArticle(ctx context.Context, e notify.ArticleEvent) error
	SendErrorAlert(ctx context.Context, errMsg string, consecutiveFailures int) error
}

// SeenCache is an optional local cache of processed URLs.
type SeenCache interface {
	Seen(url string) (bool, error)
	MarkSeen(url string, detectedAt time.Time) error
}

// Poller drives the polling loop.
type Poller struct {
	settings cfg.Settings
	loc      *time.Location
	fetcher  Fetcher
	storage  Storage
	sender   Sender
	cache    SeenCache // nil disables the cache
	metrics  *metrics.Metrics

	now func() time.Time
}

func New(settings cfg.Settings, fetcher Fetcher, storage Storage, sender Sender, seen SeenCache, m *metrics.Metrics) *Poller {
	return &Poller{
		settings: settings,
		loc:      settings.Location(),
		fetcher:  fetcher,
		storage:  storage,
		sender:   sender,
		cache:    seen,
		metrics:  m,
		now:      time.Now,
	}
}

// Run polls until the context is canceled. The first cycle starts
// immediately; failures never stop the loop.
func (p *Poller) Run(ctx context.Context) {
	log.Info().
		Dur("interval", p.settings.PollInterval).
		Str("sitemap", p.settings.SitemapURL).
		Msg("polling started")

	consecutiveFailures := 0

	for {
		start := p.now()
		log.Info().Str("at", start.In(p.loc).Format("2006-01-02 15:04:05 MST")).Msg("poll cycle")

		newCount, err := p.Cycle(ctx)
		p.metrics.PollsTotal.Inc()
		p.metrics.PollDuration.Observe(p.now().Sub(start).Seconds())
		p.metrics.LastPollTimestamp.Set(float64(p.now().Unix()))

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			consecutiveFailures++
			p.metrics.PollFailures.Inc()
			p.metrics.ConsecutiveFailures.Set(float64(consecutiveFailures))
			log.Warn().Err(err).Int("failures", consecutiveFailures).Int("max", maxFailures).Msg("poll failed")

			if consecutiveFailures >= maxFailures {
				if alertErr := p.sender.SendErrorAlert(ctx, err.Error(), consecutiveFailures); alertErr != nil {
					log.Error().Err(alertErr).Msg("error alert delivery failed")
				}
				consecutiveFailures = 0
				p.metrics.ConsecutiveFailures.Set(0)
			}
		} else {
			consecutiveFailures = 0
			p.metrics.ConsecutiveFailures.Set(0)
			if newCount > 0 {
				log.Info().Int("new", newCount).Msg("new articles detected")
			} else {
				log.Info().Msg("no new articles")
			}
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("polling stopped")
			return
		case <-time.After(p.settings.PollInterval):
		}
	}
}

// Cycle runs one poll: fetch the sitemap and process every unknown URL.
// Returns the number of new articles.
func (p *Poller) Cycle(ctx context.Context) (int, error) {
	articles, err := p.fetcher.FetchAndParse(ctx, p.settings.SitemapURL)
	if err != nil {
		return 0, err
	}
	p.metrics.SitemapEntries.Set(float64(len(articles)))

	newCount := 0
	for _, article := range articles {
		known, err := p.isKnown(article.URL)
		if err != nil {
			return newCount, err
		}
		if known {
			continue
		}

		if newCount > 0 {
			// Space out notifications within a cycle.
			select {
			case <-ctx.Done():
				return newCount, ctx.Err()
			case <-time.After(time.Second):
			}
		}

		if err := p.processNew(ctx, article); err != nil {
			return newCount, err
		}
		newCount++
	}

	return newCount, nil
}

func (p *Poller) isKnown(url string) (bool, error) {
	if p.cache != nil {
		seen, err := p.cache.Seen(url)
		if err == nil && seen {
			return true, nil
		}
		if err != nil {
			log.Warn().Err(err).Msg("seen cache lookup failed, falling back to database")
		}
	}
	return p.storage.IsKnownURL(url)
}

// processNew records one new article and sends its notification.
func (p *Poller) processNew(ctx context.Context, article sitemap.Article) error {
	log.Info().Str("title", article.Title).Msg("new article")

	now := p.now()
	today := store.DateOf(now, p.loc)

	current, lastPublish, err := p.storage.Streak()
	if err != nil {
		return err
	}
	newStreak := streak.Next(current, lastPublish, today)

	rec := store.Article{
		URL:        article.URL,
		Title:      article.Title,
		DetectedAt: now,
		Earning:    p.settings.ArticleValueUSD,
	}
	if published, ok := article.PublishedAt(); ok {
		rec.PublishedAt = &published
	}

	if err := p.storage.RecordArticle(rec, newStreak, today); err != nil {
		return err
	}
	p.metrics.ArticlesDetected.Inc()

	if p.cache != nil {
		if err := p.cache.MarkSeen(article.URL, now); err != nil {
			log.Warn().Err(err).Msg("seen cache write failed")
		}
	}

	todayCount, _, err := p.storage.DayStats(today)
	if err != nil {
		return err
	}
	monthStart := store.DateOf(time.Date(now.In(p.loc).Year(), now.In(p.loc).Month(), 1, 0, 0, 0, 0, p.loc), p.loc)
	monthlyCount, monthlyEarned, err := p.storage.RangeStats(monthStart)
	if err != nil {
		return err
	}

	event := notify.ArticleEvent{
		Title:         article.Title,
		URL:           article.URL,
		Value:         p.settings.ArticleValueUSD,
		TodayCount:    todayCount,
		DailyTarget:   p.settings.DailyTarget,
		MonthlyCount:  monthlyCount,
		MonthlyTarget: p.settings.MonthlyTarget,
		MonthlyEarned: monthlyEarned,
		Streak:        newStreak,
	}
	if err := p.sender.SendArticle(ctx, event); err != nil {
		p.metrics.WebhookFailures.Inc()
		log.Error().Err(err).Msg("article notification failed")
	} else {
		p.metrics.WebhookSends.Inc()
	}

	return nil
}
