// Package store provides Postgres persistence for the article tracker.
// It holds detected articles, per-day counters and the publish streak, and
// serves the aggregate queries the notifier and dashboard need.
package store

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Article is a detected sitemap entry.
type Article struct {
	ID          uint       `gorm:"primaryKey" json:"-"`
	URL         string     `gorm:"uniqueIndex;not null" json:"url"`
	Title       string     `gorm:"not null" json:"title"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	DetectedAt  time.Time  `json:"detectedAt"`
	Earning     float64    `gorm:"type:numeric(10,2)" json:"earning"`
}

func (Article) TableName() string { return "articles" }

// DailyStat is the per-calendar-day counter row.
type DailyStat struct {
	Date         time.Time `gorm:"primaryKey;type:date" json:"date"`
	ArticleCount int       `json:"articleCount"`
	Earned       float64   `gorm:"type:numeric(10,2)" json:"earned"`
}

func (DailyStat) TableName() string { return "daily_stats" }

// StreakInfo is a single-row table (id=1) holding the current streak.
type StreakInfo struct {
	ID              int        `gorm:"primaryKey"`
	CurrentStreak   int
	LastPublishDate *time.Time `gorm:"type:date"`
}

func (StreakInfo) TableName() string { return "streak_info" }

// Store wraps the gorm connection.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres, migrates the schema and seeds the streak row.
func Open(databaseURL string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(&Article{}, &DailyStat{}, &StreakInfo{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	// streak_info has exactly one row
	seed := StreakInfo{ID: 1}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, fmt.Errorf("seed streak row: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DateOf normalizes a moment to its calendar date in loc, stored as midnight
// UTC so date-column comparisons line up.
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsKnownURL reports whether the article URL was seen before.
func (s *Store) IsKnownURL(url string) (bool, error) {
	var count int64
	if err := s.db.Model(&Article{}).Where("url = ?", url).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check known url: %w", err)
	}
	return count > 0, nil
}

// RecordArticle inserts the article, bumps the day's counters and writes the
// streak, all in one transaction. A URL that already exists is a no-op: the
// counters and streak stay untouched.
func (s *Store) RecordArticle(a Article, streak int, day time.Time) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "url"}},
			DoNothing: true,
		}).Create(&a)
		if res.Error != nil {
			return fmt.Errorf("insert article: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		stat := DailyStat{Date: day, ArticleCount: 1, Earned: a.Earning}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"article_count": gorm.Expr("daily_stats.article_count + 1"),
				"earned":        gorm.Expr("daily_stats.earned + ?", a.Earning),
			}),
		}).Create(&stat).Error
		if err != nil {
			return fmt.Errorf("upsert daily stats: %w", err)
		}

		err = tx.Model(&StreakInfo{}).Where("id = ?", 1).Updates(map[string]interface{}{
			"current_streak":    streak,
			"last_publish_date": day,
		}).Error
		if err != nil {
			return fmt.Errorf("update streak: %w", err)
		}
		return nil
	})
}

// DayStats returns count and earnings for one calendar day.
func (s *Store) DayStats(day time.Time) (int, float64, error) {
	var stat DailyStat
	err := s.db.Where("date = ?", day).Limit(1).Find(&stat).Error
	if err != nil {
		return 0, 0, fmt.Errorf("day stats: %w", err)
	}
	return stat.ArticleCount, stat.Earned, nil
}

// RangeStats returns summed count and earnings for all days >= from.
func (s *Store) RangeStats(from time.Time) (int, float64, error) {
	var count int
	var earned float64
	row := s.db.Model(&DailyStat{}).
		Select("COALESCE(SUM(article_count), 0), COALESCE(SUM(earned), 0)").
		Where("date >= ?", from).Row()
	if err := row.Scan(&count, &earned); err != nil {
		return 0, 0, fmt.Errorf("range stats: %w", err)
	}
	return count, earned, nil
}

// TotalStats returns the all-time article count and earnings.
func (s *Store) TotalStats() (int, float64, error) {
	var count int
	var earned float64
	row := s.db.Model(&Article{}).
		Select("COUNT(*), COALESCE(SUM(earning), 0)").Row()
	if err := row.Scan(&count, &earned); err != nil {
		return 0, 0, fmt.Errorf("total stats: %w", err)
	}
	return count, earned, nil
}

// Streak returns the current streak and last publish date.
func (s *Store) Streak() (int, *time.Time, error) {
	var info StreakInfo
	if err := s.db.First(&info, 1).Error; err != nil {
		return 0, nil, fmt.Errorf("read streak: %w", err)
	}
	return info.CurrentStreak, info.LastPublishDate, nil
}

// RecentArticles returns the latest detected articles, newest first.
func (s *Store) RecentArticles(limit int) ([]Article, error) {
	var articles []Article
	err := s.db.Order("detected_at DESC").Limit(limit).Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("recent articles: %w", err)
	}
	return articles, nil
}

// DailyStatsSince returns per-day rows from a date onward, oldest first.
func (s *Store) DailyStatsSince(from time.Time) ([]DailyStat, error) {
	var stats []DailyStat
	err := s.db.Where("date >= ?", from).Order("date ASC").Find(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("daily stats since: %w", err)
	}
	return stats, nil
}
