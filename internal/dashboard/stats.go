package dashboard

import (
	"time"

	"article-tracker/internal/progress"
	"article-tracker/internal/store"
)

// Stats is the headline data served on /api/stats and pushed over /ws.
type Stats struct {
	Timestamp      time.Time `json:"timestamp"`
	TodayCount     int       `json:"todayCount"`
	TodayEarned    float64   `json:"todayEarned"`
	MonthlyCount   int       `json:"monthlyCount"`
	MonthlyEarned  float64   `json:"monthlyEarned"`
	TotalCount     int       `json:"totalCount"`
	TotalEarned    float64   `json:"totalEarned"`
	Streak         int       `json:"streak"`
	LastPublish    string    `json:"lastPublish,omitempty"`
	DailyTarget    int       `json:"dailyTarget"`
	MonthlyTarget  int       `json:"monthlyTarget"`
	TodayPct       int       `json:"todayPct"`
	MonthlyPct     int       `json:"monthlyPct"`
	DailyRemaining int       `json:"dailyRemaining"`
}

func (d *Dashboard) collectStats() (Stats, error) {
	now := d.now()
	today := store.DateOf(now, d.loc)
	local := now.In(d.loc)
	monthStart := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, time.UTC)

	todayCount, todayEarned, err := d.storage.DayStats(today)
	if err != nil {
		return Stats{}, err
	}
	monthlyCount, monthlyEarned, err := d.storage.RangeStats(monthStart)
	if err != nil {
		return Stats{}, err
	}
	totalCount, totalEarned, err := d.storage.TotalStats()
	if err != nil {
		return Stats{}, err
	}
	streakVal, lastPublish, err := d.storage.Streak()
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Timestamp:      now,
		TodayCount:     todayCount,
		TodayEarned:    todayEarned,
		MonthlyCount:   monthlyCount,
		MonthlyEarned:  monthlyEarned,
		TotalCount:     totalCount,
		TotalEarned:    totalEarned,
		Streak:         streakVal,
		DailyTarget:    d.settings.DailyTarget,
		MonthlyTarget:  d.settings.MonthlyTarget,
		TodayPct:       progress.Percent(todayCount, d.settings.DailyTarget),
		MonthlyPct:     progress.Percent(monthlyCount, d.settings.MonthlyTarget),
		DailyRemaining: progress.Remaining(todayCount, d.settings.DailyTarget),
	}
	if lastPublish != nil {
		stats.LastPublish = lastPublish.Format("2006-01-02")
	}
	return stats, nil
}

type recentRow struct {
	Title    string
	URL      string
	Detected string
	Earning  string
}

type chartBar struct {
	Label     string
	Count     int
	HeightPct int
}

type heatCell struct {
	Date  string
	Count int
	Level int // 0..4 intensity bucket
}

// chartSeries builds a zero-filled daily bar series over the chart window.
func (d *Dashboard) chartSeries(today time.Time) ([]chartBar, error) {
	from := today.AddDate(0, 0, -chartDays)
	rows, err := d.storage.DailyStatsSince(from)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]int, len(rows))
	peak := 1
	for _, row := range rows {
		n := row.ArticleCount
		byDate[row.Date.Format("2006-01-02")] = n
		if n > peak {
			peak = n
		}
	}

	bars := make([]chartBar, 0, chartDays)
	for day := from.AddDate(0, 0, 1); !day.After(today); day = day.AddDate(0, 0, 1) {
		count := byDate[day.Format("2006-01-02")]
		bars = append(bars, chartBar{
			Label:     day.Format("Jan 02"),
			Count:     count,
			HeightPct: count * 100 / peak,
		})
	}
	return bars, nil
}

// heatmapCells builds the publish heatmap over the heatmap window.
func (d *Dashboard) heatmapCells(today time.Time) ([]heatCell, error) {
	from := today.AddDate(0, 0, -heatmapDays)
	rows, err := d.storage.DailyStatsSince(from)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]int, len(rows))
	for _, row := range rows {
		byDate[row.Date.Format("2006-01-02")] = row.ArticleCount
	}

	cells := make([]heatCell, 0, heatmapDays)
	for day := from.AddDate(0, 0, 1); !day.After(today); day = day.AddDate(0, 0, 1) {
		date := day.Format("2006-01-02")
		count := byDate[date]
		cells = append(cells, heatCell{
			Date:  date,
			Count: count,
			Level: heatLevel(count, d.settings.DailyTarget),
		})
	}
	return cells, nil
}

func heatLevel(count, dailyTarget int) int {
	if count <= 0 {
		return 0
	}
	if dailyTarget <= 0 {
		dailyTarget = 1
	}
	switch {
	case count >= dailyTarget:
		return 4
	case count*4 >= dailyTarget*3:
		return 3
	case count*2 >= dailyTarget:
		return 2
	default:
		return 1
	}
}
