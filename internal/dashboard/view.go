package dashboard

import (
	"html/template"
	"net/http"

	"article-tracker/internal/progress"
	"article-tracker/internal/store"

	"github.com/rs/zerolog/log"
)

type pageData struct {
	Stats
	Now              string
	Key              string
	TodayEarnedStr   string
	MonthlyEarnedStr string
	TotalEarnedStr   string
	Recent           []recentRow
	Chart            []chartBar
	Heatmap          []heatCell
}

// handleIndex renders the HTML dashboard.
func (d *Dashboard) handleIndex(w http.ResponseWriter, r *http.Request) {
	stats, err := d.collectStats()
	if err != nil {
		log.Error().Err(err).Msg("stats query failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	today := store.DateOf(d.now(), d.loc)
	chart, err := d.chartSeries(today)
	if err != nil {
		log.Error().Err(err).Msg("chart query failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	heatmap, err := d.heatmapCells(today)
	if err != nil {
		log.Error().Err(err).Msg("heatmap query failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	articles, err := d.storage.RecentArticles(recentArticleLimit)
	if err != nil {
		log.Error().Err(err).Msg("recent articles query failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	recent := make([]recentRow, 0, len(articles))
	for _, a := range articles {
		recent = append(recent, recentRow{
			Title:    a.Title,
			URL:      a.URL,
			Detected: a.DetectedAt.In(d.loc).Format("Jan 02 15:04"),
			Earning:  progress.FormatTotal(a.Earning),
		})
	}

	data := pageData{
		Stats:            stats,
		Now:              d.now().In(d.loc).Format("2006-01-02 15:04 MST"),
		Key:              r.URL.Query().Get("key"),
		TodayEarnedStr:   progress.FormatTotal(stats.TodayEarned),
		MonthlyEarnedStr: progress.FormatTotal(stats.MonthlyEarned),
		TotalEarnedStr:   progress.FormatTotal(stats.TotalEarned),
		Recent:           recent,
		Chart:            chart,
		Heatmap:          heatmap,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("template render failed")
	}
}

var pageTemplate = template.Must(template.New("dashboard").Parse(`
<!DOCTYPE html>
<html>
<head>
    <title>Article Tracker</title>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 20px; background-color: #f5f5f5; }
        .container { max-width: 1200px; margin: 0 auto; }
        .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 20px; border-radius: 10px; margin-bottom: 20px; }
        .header h1 { margin: 0; font-size: 2em; text-align: center; }
        .status-bar { display: flex; justify-content: space-between; background: white; padding: 15px; border-radius: 8px; margin-bottom: 20px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(280px, 1fr)); gap: 20px; margin-bottom: 20px; }
        .card { background: white; border-radius: 10px; padding: 20px; box-shadow: 0 4px 6px rgba(0,0,0,0.1); }
        .card h3 { margin-top: 0; color: #333; border-bottom: 2px solid #eee; padding-bottom: 10px; }
        .metric { display: flex; justify-content: space-between; padding: 8px 0; border-bottom: 1px solid #eee; }
        .metric:last-child { border-bottom: none; }
        .metric-label { font-weight: 500; color: #666; }
        .metric-value { font-weight: bold; color: #333; }
        .large-metric { font-size: 2em; text-align: center; margin: 10px 0; font-weight: bold; }
        .earned { color: #28a745; }
        .progress-bar { width: 100%; height: 20px; background-color: #eee; border-radius: 10px; overflow: hidden; margin: 10px 0; }
        .progress-fill { height: 100%; background-color: #28a745; transition: width 0.3s ease; }
        .articles-table { width: 100%; border-collapse: collapse; margin-top: 10px; }
        .articles-table th, .articles-table td { text-align: left; padding: 8px; border-bottom: 1px solid #eee; }
        .articles-table th { background-color: #f8f9fa; font-weight: 600; }
        .chart { display: flex; align-items: flex-end; gap: 3px; height: 120px; margin-top: 10px; }
        .chart-bar { flex: 1; background-color: #667eea; border-radius: 2px 2px 0 0; min-height: 2px; }
        .heatmap { display: grid; grid-template-columns: repeat(15, 1fr); gap: 3px; margin-top: 10px; }
        .heat-cell { aspect-ratio: 1; border-radius: 3px; }
        .heat-0 { background-color: #ebedf0; }
        .heat-1 { background-color: #9be9a8; }
        .heat-2 { background-color: #40c463; }
        .heat-3 { background-color: #30a14e; }
        .heat-4 { background-color: #216e39; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>📰 Article Tracker</h1>
        </div>

        <div class="status-bar">
            <span>🔥 Streak: <strong id="streak">{{.Streak}}</strong> day(s){{if .LastPublish}} (last publish {{.LastPublish}}){{end}}</span>
            <span id="last-update">{{.Now}}</span>
        </div>

        <div class="grid">
            <div class="card">
                <h3>💸 Today</h3>
                <div class="large-metric earned" id="today-earned">{{.TodayEarnedStr}}</div>
                <div class="progress-bar"><div class="progress-fill" id="today-progress" style="width: {{.TodayPct}}%"></div></div>
                <div class="metric">
                    <span class="metric-label">Articles</span>
                    <span class="metric-value"><span id="today-count">{{.TodayCount}}</span> / {{.DailyTarget}}</span>
                </div>
                <div class="metric">
                    <span class="metric-label">Remaining to goal</span>
                    <span class="metric-value" id="daily-remaining">{{.DailyRemaining}}</span>
                </div>
            </div>

            <div class="card">
                <h3>📈 This Month</h3>
                <div class="large-metric earned" id="monthly-earned">{{.MonthlyEarnedStr}}</div>
                <div class="progress-bar"><div class="progress-fill" id="monthly-progress" style="width: {{.MonthlyPct}}%"></div></div>
                <div class="metric">
                    <span class="metric-label">Articles</span>
                    <span class="metric-value"><span id="monthly-count">{{.MonthlyCount}}</span> / {{.MonthlyTarget}}</span>
                </div>
            </div>

            <div class="card">
                <h3>💰 All Time</h3>
                <div class="large-metric earned" id="total-earned">{{.TotalEarnedStr}}</div>
                <div class="metric">
                    <span class="metric-label">Articles</span>
                    <span class="metric-value" id="total-count">{{.TotalCount}}</span>
                </div>
            </div>
        </div>

        <div class="grid">
            <div class="card">
                <h3>📊 Last 30 Days</h3>
                <div class="chart">
                    {{range .Chart}}<div class="chart-bar" style="height: {{.HeightPct}}%" title="{{.Label}}: {{.Count}}"></div>{{end}}
                </div>
            </div>

            <div class="card">
                <h3>🗓️ Publish Heatmap (90 days)</h3>
                <div class="heatmap">
                    {{range .Heatmap}}<div class="heat-cell heat-{{.Level}}" title="{{.Date}}: {{.Count}}"></div>{{end}}
                </div>
            </div>
        </div>

        <div class="card">
            <h3>🕘 Recent Articles</h3>
            <table class="articles-table">
                <thead>
                    <tr><th>Title</th><th>Detected</th><th>Earning</th></tr>
                </thead>
                <tbody>
                    {{range .Recent}}
                    <tr>
                        <td><a href="{{.URL}}" target="_blank" rel="noopener">{{.Title}}</a></td>
                        <td>{{.Detected}}</td>
                        <td>{{.Earning}}</td>
                    </tr>
                    {{else}}
                    <tr><td colspan="3" style="text-align: center; color: #666;">No articles yet</td></tr>
                    {{end}}
                </tbody>
            </table>
        </div>
    </div>

    <script>
        const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
        const ws = new WebSocket(proto + location.host + '/ws?key=' + encodeURIComponent({{.Key}}));

        ws.onmessage = function(event) {
            updateDashboard(JSON.parse(event.data));
        };

        ws.onclose = function() {
            setTimeout(() => location.reload(), 60000);
        };

        function money(v) {
            return '$' + v.toLocaleString('en-US', {minimumFractionDigits: 2, maximumFractionDigits: 2});
        }

        function updateDashboard(data) {
            document.getElementById('last-update').textContent = new Date(data.timestamp).toLocaleString();
            document.getElementById('streak').textContent = data.streak;
            document.getElementById('today-earned').textContent = money(data.todayEarned);
            document.getElementById('today-count').textContent = data.todayCount;
            document.getElementById('today-progress').style.width = data.todayPct + '%';
            document.getElementById('daily-remaining').textContent = data.dailyRemaining;
            document.getElementById('monthly-earned').textContent = money(data.monthlyEarned);
            document.getElementById('monthly-count').textContent = data.monthlyCount;
            document.getElementById('monthly-progress').style.width = data.monthlyPct + '%';
            document.getElementById('total-earned').textContent = money(data.totalEarned);
            document.getElementById('total-count').textContent = data.totalCount;
        }
    </script>
</body>
</html>
`))
