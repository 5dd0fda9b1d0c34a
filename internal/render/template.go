package render

// htmlTemplate はダイジェストメールのHTMLテンプレート。
// 外部ファイルへの依存を避けるため定数として埋め込む。
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Your Daily Update</title>
    <style>
        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f5f5f5;
        }
        h1 {
            color: #2c3e50;
            border-bottom: 2px solid #3498db;
            padding-bottom: 10px;
            text-align: center;
        }
        h2 {
            color: #2980b9;
            text-align: center;
        }
        h3 {
            color: #34495e;
            margin-bottom: 10px;
        }
        .section {
            background-color: #ffffff;
            border-radius: 10px;
            padding: 20px;
            margin-bottom: 20px;
            box-shadow: 0 2px 5px rgba(0,0,0,0.1);
        }
        .news-item {
            margin-bottom: 15px;
            border-left: 3px solid #3498db;
            padding-left: 10px;
        }
        .news-item h3 {
            margin-bottom: 5px;
        }
        .news-item p {
            margin-top: 0;
        }
        .news-item a {
            color: #3498db;
            text-decoration: none;
        }
        .task-group {
            margin-bottom: 20px;
            padding: 15px;
            border-radius: 5px;
        }
        .today {
            background-color: #e8f4f8;
        }
        .tomorrow {
            background-color: #fff4e6;
        }
        ul {
            list-style-type: none;
            padding-left: 0;
        }
        li {
            margin-bottom: 10px;
            font-size: 16px;
        }
        .progress-bar {
            background-color: #e0e0e0;
            border-radius: 10px;
            height: 20px;
            width: 100%;
            margin-bottom: 15px;
            position: relative;
            overflow: hidden;
        }
        .progress-bar span {
            position: absolute;
            top: 50%;
            left: 50%;
            transform: translate(-50%, -50%);
            color: #333;
            font-weight: bold;
        }
    </style>
</head>
<body>
    <h1>🌟 Your Daily Launchpad 🚀</h1>

    <div class="section">
        <h2>📰 News Flash</h2>
        {{if .Articles}}{{range .Articles}}
        <div class="news-item">
            <h3><a href="{{.URL}}">{{.Title}}</a></h3>
            <p>{{.Description}}</p>
        </div>
        {{end}}{{else}}
        <p>No news found.</p>
        {{end}}
    </div>

    <div class="section">
        <h2>🌤️ Weather Update</h2>
        {{if .WeatherAvailable}}
        <p>Weather in {{.Weather.City}}, {{.Weather.Country}}: {{printf "%.1f" .Weather.TemperatureC}}°C, {{.Weather.Condition}}.</p>
        <p>Feels like {{printf "%.1f" .Weather.FeelsLikeC}}°C · Humidity {{.Weather.HumidityPct}}% · Wind {{printf "%.1f" .Weather.WindKph}} km/h</p>
        {{if .WeatherUpdated}}<p><small>Last updated {{.WeatherUpdated}} ({{.Weather.SourceName}})</small></p>{{end}}
        {{else}}
        <p>Weather information is unavailable.</p>
        {{end}}
    </div>

    <div class="section">
        <h2>📝 Mission Control</h2>
        {{if .TasksToday}}
        <div class="task-group today">
            <h3>Today's Mission</h3>
            <div class="progress-bar" style="--progress: {{.ProgressPct}}%; padding-left: 20px;">
                <span>{{.TodayCount}} {{.TodayLabel}}</span>
            </div>
            <ul>
                {{range .TasksToday}}<li>{{.Emoji}} {{.Content}}</li>
                {{end}}
            </ul>
        </div>
        {{end}}
        {{if .TasksTomorrow}}
        <div class="task-group tomorrow">
            <h3>On the Horizon</h3>
            <ul>
                {{range .TasksTomorrow}}<li>{{.Emoji}} {{.Content}}</li>
                {{end}}
            </ul>
        </div>
        {{end}}
        {{if and (not .TasksToday) (not .TasksTomorrow)}}
        <p>Nothing due today or tomorrow.</p>
        {{end}}
    </div>
</body>
</html>
`
