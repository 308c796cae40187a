package notify

const emailHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Отчёт копателя: {{.Place}}</title>
  <style>
    body {
      margin: 0;
      padding: 24px;
      background-color: #f5f5f5;
      font-family: Georgia, serif;
      color: #2e2e2e;
      line-height: 1.5;
    }

    .container {
      max-width: 640px;
      margin: 0 auto;
      background: #ffffff;
      border-radius: 8px;
      border: 1px solid #8b4513;
      overflow: hidden;
    }

    .header {
      padding: 20px 24px;
      background: linear-gradient(135deg, #2e2e2e 0%, #8b4513 100%);
      color: #d2b48c;
    }

    .place {
      font-size: 24px;
      font-weight: 700;
      margin-bottom: 4px;
    }

    .coords {
      font-size: 14px;
      opacity: 0.9;
    }

    .section {
      padding: 16px 24px;
      border-top: 1px solid #f3f4f6;
    }

    .section-title {
      font-size: 11px;
      font-weight: 700;
      color: #8b4513;
      text-transform: uppercase;
      letter-spacing: 0.1em;
      margin-bottom: 12px;
    }

    .weather-temp {
      font-size: 28px;
      font-weight: 700;
      color: #a0522d;
    }

    .weather-time {
      font-size: 12px;
      color: #6b7280;
    }

    .expert-advice p {
      margin: 8px 0;
      padding-left: 10px;
      border-left: 2px solid #8b4513;
    }

    .cta-button {
      display: inline-block;
      margin-top: 12px;
      padding: 10px 20px;
      font-size: 14px;
      font-weight: 600;
      color: #ffffff !important;
      background: #8b4513;
      border-radius: 6px;
      text-decoration: none;
    }

    .footer {
      padding: 16px 24px;
      font-size: 12px;
      color: #9ca3af;
      text-align: center;
      background: #f9fafb;
      border-top: 1px solid #f3f4f6;
    }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="place">{{.Place}}</div>
      <div class="coords">{{.Coordinate}}</div>
    </div>

    {{if .Weather}}
    <div class="section">
      <div class="section-title">Погода</div>
      <div class="weather-temp">{{.Weather.Temperature}}°C</div>
      <div>{{.Weather.Description}}</div>
      <div class="weather-time">Обновлено: {{.Weather.UpdatedAt}}</div>
    </div>
    {{end}}

    <div class="section">
      <div class="section-title">Анализ местности</div>
      <div class="expert-advice">{{.Region}}</div>
    </div>

    <div class="section">
      <div class="section-title">Историческая справка</div>
      <div class="expert-advice">{{.Historical}}</div>
    </div>

    {{if .MapURL}}
    <div class="section">
      <a href="{{.MapURL}}" class="cta-button" target="_blank" rel="noopener">Открыть на карте →</a>
    </div>
    {{end}}

    <div class="footer">
      Сгенерировано digmap {{.GeneratedAt}}
    </div>
  </div>
</body>
</html>`
