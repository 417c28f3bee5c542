package message

const koTemplate = `{{if .Tag}}[{{.Tag}}] {{end}}{{.Date}} {{.Place}}
오늘 {{.Place}} 기온은 {{.Current}}, 500년 전({{.Year}}년)은 약 {{.Estimate}}로 추정됩니다.
차이 {{.Diff}} ({{if gt .Trend 0}}더 따뜻합니다{{else if lt .Trend 0}}더 선선합니다{{else}}비슷합니다{{end}})
평년({{.Start}}–{{.End}}): {{.Normal}}{{if .TodayMean}} / 오늘 예상 평균: {{.TodayMean}}{{end}}
보정: 온난화 {{.Warming}}℃ + 소빙기 {{.Cooling}}℃
{{if .Annals}}{{.Annals}}
{{end}}데이터: Open-Meteo (Forecast/ERA5)
`

const enTemplate = `{{if .Tag}}[{{.Tag}}] {{end}}{{.Date}} {{.Place}}
Today in {{.Place}} it is {{.Current}}; 500 years ago ({{.Year}}) it was about {{.Estimate}}.
Difference {{.Diff}} ({{if gt .Trend 0}}warmer{{else if lt .Trend 0}}cooler{{else}}about the same{{end}})
Normal ({{.Start}}–{{.End}}): {{.Normal}}{{if .TodayMean}} / today's forecast mean: {{.TodayMean}}{{end}}
Adjustments: warming {{.Warming}}℃ + Little Ice Age {{.Cooling}}℃
{{if .Annals}}{{.Annals}}
{{end}}Data: Open-Meteo (Forecast/ERA5)
`

const jaTemplate = `{{if .Tag}}[{{.Tag}}] {{end}}{{.Date}} {{.Place}}
今日の{{.Place}}の気温は{{.Current}}、500年前（{{.Year}}年）は約{{.Estimate}}と推定されます。
差 {{.Diff}}（{{if gt .Trend 0}}暖かい{{else if lt .Trend 0}}涼しい{{else}}ほぼ同じ{{end}}）
平年（{{.Start}}–{{.End}}）: {{.Normal}}{{if .TodayMean}} / 今日の予想平均: {{.TodayMean}}{{end}}
補正: 温暖化 {{.Warming}}℃ + 小氷期 {{.Cooling}}℃
{{if .Annals}}{{.Annals}}
{{end}}データ: Open-Meteo (Forecast/ERA5)
`
