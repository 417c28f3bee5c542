// Package message renders the today-versus-500-years-ago comparison text.
package message

import (
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"github.com/i474232898/weather-500-years/internal/weather"
)

// DefaultLanguage is used for unknown language codes.
const DefaultLanguage = "ko"

// Input carries everything a message may mention.
type Input struct {
	Date     time.Time // target calendar day
	Location weather.Location
	Current  weather.CurrentReading
	Normal   weather.ClimatologyNormal
	Estimate weather.HistoricalEstimate
	Offsets  weather.Offsets

	Tag    string // optional header label, e.g. "morning"
	Annals string // optional pre-rendered annals line
}

// view is the pre-formatted data handed to the templates.
type view struct {
	Tag       string
	Date      string
	Place     string
	Current   string
	Estimate  string
	Year      int
	Diff      string
	Trend     int
	Normal    string
	Start     int
	End       int
	TodayMean string
	Warming   string
	Cooling   string
	Annals    string
}

var templates = map[string]*template.Template{
	"ko": template.Must(template.New("ko").Parse(koTemplate)),
	"en": template.Must(template.New("en").Parse(enTemplate)),
	"ja": template.Must(template.New("ja").Parse(jaTemplate)),
}

// Formatter renders messages in one language.
type Formatter struct {
	language string
	tmpl     *template.Template
}

// NewFormatter returns a formatter for language; unsupported codes fall back
// to DefaultLanguage. Region suffixes such as "ko-KR" are ignored.
func NewFormatter(language string) *Formatter {
	lang := normalizeLanguage(language)
	tmpl, ok := templates[lang]
	if !ok {
		lang = DefaultLanguage
		tmpl = templates[lang]
	}
	return &Formatter{language: lang, tmpl: tmpl}
}

// Language returns the language actually used.
func (f *Formatter) Language() string {
	return f.language
}

// Format renders the comparison. Temperatures are rounded to one decimal.
func (f *Formatter) Format(in Input) string {
	current := round1(in.Current.TemperatureC)
	estimate := round1(in.Estimate.EstimatedC)
	diff := round1(current - estimate)

	v := view{
		Tag:      strings.TrimSpace(in.Tag),
		Date:     in.Date.Format(time.DateOnly),
		Place:    in.Location.DisplayName,
		Current:  formatTemp(current),
		Estimate: formatTemp(estimate),
		Year:     in.Estimate.ReferenceYear,
		Diff:     fmt.Sprintf("%+.1f℃", diff),
		Trend:    sign(diff),
		Normal:   formatTemp(in.Normal.MeanC),
		Start:    weather.NormalStartYear,
		End:      weather.NormalEndYear,
		Warming:  fmt.Sprintf("%.1f", in.Offsets.WarmingSince1850C),
		Cooling:  fmt.Sprintf("%.1f", in.Offsets.LIAExtraCoolingC),
		Annals:   strings.TrimSpace(in.Annals),
	}
	if in.Current.TodayMeanC != nil {
		v.TodayMean = formatTemp(*in.Current.TodayMeanC)
	}

	var b strings.Builder
	if err := f.tmpl.Execute(&b, v); err != nil {
		// templates are static and view fields are plain strings
		panic(fmt.Sprintf("message: render %s template: %v", f.language, err))
	}
	return strings.TrimRight(b.String(), "\n")
}

func normalizeLanguage(language string) string {
	lang := strings.ToLower(strings.TrimSpace(language))
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		lang = lang[:i]
	}
	return lang
}

// round1 rounds to one decimal and folds negative zero into zero.
func round1(v float64) float64 {
	r := math.Round(v*10) / 10
	if r == 0 {
		return 0
	}
	return r
}

func formatTemp(v float64) string {
	return fmt.Sprintf("%.1f℃", round1(v))
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
