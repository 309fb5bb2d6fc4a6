package components

import (
	"fmt"
	"strconv"
	"time"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"
)

// HourlyDataPath is the endpoint the chart pages through.
const HourlyDataPath = "/api/v1/engagement/users/chat-busier/hourly-data"

// ChartBin is one bar of the chart.
type ChartBin struct {
	Label string
	Value int
}

func dayLabel(day time.Time, displacement int) string {
	if displacement < 7 {
		return day.Format("Monday")
	}
	return day.Format("2006-01-02")
}

func navButton(label string, displacement int, utc, disabled bool) g.Node {
	target := fmt.Sprintf("%s?format=html&displacement=%d&utc=%t", HourlyDataPath, displacement, utc)
	return Button(
		Class("chart-nav"),
		g.If(disabled, Disabled()),
		hx.Get(target),
		hx.Target("body"),
		g.Text(label),
	)
}

// HourlyChart renders the binned hourly activity of a day as a bar chart.
// Bar heights are relative to the busiest bin.
func HourlyChart(day time.Time, displacement int, utc bool, bins []ChartBin) g.Node {
	peak := 0
	for _, b := range bins {
		peak = max(peak, b.Value)
	}

	return Section(
		ID("hourly-chart"),
		Class("hourly-chart"),
		Div(
			Class("hourly-chart__nav"),
			navButton("‹", displacement+1, utc, false),
			Span(Class("hourly-chart__day"), g.Text(dayLabel(day, displacement))),
			navButton("›", displacement-1, utc, displacement == 0),
		),
		Ol(
			Class("hourly-chart__bars"),
			g.Map(bins, func(b ChartBin) g.Node {
				height := 0
				if peak > 0 {
					height = b.Value * 100 / peak
				}
				return Li(
					Class("hourly-chart__bar"),
					Data("hour", b.Label),
					Div(Class("hourly-chart__fill"), Style("height: "+strconv.Itoa(height)+"%")),
					Span(Class("hourly-chart__label"), g.Text(b.Label)),
					Span(Class("hourly-chart__value"), g.Text(strconv.Itoa(b.Value))),
				)
			}),
		),
	)
}
