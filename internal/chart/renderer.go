// Package chart renders the bar chart of minutes logged per day.
package chart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/2beens/workoutlog/internal/storage"
	"github.com/2beens/workoutlog/internal/telemetry/metrics"
	"github.com/2beens/workoutlog/internal/telemetry/tracing"
	"github.com/2beens/workoutlog/pkg"

	"github.com/disintegration/imaging"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var ErrChartAbsent = errors.New("chart not rendered")

type State int

const (
	StateAbsent State = iota
	StatePresent
)

func (s State) String() string {
	if s == StatePresent {
		return "present"
	}
	return "absent"
}

// Point is a single workout contribution to the chart.
type Point struct {
	Date    string
	Minutes int
}

// Bar is the summed minutes of one date bucket.
type Bar struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

const (
	barWidth     = 80
	barGap       = 24
	margin       = 40
	plotHeight   = 220
	canvasHeight = plotHeight + 3*margin
	minWidth     = 360

	// bars shrink to stay within this width, down to 1px bars
	maxCanvasWidth = 4096
)

var (
	barColor   = color.NRGBA{R: 70, G: 130, B: 180, A: 255}
	axisColor  = color.NRGBA{R: 90, G: 90, B: 90, A: 255}
	labelColor = color.Black
)

type Renderer struct {
	path    string
	metrics *metrics.Manager
	mutex   sync.Mutex
}

func NewRenderer(path string, metricsManager *metrics.Manager) *Renderer {
	return &Renderer{
		path:    path,
		metrics: metricsManager,
	}
}

func (r *Renderer) Path() string {
	return r.path
}

// DailyTotals groups points by their literal date string and sums the minutes.
// Buckets are sorted lexicographically, "2024-1-1" and "2024-01-01" stay distinct.
func DailyTotals(points []Point) []Bar {
	totals := make(map[string]int, len(points))
	for _, p := range points {
		totals[p.Date] = addMinutes(totals[p.Date], p.Minutes)
	}

	bars := make([]Bar, 0, len(totals))
	for date, minutes := range totals {
		bars = append(bars, Bar{Date: date, Minutes: minutes})
	}
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date < bars[j].Date
	})
	return bars
}

// addMinutes saturates instead of wrapping around.
func addMinutes(total, minutes int) int {
	switch {
	case minutes > 0 && total > math.MaxInt-minutes:
		return math.MaxInt
	case minutes < 0 && total < math.MinInt-minutes:
		return math.MinInt
	}
	return total + minutes
}

// Render redraws the whole chart from points. With no points the chart file is removed.
func (r *Renderer) Render(ctx context.Context, points []Point) (_ State, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "chartRenderer.render")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("points", len(points)))

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if len(points) == 0 {
		if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return StatePresent, fmt.Errorf("remove chart: %w", err)
		}
		r.metrics.ChartRendered(StateAbsent.String())
		return StateAbsent, nil
	}

	bars := DailyTotals(points)
	img := drawChart(bars)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return StateAbsent, fmt.Errorf("encode chart: %w", err)
	}

	if err := pkg.EnsureDir(filepath.Dir(r.path)); err != nil {
		return StateAbsent, fmt.Errorf("ensure chart dir: %w", err)
	}
	if err := storage.WriteFileAtomic(r.path, buf.Bytes()); err != nil {
		return StateAbsent, fmt.Errorf("write chart: %w", err)
	}

	log.Tracef("chart rendered to [%s]: %d bars, %d bytes", r.path, len(bars), buf.Len())
	r.metrics.ChartRendered(StatePresent.String())
	return StatePresent, nil
}

// Image returns the last rendered chart, ErrChartAbsent if there is none.
func (r *Renderer) Image(_ context.Context) ([]byte, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrChartAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("read chart: %w", err)
	}
	return data, nil
}

// chartLayout spreads n bars over the canvas. Past maxCanvasWidth bars and gaps shrink,
// down to one pixel each.
type chartLayout struct {
	width     int
	barWidth  int
	slot      int
	labelStep int
}

func newChartLayout(n int) chartLayout {
	l := chartLayout{barWidth: barWidth, slot: barWidth + barGap, labelStep: 1}
	if avail := maxCanvasWidth - 2*margin + barGap; n*l.slot > avail {
		l.slot = max(2, avail/n)
		l.barWidth = max(1, l.slot*barWidth/(barWidth+barGap))
		// one label per group of bars wide enough for a date
		l.labelStep = (barWidth + barGap + l.slot - 1) / l.slot
	}
	gap := l.slot - l.barWidth
	l.width = max(minWidth, 2*margin+n*l.slot-gap)
	return l
}

func (l chartLayout) labelWidth() int {
	return l.labelStep*l.slot - (l.slot - l.barWidth)
}

func drawChart(bars []Bar) *image.NRGBA {
	layout := newChartLayout(len(bars))
	canvas := imaging.New(layout.width, canvasHeight, color.White)

	maxMinutes := 0
	for _, b := range bars {
		maxMinutes = max(maxMinutes, b.Minutes)
	}

	baseline := margin + plotHeight
	fillRect(canvas, image.Rect(margin/2, baseline, layout.width-margin/2, baseline+2), axisColor)

	drawLabel(canvas, "Minutes per day", margin, margin/2+5)

	labelWidth := layout.labelWidth()
	for i, b := range bars {
		x := margin + i*layout.slot
		height := barHeight(b.Minutes, maxMinutes)
		if height > 0 {
			fillRect(canvas, image.Rect(x, baseline-height, x+layout.barWidth, baseline), barColor)
		}

		if i%layout.labelStep != 0 {
			continue
		}
		drawCentered(canvas, fitLabel(strconv.Itoa(b.Minutes), labelWidth), x, labelWidth, baseline-height-6)
		drawCentered(canvas, fitLabel(b.Date, labelWidth), x, labelWidth, baseline+20)
	}

	return canvas
}

// barHeight is minutes scaled to plotHeight, at least 1px for any positive value.
func barHeight(minutes, maxMinutes int) int {
	if maxMinutes <= 0 || minutes <= 0 {
		return 0
	}
	// float, minutes*plotHeight can overflow int for stored garbage
	return max(1, int(float64(minutes)/float64(maxMinutes)*plotHeight))
}

func fillRect(dst *image.NRGBA, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// fitLabel cuts text to width pixels, ending with ".." when cut. Face7x13 is monospace.
func fitLabel(text string, width int) string {
	chars := width / basicfont.Face7x13.Advance
	if utf8.RuneCountInString(text) <= chars {
		return text
	}
	if chars < 3 {
		return ""
	}

	keep := chars - 2
	for i := range text {
		if keep == 0 {
			return text[:i] + ".."
		}
		keep--
	}
	return text
}

func drawCentered(dst *image.NRGBA, text string, x, width, y int) {
	if text == "" {
		return
	}
	textWidth := font.MeasureString(basicfont.Face7x13, text).Ceil()
	drawLabel(dst, text, x+(width-textWidth)/2, y)
}

func drawLabel(dst *image.NRGBA, text string, x, y int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
