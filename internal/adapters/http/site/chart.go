package site

import (
	"fmt"
	"math"

	"github.com/okian/dietcause/internal/domain/frame"
)

// Chart geometry in SVG user units.
const (
	chartWidth  = 360
	chartHeight = 240
	plotTop     = 28.0
	plotBottom  = 200.0
	barWidth    = 80.0
)

var barCenters = [...]float64{130, 250}

type barView struct {
	Label   string
	Count   int
	Value   string
	X       float64
	Y       float64
	Width   float64
	Height  float64
	CenterX float64
	ValueY  float64
	LabelY  float64
}

type chartView struct {
	Title    string
	Width    int
	Height   int
	TitleX   float64
	AxisEnd  float64
	Baseline float64
	Bars     []barView
}

// newChart lays out the low/high bars. Negative means hang below the
// baseline.
func newChart(title string, groups []frame.GroupMean) *chartView {
	if len(groups) == 0 {
		return nil
	}
	var maxPos, maxNeg float64
	for _, g := range groups {
		maxPos = math.Max(maxPos, g.Mean)
		maxNeg = math.Max(maxNeg, -g.Mean)
	}
	span := maxPos + maxNeg
	if span == 0 {
		span = 1
	}
	plotH := plotBottom - plotTop
	baseline := plotTop + plotH*(maxPos/span)

	c := &chartView{
		Title:    title,
		Width:    chartWidth,
		Height:   chartHeight,
		TitleX:   chartWidth / 2,
		AxisEnd:  chartWidth - 20,
		Baseline: baseline,
	}
	for i, g := range groups {
		if i >= len(barCenters) {
			break
		}
		h := math.Abs(g.Mean) / span * plotH
		bar := barView{
			Label:   g.Label,
			Count:   g.Count,
			Value:   fmt.Sprintf("%.3f", g.Mean),
			X:       barCenters[i] - barWidth/2,
			Width:   barWidth,
			Height:  h,
			CenterX: barCenters[i],
			LabelY:  plotBottom + 28,
		}
		if g.Mean >= 0 {
			bar.Y = baseline - h
			bar.ValueY = bar.Y - 4
		} else {
			bar.Y = baseline
			bar.ValueY = baseline + h + 14
		}
		c.Bars = append(c.Bars, bar)
	}
	return c
}
