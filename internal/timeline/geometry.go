// Package timeline derives ruler tick marks for the editor's scrollable
// timeline. The computation is a pure function of duration, zoom, viewport
// and scroll state, so the ruler can re-render cheaply on every scroll or
// zoom change without enumerating ticks for a multi-hour timeline.
package timeline

import (
	"fmt"
	"math"
)

const (
	// MinMajorSpacingPx is the minimum pixel distance between two major
	// tick marks.
	MinMajorSpacingPx = 96

	// EndpointBufferPx widens the visible pixel range when deciding
	// whether to force-include the t=0 and t=duration ticks.
	EndpointBufferPx = 32

	// tolerance for "divides evenly" and "is an integer multiple" checks.
	tickTolerance = 1e-6
)

// tickIntervals are the candidate major intervals in seconds, ascending.
var tickIntervals = []float64{
	0.1, 0.2, 0.5, 1, 2, 5, 10, 15, 30,
	60, 120, 300, 600, 900, 1800,
	3600, 7200, 14400, 21600, 43200, 86400,
}

// Viewport describes the rendered timeline the ruler is computed for.
type Viewport struct {
	DurationSec   float64 // total timeline duration, seconds
	Zoom          float64 // zoom factor, > 0
	ViewportWidth float64 // visible width, px
	ContentWidth  float64 // laid-out content width, px; 0 before layout
	ScrollLeft    float64 // horizontal scroll offset, px
}

// Tick is one ruler mark.
type Tick struct {
	TimeSec float64 `json:"time"`
	Px      float64 `json:"px"`
	Major   bool    `json:"major"`
	Label   string  `json:"label,omitempty"`
}

// Ruler is the computed tick set plus the intervals it was derived from.
type Ruler struct {
	MajorIntervalSec float64 `json:"majorInterval"`
	MinorIntervalSec float64 `json:"minorInterval"`
	PixelsPerSecond  float64 `json:"pixelsPerSecond"`
	Ticks            []Tick  `json:"ticks"`
}

// contentWidth returns the effective content width. Before the zoomed
// layout exists the viewport width scaled by zoom stands in for it.
func (v Viewport) contentWidth() float64 {
	if v.ContentWidth > 0 {
		return v.ContentWidth
	}
	return v.ViewportWidth * v.Zoom
}

// ComputeRuler derives the visible tick marks for a viewport.
func ComputeRuler(v Viewport) Ruler {
	if v.DurationSec <= 0 || v.Zoom <= 0 || v.ViewportWidth <= 0 {
		return Ruler{}
	}

	pps := v.contentWidth() / v.DurationSec
	major := majorInterval(pps)
	minor := minorInterval(major)

	// Visible range in seconds, padded by one major interval each side.
	startSec := v.ScrollLeft/pps - major
	endSec := (v.ScrollLeft+v.ViewportWidth)/pps + major
	startSec = math.Max(0, startSec)
	endSec = math.Min(v.DurationSec, endSec)

	// Integer stepping avoids accumulated float error at fine intervals.
	var ticks []Tick
	firstStep := int64(math.Floor(startSec / minor))
	lastStep := int64(math.Ceil(endSec / minor))
	for n := firstStep; n <= lastStep; n++ {
		t := float64(n) * minor
		if t < -tickTolerance || t > endSec+tickTolerance {
			continue
		}
		ticks = append(ticks, makeTick(clampTime(t, v.DurationSec), major, pps))
	}

	ticks = forceEndpoint(ticks, 0, v, major, pps)
	ticks = forceEndpoint(ticks, v.DurationSec, v, major, pps)

	return Ruler{
		MajorIntervalSec: major,
		MinorIntervalSec: minor,
		PixelsPerSecond:  pps,
		Ticks:            ticks,
	}
}

// majorInterval picks the smallest candidate whose on-screen spacing meets
// MinMajorSpacingPx. When even the coarsest candidate is too dense the
// coarsest wins.
func majorInterval(pps float64) float64 {
	for _, c := range tickIntervals {
		if c*pps >= MinMajorSpacingPx {
			return c
		}
	}
	return tickIntervals[len(tickIntervals)-1]
}

// minorInterval picks the largest candidate strictly below major that
// divides it evenly, falling back to major/2 when none does.
func minorInterval(major float64) float64 {
	for i := len(tickIntervals) - 1; i >= 0; i-- {
		c := tickIntervals[i]
		if c >= major-tickTolerance {
			continue
		}
		if dividesEvenly(major, c) {
			return c
		}
	}
	return major / 2
}

func dividesEvenly(major, minor float64) bool {
	ratio := major / minor
	return math.Abs(ratio-math.Round(ratio)) < tickTolerance
}

func makeTick(t, major, pps float64) Tick {
	ratio := t / major
	isMajor := math.Abs(ratio-math.Round(ratio)) < tickTolerance
	tick := Tick{TimeSec: t, Px: t * pps, Major: isMajor}
	if isMajor {
		tick.Label = formatTickLabel(t, major)
	}
	return tick
}

// forceEndpoint injects an endpoint tick when it falls inside the buffered
// pixel range and no naturally aligned tick already covers it.
func forceEndpoint(ticks []Tick, t float64, v Viewport, major, pps float64) []Tick {
	px := t * pps
	if px < v.ScrollLeft-EndpointBufferPx || px > v.ScrollLeft+v.ViewportWidth+EndpointBufferPx {
		return ticks
	}
	for _, existing := range ticks {
		if math.Abs(existing.TimeSec-t) < tickTolerance {
			return ticks
		}
	}
	forced := Tick{TimeSec: t, Px: px, Major: true, Label: formatTickLabel(t, major)}
	if len(ticks) == 0 || t < ticks[0].TimeSec {
		return append([]Tick{forced}, ticks...)
	}
	return append(ticks, forced)
}

func clampTime(t, duration float64) float64 {
	if t < 0 {
		return 0
	}
	if t > duration {
		return duration
	}
	return t
}

// formatTickLabel renders a human-readable label for a major tick. The
// decimal-place rule follows the major interval itself: sub-unit intervals
// keep as many places as the interval needs, whole-unit intervals none.
func formatTickLabel(t, major float64) string {
	switch {
	case t > 0 && t < 1:
		return fmt.Sprintf("%dms", int(math.Round(t*1000)))
	case t < 60:
		return fmt.Sprintf("%.*fs", subUnitDecimals(major, 1), t)
	case t < 3600:
		minutes := t / 60
		if subUnitDecimals(major, 60) > 0 {
			whole := math.Floor(minutes)
			secs := t - whole*60
			return fmt.Sprintf("%dm%02ds", int(whole), int(math.Round(secs)))
		}
		return fmt.Sprintf("%dm", int(math.Round(minutes)))
	default:
		hours := t / 3600
		if subUnitDecimals(major, 3600) > 0 {
			whole := math.Floor(hours)
			mins := (t - whole*3600) / 60
			return fmt.Sprintf("%dh%02dm", int(whole), int(math.Round(mins)))
		}
		return fmt.Sprintf("%dh", int(math.Round(hours)))
	}
}

// subUnitDecimals reports how many decimal places the major interval needs
// when expressed in the given unit (0 when it is a whole multiple).
func subUnitDecimals(major, unit float64) int {
	inUnit := major / unit
	if math.Abs(inUnit-math.Round(inUnit)) < tickTolerance {
		return 0
	}
	// One decimal covers every candidate interval (0.1..0.5s, 90s, 30m).
	return 1
}
