package dashboard

import (
	"github.com/gdamore/tcell/v2"
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// drawSparkline renders a series as a one-row block chart, newest samples on
// the right. The scale is per-series min/max so shape survives quiet periods.
func drawSparkline(s tcell.Screen, x, y, width int, series []float64, color tcell.Color) {
	if len(series) == 0 || width <= 0 {
		return
	}

	// Show the newest window that fits
	if len(series) > width {
		series = series[len(series)-width:]
	}

	min, max := series[0], series[0]
	for _, v := range series {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	style := tcell.StyleDefault.Foreground(color)

	for i, v := range series {
		level := 0
		if span > 0 {
			level = int((v - min) / span * float64(len(sparkRunes)-1))
		}
		if level < 0 {
			level = 0
		}
		if level >= len(sparkRunes) {
			level = len(sparkRunes) - 1
		}
		s.SetContent(x+i, y, sparkRunes[level], nil, style)
	}
}

// kpGauge renders the 0–9 geomagnetic scale as a fixed-width bar
func kpGauge(kp float64) string {
	if kp < 0 {
		kp = 0
	}
	if kp > 9 {
		kp = 9
	}

	filled := int(kp + 0.5)
	bar := make([]rune, 9)
	for i := range bar {
		if i < filled {
			bar[i] = '■'
		} else {
			bar[i] = '·'
		}
	}
	return string(bar)
}

// kpColor maps geomagnetic activity to a storm-severity color
func kpColor(kp float64) tcell.Color {
	switch {
	case kp >= 7:
		return tcell.ColorRed
	case kp >= 5:
		return tcell.ColorOrange
	case kp >= 4:
		return tcell.ColorYellow
	default:
		return tcell.ColorGreen
	}
}
