package dashboard

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/auroralabs/heliowatch/sonify"
)

// drawVisualizer paints a lightweight animated band driven purely by the
// engine's parameter mapping — a visual echo of what the sonification is
// doing, not a separate model.
func (d *Dashboard) drawVisualizer(x, y, width, height int) {
	if width < 4 || height < 2 {
		return
	}

	t := toEngine(d.current)
	phase := float64(d.frame) * 0.05

	if d.ctrl.Mode() == sonify.ModeSun {
		d.drawSunBand(x, y, width, height, sonify.MapSun(t), phase)
	} else {
		d.drawAuroraBand(x, y, width, height, sonify.MapMagnetosphere(t), phase)
	}
}

// drawAuroraBand renders drifting curtains; the wave speed follows the
// tremolo rate and the ripple density follows the drone pitch
func (d *Dashboard) drawAuroraBand(x, y, width, height int, p sonify.MagnetosphereParams, phase float64) {
	ripple := p.DroneFreq / 40 // ~3–6 ripples across the band
	drift := phase * p.TremoloRate

	for col := 0; col < width; col++ {
		pos := float64(col) / float64(width)
		wave := math.Sin(pos*ripple*2*math.Pi + drift)
		row := int((wave + 1) / 2 * float64(height-1))

		intensity := 0.4 + 0.6*p.GranularGain/0.15
		if intensity > 1 {
			intensity = 1
		}
		green := int32(120 + 135*intensity)
		color := tcell.NewRGBColor(40, green, 90)
		d.screen.SetContent(x+col, y+row, '▓', nil, tcell.StyleDefault.Foreground(color))
	}
}

// drawSunBand renders a pulsing glow; brightness tracks the flare-driven
// filter cutoff and the pulse follows the slow amplitude churn
func (d *Dashboard) drawSunBand(x, y, width, height int, p sonify.SunParams, phase float64) {
	pulse := 0.5 + 0.5*math.Sin(phase*p.TremoloRate*2*math.Pi)
	heat := (p.NoiseCutoff - 350) / (3000 - 350) // 0 calm, 1 X-class

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			cx := float64(col)/float64(width)*2 - 1
			cy := float64(row)/float64(height)*2 - 1
			dist := math.Sqrt(cx*cx + cy*cy)
			if dist > 1 {
				continue
			}

			glow := (1 - dist) * (0.6 + 0.4*pulse)
			r := int32(180 + 75*glow)
			g := int32(80 + 120*glow*(1-heat*0.5))
			b := int32(30 * (1 - heat))
			glyph := '░'
			if glow > 0.5 {
				glyph = '▒'
			}
			if glow > 0.8 {
				glyph = '▓'
			}
			d.screen.SetContent(x+col, y+row, glyph, nil,
				tcell.StyleDefault.Foreground(tcell.NewRGBColor(r, g, b)))
		}
	}
}
